package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// pushSource returns a pipeline fed by ch. The test owns ch and closes it
// to exhaust the pipeline.
func pushSource[T any](ch chan item[T]) *Pipeline[T] {
	return FromFunc(func(_ context.Context) Iterator[T] {
		return &chanIter[T]{src: ch}
	})
}

// --- Debounce tests ---

func TestDebounce_EmitsAfterQuiet(t *testing.T) {
	ch := make(chan item[int], 10)
	ch <- item[int]{val: 1, ok: true}
	ch <- item[int]{val: 2, ok: true}
	ch <- item[int]{val: 3, ok: true}
	close(ch)

	debounced := Debounce(pushSource(ch), 50*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := Collect(ctx, debounced)
	if err != nil {
		t.Fatal(err)
	}
	// Should emit only the last value (3) after quiet period
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("expected [3] (last after debounce), got %v", got)
	}
}

func TestDebounce_Empty(t *testing.T) {
	ch := make(chan item[int])
	close(ch)

	debounced := Debounce(pushSource(ch), 50*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := Collect(ctx, debounced)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestDebounce_BurstsCollapseToLastValue(t *testing.T) {
	ch := make(chan item[int])
	debounced := Debounce(pushSource(ch), 80*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	go func() {
		// First burst: 1, 2, 3 within 20ms.
		ch <- item[int]{val: 1, ok: true}
		time.Sleep(10 * time.Millisecond)
		ch <- item[int]{val: 2, ok: true}
		time.Sleep(10 * time.Millisecond)
		ch <- item[int]{val: 3, ok: true}
		// Quiet period well past the debounce window.
		time.Sleep(250 * time.Millisecond)
		// Second burst: 4, 5.
		ch <- item[int]{val: 4, ok: true}
		time.Sleep(10 * time.Millisecond)
		ch <- item[int]{val: 5, ok: true}
		time.Sleep(250 * time.Millisecond)
		close(ch)
	}()

	got, err := Collect(ctx, debounced)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{3, 5}) {
		t.Errorf("expected [3 5], got %v", got)
	}
}

func TestDebounce_WaitsForQuietPeriod(t *testing.T) {
	ch := make(chan item[string], 1)
	ctx := context.Background()
	iter := Debounce(pushSource(ch), 100*time.Millisecond).Iter(ctx)
	defer iter.Close()

	start := time.Now()
	ch <- item[string]{val: "abc", ok: true}

	v, ok, err := iter.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("expected a value, got ok=%v err=%v", ok, err)
	}
	if v != "abc" {
		t.Errorf("expected abc, got %q", v)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("value emitted before the quiet period elapsed (%v)", elapsed)
	}
}

func TestDebounce_PropagatesSourceError(t *testing.T) {
	boom := errors.New("source failed")
	ch := make(chan item[int], 1)
	ch <- item[int]{err: boom}

	_, err := Collect(context.Background(), Debounce(pushSource(ch), 10*time.Millisecond))
	if !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestDebounce_ContextCanceled(t *testing.T) {
	ch := make(chan item[int])
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := Collect(ctx, Debounce(pushSource(ch), time.Second))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

// --- Switch tests ---

func TestSwitch_LastValueAlwaysDelivered(t *testing.T) {
	p := Switch(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (int, error) {
		return n * 10, nil
	})
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[len(got)-1] != 30 {
		t.Fatalf("expected the last output to be 30, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Errorf("outputs out of input order: %v", got)
		}
	}
}

func TestSwitch_DiscardsStaleCompletion(t *testing.T) {
	ch := make(chan item[int])
	firstStarted := make(chan struct{})
	release := make(chan struct{})
	secondDone := make(chan struct{})
	var firstCanceled bool

	p := Switch(pushSource(ch), func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			close(firstStarted)
			// Simulates a transport that cannot abort: it completes late
			// regardless of cancellation.
			<-release
			firstCanceled = ctx.Err() != nil
			return 100, nil
		}
		defer close(secondDone)
		return 200, nil
	})

	go func() {
		ch <- item[int]{val: 1, ok: true}
		<-firstStarted
		ch <- item[int]{val: 2, ok: true}
		<-secondDone
		close(release)
		close(ch)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := Collect(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{200}) {
		t.Fatalf("expected only the latest output [200], got %v", got)
	}
	if !firstCanceled {
		t.Error("expected the superseded computation's context to be canceled")
	}
}

func TestSwitch_OutputsFollowInputOrder(t *testing.T) {
	ch := make(chan item[int])
	p := Switch(pushSource(ch), func(_ context.Context, n int) (int, error) {
		return n, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	iter := p.Iter(ctx)
	defer iter.Close()

	for _, want := range []int{1, 2, 3} {
		ch <- item[int]{val: want, ok: true}
		got, ok, err := iter.Next(ctx)
		if err != nil || !ok {
			t.Fatalf("expected value %d, got ok=%v err=%v", want, ok, err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
	close(ch)
	if _, ok, _ := iter.Next(ctx); ok {
		t.Error("expected exhaustion after source closed")
	}
}

func TestSwitch_CurrentErrorTerminates(t *testing.T) {
	boom := errors.New("lookup failed")
	p := Switch(FromSlice([]int{1}), func(_ context.Context, _ int) (int, error) {
		return 0, boom
	})
	_, err := Collect(context.Background(), p)
	if !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestSwitch_StaleErrorIgnored(t *testing.T) {
	ch := make(chan item[int])
	firstStarted := make(chan struct{})

	p := Switch(pushSource(ch), func(ctx context.Context, n int) (int, error) {
		if n == 1 {
			close(firstStarted)
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return n, nil
	})

	go func() {
		ch <- item[int]{val: 1, ok: true}
		<-firstStarted
		ch <- item[int]{val: 2, ok: true}
		close(ch)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := Collect(ctx, p)
	if err != nil {
		t.Fatalf("stale error must not surface, got %v", err)
	}
	if !intSliceEqual(got, []int{2}) {
		t.Errorf("expected [2], got %v", got)
	}
}

func TestSwitch_UpstreamError(t *testing.T) {
	boom := errors.New("upstream")
	ch := make(chan item[int], 1)
	ch <- item[int]{err: boom}

	p := Switch(pushSource(ch), func(_ context.Context, n int) (int, error) { return n, nil })
	_, err := Collect(context.Background(), p)
	if !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSwitch_CloseCancelsInFlight(t *testing.T) {
	ch := make(chan item[int], 1)
	started := make(chan struct{})
	var (
		mu       sync.Mutex
		canceled bool
	)

	p := Switch(pushSource(ch), func(ctx context.Context, _ int) (int, error) {
		close(started)
		<-ctx.Done()
		mu.Lock()
		canceled = true
		mu.Unlock()
		return 0, ctx.Err()
	})

	iter := p.Iter(context.Background())
	ch <- item[int]{val: 1, ok: true}
	<-started

	if err := iter.Close(); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !canceled {
		t.Error("expected in-flight computation to observe cancellation on Close")
	}
}
