package search

import (
	"context"
	"testing"
	"time"
)

func nextValue(t *testing.T, it interface {
	Next(context.Context) (string, bool, error)
}) (string, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, ok, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	return v, ok
}

func TestSourceMulticast(t *testing.T) {
	src := NewSource()
	ctx := context.Background()
	a := src.Subscribe(ctx)
	b := src.Subscribe(ctx)
	defer a.Close()
	defer b.Close()

	src.Submit("m")
	src.Submit("ma")

	for _, it := range []interface {
		Next(context.Context) (string, bool, error)
	}{a, b} {
		if v, _ := nextValue(t, it); v != "m" {
			t.Errorf("expected m, got %q", v)
		}
		if v, _ := nextValue(t, it); v != "ma" {
			t.Errorf("expected ma, got %q", v)
		}
	}
	if src.Latest() != "ma" {
		t.Errorf("expected latest ma, got %q", src.Latest())
	}
}

func TestSourceOnlySeesLaterValues(t *testing.T) {
	src := NewSource()
	src.Submit("before")
	it := src.Subscribe(context.Background())
	defer it.Close()
	src.Submit("after")

	if v, _ := nextValue(t, it); v != "after" {
		t.Errorf("expected only values submitted after Subscribe, got %q", v)
	}
}

func TestSourceSubmitNeverBlocks(t *testing.T) {
	src := NewSource()
	it := src.Subscribe(context.Background())
	defer it.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10000; i++ {
			src.Submit("x")
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a slow subscriber")
	}
}

func TestSourceCloseDrainsThenEnds(t *testing.T) {
	src := NewSource()
	it := src.Subscribe(context.Background())
	defer it.Close()

	src.Submit("a")
	src.Close()
	src.Close()
	src.Submit("ignored")

	if v, ok := nextValue(t, it); !ok || v != "a" {
		t.Errorf("expected queued value a, got %q ok=%v", v, ok)
	}
	if _, ok := nextValue(t, it); ok {
		t.Error("expected exhaustion after Close")
	}
	if src.Latest() != "ignored" {
		t.Errorf("expected latest to track submissions after close, got %q", src.Latest())
	}

	late := src.Subscribe(context.Background())
	if _, ok := nextValue(t, late); ok {
		t.Error("expected subscription to a closed source to be exhausted")
	}
	late.Close()
}

func TestSourceSubscriptionContext(t *testing.T) {
	src := NewSource()
	ctx, cancel := context.WithCancel(context.Background())
	it := src.Subscribe(ctx)
	defer it.Close()

	cancel()
	if _, ok := nextValue(t, it); ok {
		t.Error("expected exhaustion once the subscription context is done")
	}
}

func TestSourceIteratorClose(t *testing.T) {
	src := NewSource()
	it := src.Subscribe(context.Background())
	if src.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", src.Subscribers())
	}
	it.Close()
	it.Close()
	if src.Subscribers() != 0 {
		t.Errorf("expected subscriber removed, got %d", src.Subscribers())
	}
	if _, ok := nextValue(t, it); ok {
		t.Error("expected closed iterator to be exhausted")
	}
}

func TestSourceNextHonorsCallerContext(t *testing.T) {
	src := NewSource()
	it := src.Subscribe(context.Background())
	defer it.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, _, err := it.Next(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
