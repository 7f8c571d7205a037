package hero

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/kbukum/heroes/errors"
	"github.com/kbukum/heroes/logger"
	"github.com/kbukum/heroes/messages"
)

func names(heroes []Hero) []string {
	out := make([]string, len(heroes))
	for i, h := range heroes {
		out[i] = h.Name
	}
	return out
}

func newTestService() (*Service, *messages.Log) {
	log := messages.NewLog()
	return NewService(NewSeededStore(), log, WithLogger(logger.Nop())), log
}

func TestSeed(t *testing.T) {
	seed := Seed()
	if len(seed) != 9 {
		t.Fatalf("expected 9 heroes, got %d", len(seed))
	}
	if seed[0] != (Hero{ID: 12, Name: "Dr. Nice"}) || seed[8] != (Hero{ID: 20, Name: "Tornado"}) {
		t.Errorf("unexpected roster bounds: %v .. %v", seed[0], seed[8])
	}
}

func TestStoreGet(t *testing.T) {
	s := NewSeededStore()
	h, err := s.Get(15)
	if err != nil {
		t.Fatal(err)
	}
	if h.Name != "Magneta" {
		t.Errorf("expected Magneta, got %q", h.Name)
	}

	_, err = s.Get(99)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestStoreAddGeneratesID(t *testing.T) {
	s := NewSeededStore()
	if h := s.Add("Zed"); h.ID != 21 {
		t.Errorf("expected id 21, got %d", h.ID)
	}

	empty := NewStore(nil)
	if h := empty.Add("First"); h.ID != 11 {
		t.Errorf("expected id 11 on empty store, got %d", h.ID)
	}
}

func TestStoreUpdateAndDelete(t *testing.T) {
	s := NewSeededStore()
	if err := s.Update(Hero{ID: 13, Name: "Bombastic"}); err != nil {
		t.Fatal(err)
	}
	if h, _ := s.Get(13); h.Name != "Bombastic" {
		t.Errorf("expected update to stick, got %q", h.Name)
	}
	if err := s.Update(Hero{ID: 1, Name: "Nobody"}); err == nil {
		t.Error("expected update of unknown id to fail")
	}

	if err := s.Delete(13); err != nil {
		t.Fatal(err)
	}
	if len(s.List()) != 8 {
		t.Errorf("expected 8 heroes after delete, got %d", len(s.List()))
	}
	if err := s.Delete(13); err == nil {
		t.Error("expected second delete to fail")
	}
}

func TestStoreListReturnsCopy(t *testing.T) {
	s := NewSeededStore()
	list := s.List()
	list[0].Name = "mutated"
	if h, _ := s.Get(12); h.Name != "Dr. Nice" {
		t.Errorf("store was mutated through List: %q", h.Name)
	}
}

func TestStoreSearch(t *testing.T) {
	s := NewSeededStore()
	tests := []struct {
		term string
		want []string
	}{
		{"ma", []string{"Magneta", "RubberMan", "Dynama", "Magma"}},
		{"MAG", []string{"Magneta", "Magma"}},
		{"  dr.  ", []string{"Dr. Nice", "Dr. IQ"}},
		{"xyz", []string{}},
		{"", []string{}},
		{"   ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := names(s.Search(tt.term))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestStoreTop(t *testing.T) {
	got := names(NewSeededStore().Top())
	want := []string{"Bombasto", "Celeritas", "Magneta", "RubberMan"}
	if !slices.Equal(got, want) {
		t.Errorf("Top() = %v, want %v", got, want)
	}

	small := NewStore([]Hero{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	if got := names(small.Top()); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Top() on small store = %v", got)
	}
	if got := NewStore(nil).Top(); len(got) != 0 {
		t.Errorf("expected empty top, got %v", got)
	}
}

func TestStoreConcurrentAdd(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add("hero")
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, h := range s.List() {
		if seen[h.ID] {
			t.Fatalf("duplicate id %d", h.ID)
		}
		seen[h.ID] = true
	}
	if len(seen) != 50 {
		t.Errorf("expected 50 heroes, got %d", len(seen))
	}
}

func TestServiceMessages(t *testing.T) {
	svc, log := newTestService()
	ctx := context.Background()

	if _, err := svc.Heroes(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Hero(ctx, 12); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(ctx, Hero{ID: 12, Name: "Dr. Nicer"}); err != nil {
		t.Fatal(err)
	}
	added, err := svc.Add(ctx, "  Zed  ")
	if err != nil {
		t.Fatal(err)
	}
	if added.Name != "Zed" {
		t.Errorf("expected trimmed name, got %q", added.Name)
	}
	if err := svc.Delete(ctx, added.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SearchHeroes(ctx, "ma"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SearchHeroes(ctx, "xyz"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"HeroService: fetched heroes",
		"HeroService: fetched hero id=12",
		"HeroService: updated hero id=12",
		"HeroService: added hero w/ id=21",
		"HeroService: deleted hero id=21",
		`HeroService: found heroes matching "ma"`,
		`HeroService: no heroes matching "xyz"`,
	}
	if got := log.Messages(); !slices.Equal(got, want) {
		t.Errorf("messages mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestServiceBlankSearchSkipsLog(t *testing.T) {
	svc, log := newTestService()
	got, err := svc.SearchHeroes(context.Background(), "   ")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
	if log.Len() != 0 {
		t.Errorf("expected no message for blank term, got %v", log.Messages())
	}
}

func TestServiceValidation(t *testing.T) {
	svc, log := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "   ")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if !strings.Contains(appErr.Message, "name") {
		t.Errorf("expected name field in message, got %q", appErr.Message)
	}

	if _, err := svc.Update(ctx, Hero{ID: 12, Name: "\t \n"}); err == nil {
		t.Error("expected whitespace name to fail")
	}
	if h, _ := svc.store.Get(12); h.Name != "Dr. Nice" {
		t.Errorf("rejected update must not change the store, got %q", h.Name)
	}
	if log.Len() != 2 {
		t.Errorf("expected failures in the message log, got %v", log.Messages())
	}
}

func TestServiceNotFound(t *testing.T) {
	svc, log := newTestService()
	ctx := context.Background()

	if _, err := svc.Hero(ctx, 99); errors.HTTPStatusOf(err) != 404 {
		t.Errorf("expected 404, got %v", err)
	}
	if err := svc.Delete(ctx, 99); errors.HTTPStatusOf(err) != 404 {
		t.Errorf("expected 404, got %v", err)
	}
	msgs := log.Messages()
	if len(msgs) != 2 || !strings.HasPrefix(msgs[0], "HeroService: getHero id=99 failed") {
		t.Errorf("unexpected messages: %q", msgs)
	}
}

func TestServiceCanceledContext(t *testing.T) {
	svc, _ := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Heroes(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := svc.SearchHeroes(ctx, "ma"); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestServiceTop(t *testing.T) {
	svc, _ := newTestService()
	top, err := svc.Top(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 4 || top[0].ID != 13 {
		t.Errorf("unexpected dashboard heroes: %v", top)
	}
}
