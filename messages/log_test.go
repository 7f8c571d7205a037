package messages

import (
	"fmt"
	"sync"
	"testing"
)

func TestLog_AddAndMessages(t *testing.T) {
	l := NewLog()
	l.Add("HeroService: fetched heroes")
	l.Add("HeroService: fetched hero id=12")

	got := l.Messages()
	if len(got) != 2 || got[0] != "HeroService: fetched heroes" || got[1] != "HeroService: fetched hero id=12" {
		t.Errorf("unexpected messages: %v", got)
	}
}

func TestLog_MessagesReturnsCopy(t *testing.T) {
	l := NewLog()
	l.Add("one")
	got := l.Messages()
	got[0] = "changed"
	if l.Messages()[0] != "one" {
		t.Error("mutating the returned slice must not affect the log")
	}
}

func TestLog_Clear(t *testing.T) {
	l := NewLog()
	l.Add("one")
	l.Clear()
	if l.Len() != 0 || len(l.Messages()) != 0 {
		t.Errorf("expected empty log after Clear, got %v", l.Messages())
	}
}

func TestLog_ConcurrentAdd(t *testing.T) {
	l := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Add(fmt.Sprintf("msg %d", i))
		}(i)
	}
	wg.Wait()
	if l.Len() != 50 {
		t.Errorf("expected 50 messages, got %d", l.Len())
	}
}
