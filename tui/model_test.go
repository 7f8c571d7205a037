package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kbukum/heroes/hero"
	"github.com/kbukum/heroes/search"
)

type recordingSource struct {
	submitted []string
}

func (r *recordingSource) Submit(text string) { r.submitted = append(r.submitted, text) }

func typeKeys(m Model, s string) Model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestEveryKeystrokeIsSubmitted(t *testing.T) {
	src := &recordingSource{}
	m := typeKeys(New(src, nil), "mag")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(Model)

	want := []string{"m", "ma", "mag", "ma"}
	if strings.Join(src.submitted, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, src.submitted)
	}
}

func TestNonEditingKeysAreNotSubmitted(t *testing.T) {
	src := &recordingSource{}
	m := typeKeys(New(src, nil), "ma")
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if len(src.submitted) != 2 {
		t.Errorf("expected cursor movement not to submit, got %v", src.submitted)
	}
}

func TestResultReplacesList(t *testing.T) {
	m := New(&recordingSource{}, nil)

	next, _ := m.Update(resultMsg(search.Result{Query: "ma", Generation: 1, Heroes: []hero.Hero{
		{ID: 15, Name: "Magneta"}, {ID: 16, Name: "RubberMan"},
	}}))
	m = next.(Model)
	if len(m.Heroes()) != 2 || m.Status() != `2 heroes matching "ma"` {
		t.Fatalf("unexpected state %v %q", m.Heroes(), m.Status())
	}
	if view := m.View(); !strings.Contains(view, "Magneta") || !strings.Contains(view, "RubberMan") {
		t.Errorf("expected heroes in view:\n%s", view)
	}

	next, _ = m.Update(resultMsg(search.Result{Query: "mag", Generation: 2, Heroes: []hero.Hero{{ID: 15, Name: "Magneta"}}}))
	m = next.(Model)
	if view := m.View(); strings.Contains(view, "RubberMan") {
		t.Errorf("expected previous results to be replaced:\n%s", view)
	}

	next, _ = m.Update(resultMsg(search.Result{Query: "", Generation: 3, Heroes: []hero.Hero{}}))
	m = next.(Model)
	if len(m.Heroes()) != 0 || m.Status() != "type to search" {
		t.Errorf("expected blank query to clear the list, got %v %q", m.Heroes(), m.Status())
	}
	if !strings.Contains(m.View(), "no results") {
		t.Error("expected empty list placeholder")
	}
}

func TestEventsDriveStatus(t *testing.T) {
	m := New(&recordingSource{}, nil)

	next, _ := m.Update(eventMsg(search.Event{Kind: search.EventDispatched, Query: "mag", Generation: 4}))
	m = next.(Model)
	if m.Status() != `searching "mag"...` || m.statusKind != statusBusy {
		t.Errorf("expected busy status, got %q", m.Status())
	}

	next, _ = m.Update(eventMsg(search.Event{Kind: search.EventStale, Query: "ma", Generation: 3}))
	m = next.(Model)
	if !strings.Contains(m.View(), "(1 superseded)") {
		t.Errorf("expected stale counter in view:\n%s", m.View())
	}

	next, _ = m.Update(eventMsg(search.Event{Kind: search.EventFailed, Query: "mag", Generation: 4, Err: errors.New("down")}))
	m = next.(Model)
	next, _ = m.Update(resultMsg(search.Result{Query: "mag", Generation: 4, Heroes: []hero.Hero{}}))
	m = next.(Model)
	if m.Status() != `search for "mag" failed` || m.statusKind != statusError {
		t.Errorf("expected failure status, got %q", m.Status())
	}

	next, _ = m.Update(resultMsg(search.Result{Query: "magn", Generation: 5, Heroes: []hero.Hero{}}))
	m = next.(Model)
	if m.Status() != `no heroes matching "magn"` {
		t.Errorf("expected the next result to clear the failure, got %q", m.Status())
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m := New(&recordingSource{}, nil)
		next, cmd := m.Update(tea.KeyMsg{Type: key})
		if cmd == nil {
			t.Fatalf("%v: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: expected tea.QuitMsg", key)
		}
		if next.(Model).View() != "" {
			t.Errorf("%v: expected empty view after quit", key)
		}
	}
}

func TestDoneMsgQuitsWithError(t *testing.T) {
	boom := errors.New("stream broke")
	next, cmd := New(&recordingSource{}, nil).Update(doneMsg{err: boom})
	if !errors.Is(next.(Model).Err(), boom) {
		t.Errorf("expected error to be kept, got %v", next.(Model).Err())
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected quit")
	}
}

func TestWaitForUpdate(t *testing.T) {
	updates := make(chan tea.Msg, 1)
	updates <- resultMsg(search.Result{Query: "x"})
	if msg, ok := waitForUpdate(updates)().(resultMsg); !ok || msg.Query != "x" {
		t.Errorf("expected queued result, got %v", msg)
	}

	close(updates)
	if _, ok := waitForUpdate(updates)().(doneMsg); !ok {
		t.Error("expected doneMsg on closed channel")
	}
	if waitForUpdate(nil) != nil {
		t.Error("expected nil command without updates")
	}
}

func TestObserveDropsWhenFull(t *testing.T) {
	updates := make(chan tea.Msg, 1)
	obs := observe(updates)
	obs(search.Event{Kind: search.EventEmitted})
	obs(search.Event{Kind: search.EventDispatched, Query: "a"})
	obs(search.Event{Kind: search.EventDispatched, Query: "b"})

	if len(updates) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(updates))
	}
	if e := (<-updates).(eventMsg); e.Query != "a" {
		t.Errorf("expected first dispatch to be kept, got %+v", e)
	}
}

func TestWindowSize(t *testing.T) {
	next, _ := New(&recordingSource{}, nil).Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m := next.(Model)
	if m.width != 120 || m.input.Width != 60 {
		t.Errorf("unexpected sizes width=%d input=%d", m.width, m.input.Width)
	}
}
