// Package tui is the terminal display of the hero search: a text input
// whose every change is submitted to a search Source, and the list of the
// latest results.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kbukum/heroes/hero"
	"github.com/kbukum/heroes/search"
)

// Submitter receives every keystroke. *search.Source implements it.
type Submitter interface {
	Submit(text string)
}

type (
	resultMsg search.Result
	eventMsg  search.Event
	doneMsg   struct{ err error }
)

type statusKind int

const (
	statusIdle statusKind = iota
	statusBusy
	statusError
)

// Model is the bubbletea model of the search view.
type Model struct {
	input   textinput.Model
	source  Submitter
	updates <-chan tea.Msg
	styles  Styles

	heroes     []hero.Hero
	query      string
	generation uint64
	failedGen  uint64
	stale      int

	status     string
	statusKind statusKind
	width      int
	err        error
	quitting   bool
}

// New creates the model. Results and pipeline events are read from updates.
func New(source Submitter, updates <-chan tea.Msg) Model {
	ti := textinput.New()
	ti.Placeholder = "Search heroes"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	return Model{
		input:   ti,
		source:  source,
		updates: updates,
		styles:  DefaultStyles(),
		status:  "type to search",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForUpdate(m.updates))
}

func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return msg
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if value := m.input.Value(); value != before {
			m.source.Submit(value)
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 8 {
			m.input.Width = min(msg.Width-8, 60)
		}
		return m, nil

	case resultMsg:
		m.applyResult(search.Result(msg))
		return m, waitForUpdate(m.updates)

	case eventMsg:
		m.applyEvent(search.Event(msg))
		return m, waitForUpdate(m.updates)

	case doneMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) applyResult(r search.Result) {
	m.heroes = r.Heroes
	m.query = r.Query
	m.generation = r.Generation
	switch {
	case r.Generation != 0 && r.Generation == m.failedGen:
		m.setStatus(statusError, fmt.Sprintf("search for %q failed", r.Query))
	case strings.TrimSpace(r.Query) == "":
		m.setStatus(statusIdle, "type to search")
	case len(r.Heroes) == 0:
		m.setStatus(statusIdle, fmt.Sprintf("no heroes matching %q", r.Query))
	default:
		m.setStatus(statusIdle, fmt.Sprintf("%d heroes matching %q", len(r.Heroes), r.Query))
	}
}

func (m *Model) applyEvent(e search.Event) {
	switch e.Kind {
	case search.EventDispatched:
		m.setStatus(statusBusy, fmt.Sprintf("searching %q...", e.Query))
	case search.EventFailed:
		m.failedGen = e.Generation
	case search.EventStale:
		m.stale++
	}
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// Heroes returns the heroes currently displayed.
func (m Model) Heroes() []hero.Hero { return m.heroes }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// Err returns the error that ended the result stream, if any.
func (m Model) Err() error { return m.err }

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Hero Search"))
	b.WriteString("\n")
	b.WriteString(m.styles.Input.Render(m.input.View()))
	b.WriteString("\n\n")

	if len(m.heroes) == 0 {
		b.WriteString(m.styles.Empty.Render("  no results"))
		b.WriteString("\n")
	}
	for _, h := range m.heroes {
		b.WriteString(m.styles.HeroID.Render(strconv.Itoa(h.ID)))
		b.WriteString("  ")
		b.WriteString(m.styles.HeroName.Render(h.Name))
		b.WriteString("\n")
	}

	status := m.status
	if m.stale > 0 {
		status += fmt.Sprintf("  (%d superseded)", m.stale)
	}
	switch m.statusKind {
	case statusBusy:
		b.WriteString(m.styles.Busy.Render(status))
	case statusError:
		b.WriteString(m.styles.Error.Render(status))
	default:
		b.WriteString(m.styles.Status.Render(status))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("esc to quit"))
	b.WriteString("\n")
	return b.String()
}
