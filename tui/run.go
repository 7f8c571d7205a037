package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kbukum/heroes/search"
)

const updateBuffer = 64

type runConfig struct {
	pipelineOpts []search.Option
	programOpts  []tea.ProgramOption
}

// Option configures Run.
type Option func(*runConfig)

// WithPipelineOptions configures the search pipeline.
func WithPipelineOptions(opts ...search.Option) Option {
	return func(c *runConfig) { c.pipelineOpts = append(c.pipelineOpts, opts...) }
}

// WithProgramOptions configures the bubbletea program.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(c *runConfig) { c.programOpts = append(c.programOpts, opts...) }
}

// Run shows the search view until the user quits or ctx is done. Every
// keystroke goes through a search pipeline backed by lookup.
func Run(ctx context.Context, lookup search.Lookup, opts ...Option) error {
	var rc runConfig
	for _, opt := range opts {
		opt(&rc)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan tea.Msg, updateBuffer)
	source := search.NewSource()
	defer source.Close()

	pipelineOpts := append(rc.pipelineOpts, search.WithObserver(observe(updates)))
	results := search.New(source, lookup, pipelineOpts...).Subscribe(runCtx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := search.RunIter(runCtx, results, func(ctx context.Context, r search.Result) error {
			select {
			case updates <- resultMsg(r):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		select {
		case updates <- doneMsg{err: err}:
		case <-runCtx.Done():
		}
	}()

	prog := tea.NewProgram(New(source, updates), append(rc.programOpts, tea.WithContext(runCtx))...)
	final, err := prog.Run()
	cancel()
	wg.Wait()

	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}

// observe forwards pipeline events to the view. Events only drive the
// status line, so they are dropped when the view falls behind.
func observe(updates chan<- tea.Msg) search.Observer {
	return func(e search.Event) {
		if e.Kind == search.EventEmitted {
			return
		}
		select {
		case updates <- eventMsg(e):
		default:
		}
	}
}
