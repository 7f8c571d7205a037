package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/heroes/logger"
)

// DefaultGracefulTimeout bounds OnStop hooks plus component shutdown.
const DefaultGracefulTimeout = 15 * time.Second

// Option tunes NewApp. It is not generic, so one option works for every
// config type.
type Option func(*settings)

type settings struct {
	log        *logger.Logger
	grace      time.Duration
	summaryOut io.Writer
}

// WithLogger replaces the logger NewApp would build from the config.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithGracefulTimeout overrides DefaultGracefulTimeout.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) { s.grace = d }
}

// WithSummaryOutput sends the startup summary to w instead of stdout.
func WithSummaryOutput(w io.Writer) Option {
	return func(s *settings) { s.summaryOut = w }
}
