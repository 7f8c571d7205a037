package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

// Logger is a zerolog logger bound to a service name. Fields are passed
// as plain maps so callers never import zerolog.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// Init builds a logger from cfg and installs it as the global one.
func Init(cfg Config, service string) {
	cfg.ApplyDefaults()
	SetGlobalLogger(New(&cfg, service))
}

// New writes to the destination named by cfg.Output.
func New(cfg *Config, service string) *Logger {
	return NewWithWriter(cfg, service, outputWriter(cfg.Output))
}

// NewWithWriter ignores cfg.Output and writes to w. An unknown level
// falls back to info.
func NewWithWriter(cfg *Config, service string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var ctx zerolog.Context
	if f := strings.ToLower(cfg.Format); f == FormatConsole || f == FormatPretty {
		ctx = zerolog.New(consoleWriter(w, service, cfg.NoColor)).With()
	} else {
		ctx = zerolog.New(w).With()
		if service != "" {
			ctx = ctx.Str("service", service)
		}
	}
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return &Logger{zl: ctx.Logger().Level(level), service: service}
}

// NewDefault logs info and above to stdout in console format.
func NewDefault(service string) *Logger {
	return New(&Config{Level: "info", Format: FormatConsole, Output: "stdout", Timestamp: true}, service)
}

// NewFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, LOG_NO_COLOR and
// LOG_TIMESTAMP.
func NewFromEnv(service string) *Logger {
	env := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	return New(&Config{
		Level:     env("LOG_LEVEL", "info"),
		Format:    env("LOG_FORMAT", FormatConsole),
		Output:    env("LOG_OUTPUT", "stdout"),
		NoColor:   env("LOG_NO_COLOR", "false") == "true",
		Timestamp: env("LOG_TIMESTAMP", "true") == "true",
	}, service)
}

// Nop discards everything.
func Nop() *Logger { return &Logger{zl: zerolog.Nop()} }

func (l *Logger) derive(ctx zerolog.Context) *Logger {
	return &Logger{zl: ctx.Logger(), service: l.service}
}

// WithComponent tags every line with the component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name))
}

// WithFields attaches fields to every line.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(l.zl.With().Fields(fields))
}

// WithError attaches err to every line.
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.zl.With().Err(err))
}

// GetLogger exposes the underlying zerolog logger.
func (l *Logger) GetLogger() zerolog.Logger { return l.zl }

func (l *Logger) Service() string { return l.service }

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Fatal(), msg, fields)
}

func emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, f := range fields {
		e.Fields(f)
	}
	e.Msg(msg)
}

// outputWriter maps stdout, stderr and discard to their writers. Anything
// else is a file path opened for append; if that fails, stderr is used.
func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	case "discard", "none":
		return io.Discard
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: cannot open %s: %v, using stderr\n", output, err)
		return os.Stderr
	}
	return f
}
