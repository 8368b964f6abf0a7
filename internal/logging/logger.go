// Package logging provides the component-tagged logger used across the
// module. It is backed by zerolog.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for the base logger.
type Config struct {
	Level  string    // "debug", "info", "warn", ...; defaults to warn
	Output io.Writer // defaults to os.Stderr
}

var (
	once sync.Once
	base Logger
)

// Configure sets up the base logger and zerolog's process-wide options.
// Only the first call has an effect.
func Configure(cfg Config) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339
		base = New(cfg)
	})
}

// Base returns the configured base logger, configuring defaults if needed.
func Base() Logger {
	Configure(Config{})
	return base
}

// Logger writes component-tagged entries.
type Logger struct {
	zl zerolog.Logger
}

// New builds a logger. It touches no package or zerolog globals, so loggers
// may be built concurrently.
func New(cfg Config) Logger {
	level := zerolog.WarnLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	} else if env := os.Getenv("RENDERSETTINGS_LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}
	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}
	return Logger{zl: zerolog.New(writer).Level(level).With().Timestamp().Logger()}
}

// Nop returns a logger that discards everything.
func Nop() Logger { return Logger{zl: zerolog.Nop()} }

// Zerolog exposes the underlying logger.
func (l Logger) Zerolog() zerolog.Logger { return l.zl }

func (l Logger) Infof(component string, format string, args ...interface{}) {
	l.zl.Info().Str("component", component).Msgf(format, args...)
}

func (l Logger) Errorf(component string, format string, args ...interface{}) {
	l.zl.Error().Str("component", component).Msgf(format, args...)
}

// LogMessage reports a recovered failure from operation in component.
func (l Logger) LogMessage(component, operation, message string) {
	l.zl.Warn().Str("component", component).Str("operation", operation).Msg(message)
}
