// Package logging provides the leveled logger used across the pipeline.
// It wraps zerolog with the small Info/Success/Warn/Error/Debug surface the
// rest of the code expects, plus an optional human-readable log file sink.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/upscayv/internal/config"
	"github.com/backmassage/upscayv/internal/term"
)

// Logger is the process-wide logger. Console output goes to stderr so stdout
// stays clean; when a log file is configured every line is duplicated there
// without colors. Call Close when done if LogFile was set.
type Logger struct {
	z        zerolog.Logger
	file     *os.File
	filePath string
}

// NewLogger configures colors from cfg, sets the log level from cfg.Verbose,
// and optionally opens cfg.LogFile for appending.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	l := &Logger{}

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !term.Enabled(),
		TimeFormat: "2006-01-02 15:04:05",
	}
	writers := []io.Writer{console}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		l.filePath = cfg.LogFile
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        f,
			NoColor:    true,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	l.z = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return l, nil
}

// NewTestLogger returns a logger writing plain output to w, for tests.
func NewTestLogger(w io.Writer) *Logger {
	return &Logger{
		z: zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
			Level(zerolog.DebugLevel).
			With().
			Timestamp().
			Logger(),
	}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.z.Info().Msgf(format, args...)
}

// Success logs at INFO level tagged as a positive outcome.
func (l *Logger) Success(format string, args ...interface{}) {
	l.z.Info().Str("result", "ok").Msgf(format, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.z.Warn().Msgf(format, args...)
}

// Error logs at ERROR level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.z.Error().Msgf(format, args...)
}

// Debug logs at DEBUG level; suppressed unless the logger was built with
// Verbose enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.z.Debug().Msgf(format, args...)
}

// WithTask returns a zerolog logger annotated with the task id, for call
// sites that want structured per-task fields.
func (l *Logger) WithTask(taskID string) zerolog.Logger {
	return l.z.With().Str("task_id", taskID).Logger()
}
