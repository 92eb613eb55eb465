// Package logging provides structured logging for bellsync.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
)

// Logger is the structured logging interface.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...any)
	// Info logs an informational message.
	Info(msg string, args ...any)
	// Warn logs a warning message.
	Warn(msg string, args ...any)
	// Error logs an error message.
	Error(msg string, args ...any)
	// With returns a new logger with additional key-value pairs.
	With(args ...any) Logger
	// Shutdown flushes any buffered logs and releases resources.
	Shutdown() error
}

// loggerImpl is the charmbracelet/log based implementation.
type loggerImpl struct {
	clogger  *clog.Logger
	closer   io.Closer
	redactor *redactor
	fields   []any // base fields added via With
	path     string

	closeOnce *sync.Once
}

// Init creates a file logger under cfg.Dir. If cfg.Enabled is false it
// returns a no-op logger.
func Init(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return Nop(), nil
	}
	logDir, err := cfg.logDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine log directory: %w", err)
	}
	if err := rotate(logDir, cfg.MaxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}
	fname := fmt.Sprintf("%s%s_PID%d_%s%s",
		filePrefix,
		time.Now().Format("20060102_150405"),
		cfg.PID,
		strings.ReplaceAll(cfg.Command, " ", "_"),
		fileSuffix)
	path := filepath.Join(logDir, fname)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l := newLogger(f, cfg)
	l.closer = f
	l.path = path
	return l, nil
}

// New creates a JSON logger that writes to w. The caller owns w.
func New(w io.Writer, level string) Logger {
	return newLogger(w, Config{Level: level})
}

func newLogger(w io.Writer, cfg Config) *loggerImpl {
	clogger := clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(cfg.Level),
		Formatter:       clog.JSONFormatter,
	})
	if cfg.PID != 0 {
		clogger = clogger.With("pid", cfg.PID, "command", cfg.Command)
	}
	return &loggerImpl{
		clogger:   clogger,
		redactor:  newRedactor(),
		closeOnce: &sync.Once{},
	}
}

// parseLevel converts a string level to clog.Level.
func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func (l *loggerImpl) Debug(msg string, args ...any) { l.log(clog.DebugLevel, msg, args) }
func (l *loggerImpl) Info(msg string, args ...any)  { l.log(clog.InfoLevel, msg, args) }
func (l *loggerImpl) Warn(msg string, args ...any)  { l.log(clog.WarnLevel, msg, args) }
func (l *loggerImpl) Error(msg string, args ...any) { l.log(clog.ErrorLevel, msg, args) }

// log writes a log entry with redaction applied to the key-value pairs.
func (l *loggerImpl) log(level clog.Level, msg string, args []any) {
	all := make([]any, 0, len(l.fields)+len(args))
	all = append(all, l.fields...)
	all = append(all, args...)
	l.clogger.Log(level, msg, l.redactor.redact(all)...)
}

func (l *loggerImpl) With(args ...any) Logger {
	fields := make([]any, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	fields = append(fields, args...)
	return &loggerImpl{
		clogger:   l.clogger,
		closer:    l.closer,
		redactor:  l.redactor,
		fields:    fields,
		path:      l.path,
		closeOnce: l.closeOnce,
	}
}

func (l *loggerImpl) Shutdown() error {
	var err error
	l.closeOnce.Do(func() {
		if l.closer != nil {
			err = l.closer.Close()
		}
	})
	return err
}

// FilePath returns the log file of a file logger, or "" for other loggers.
func FilePath(l Logger) string {
	if impl, ok := l.(*loggerImpl); ok {
		return impl.path
	}
	return ""
}

// noopLogger is a logger that discards all output.
type noopLogger struct{}

func (n noopLogger) Debug(msg string, args ...any) {}
func (n noopLogger) Info(msg string, args ...any)  {}
func (n noopLogger) Warn(msg string, args ...any)  {}
func (n noopLogger) Error(msg string, args ...any) {}
func (n noopLogger) With(args ...any) Logger       { return n }
func (n noopLogger) Shutdown() error               { return nil }

// Nop returns a logger that discards everything.
func Nop() Logger {
	return noopLogger{}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
