// Package colors provides styled console output for the bellsync CLI.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const checkmark = "✓"

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	mu           sync.RWMutex
	debugEnabled bool
	logger       Logger
	stdout       io.Writer = os.Stdout
	stderr       io.Writer = os.Stderr
)

func init() {
	if val := os.Getenv("BELLSYNC_DEBUG"); val == "true" || val == "1" {
		debugEnabled = true
	}
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debugEnabled = enabled
}

// SetLogger sets the structured logger to mirror console output.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// SetOutput redirects console output. Nil writers restore the defaults.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	stdout, stderr = out, errOut
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
}

func snapshot() (Logger, io.Writer, io.Writer, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return logger, stdout, stderr, debugEnabled
}

// Error outputs an error message to stderr.
func Error(msgs ...string) {
	msg := strings.Join(msgs, " ")
	l, _, errOut, _ := snapshot()
	if l != nil {
		l.Error(msg)
	}
	fmt.Fprintf(errOut, "%s %s\n", errorStyle.Render("Error:"), msg)
}

// Success outputs a success message to stdout.
func Success(msgs ...string) {
	msg := strings.Join(msgs, " ")
	l, out, _, _ := snapshot()
	if l != nil {
		l.Info(msg, "type", "success")
	}
	fmt.Fprintf(out, "%s %s\n", successStyle.Render(checkmark), msg)
}

// Warning outputs a warning message to stderr.
func Warning(msgs ...string) {
	msg := strings.Join(msgs, " ")
	l, _, errOut, _ := snapshot()
	if l != nil {
		l.Warn(msg)
	}
	fmt.Fprintf(errOut, "%s %s\n", warningStyle.Render("Warning:"), msg)
}

// Info outputs an informational message to stdout.
func Info(msgs ...string) {
	msg := strings.Join(msgs, " ")
	l, out, _, _ := snapshot()
	if l != nil {
		l.Info(msg)
	}
	fmt.Fprintln(out, infoStyle.Render(msg))
}

// Debug outputs a debug message to stderr if debug is enabled.
func Debug(msgs ...string) {
	l, _, errOut, enabled := snapshot()
	if !enabled {
		return
	}
	msg := strings.Join(msgs, " ")
	if l != nil {
		l.Debug(msg)
	}
	fmt.Fprintf(errOut, "%s %s\n", debugStyle.Render("Debug:"), msg)
}
