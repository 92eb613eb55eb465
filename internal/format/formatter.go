// Package format provides output formatting functionality for CLI commands.
// It includes formatters for the list command's output styles.
package format

import (
	"fmt"
	"io"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// FormatNotifications formats a slice of notifications and writes to the writer.
	FormatNotifications(notifications []*domain.Notification, writer io.Writer) error
}

// FormatterType represents the type of formatter to use.
type FormatterType string

const (
	// FormatterTypeSimple displays notifications with ID, sent time, state and title.
	FormatterTypeSimple FormatterType = "simple"

	// FormatterTypeTable displays notifications in a table format with headers.
	FormatterTypeTable FormatterType = "table"

	// FormatterTypeCompact displays only titles, one per line.
	FormatterTypeCompact FormatterType = "compact"

	// FormatterTypeJSON displays notifications in JSON format.
	FormatterTypeJSON FormatterType = "json"
)

// FormatterTypes lists the accepted formatter types in help order.
var FormatterTypes = []FormatterType{
	FormatterTypeSimple,
	FormatterTypeTable,
	FormatterTypeCompact,
	FormatterTypeJSON,
}

// NewFormatter creates a new formatter of the specified type.
func NewFormatter(formatterType FormatterType) Formatter {
	switch formatterType {
	case FormatterTypeTable:
		return NewTableFormatter()
	case FormatterTypeCompact:
		return NewCompactFormatter()
	case FormatterTypeJSON:
		return NewJSONFormatter()
	default:
		return NewSimpleFormatter()
	}
}

// ParseFormatterType validates a --format value. The empty string selects
// the simple formatter.
func ParseFormatterType(value string) (FormatterType, error) {
	if value == "" {
		return FormatterTypeSimple, nil
	}
	for _, ft := range FormatterTypes {
		if string(ft) == value {
			return ft, nil
		}
	}
	return "", fmt.Errorf("invalid format: %s (must be simple, table, compact or json)", value)
}
