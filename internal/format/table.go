package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/bellsync/internal/domain"
)

var headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)

// TableColumn represents a column in a table.
type TableColumn struct {
	// Name is the column name displayed in the header.
	Name string

	// Width is the column width in characters.
	Width int

	// Alignment is the text alignment (left, right, center).
	Alignment string

	// Extractor extracts the value from a notification.
	Extractor func(*domain.Notification) string
}

// TableFormatter formats notifications in a table with headers.
type TableFormatter struct {
	showHeaders bool
	columns     []TableColumn
}

// NewTableFormatter creates a TableFormatter with the default columns.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		showHeaders: true,
		columns: []TableColumn{
			{Name: "ID", Width: 12, Extractor: func(n *domain.Notification) string { return n.ID }},
			{Name: "Sent", Width: 20, Extractor: func(n *domain.Notification) string { return formatTime(n.SentAt) }},
			{Name: "State", Width: 8, Extractor: stateLabel},
			{Name: "Category", Width: 12, Extractor: func(n *domain.Notification) string { return domain.StringValue(n.Category) }},
			{Name: "Topic", Width: 12, Extractor: func(n *domain.Notification) string { return domain.StringValue(n.Topic) }},
			{Name: "Title", Width: 40, Extractor: func(n *domain.Notification) string { return n.Title }},
		},
	}
}

// WithColumns adds custom columns to the formatter.
func (f *TableFormatter) WithColumns(columns ...TableColumn) *TableFormatter {
	f.columns = append(f.columns, columns...)
	return f
}

// WithoutHeaders disables the header and separator lines.
func (f *TableFormatter) WithoutHeaders() *TableFormatter {
	f.showHeaders = false
	return f
}

// FormatNotifications formats notifications in table format.
func (f *TableFormatter) FormatNotifications(notifications []*domain.Notification, writer io.Writer) error {
	if len(notifications) == 0 {
		return nil
	}
	if f.showHeaders {
		if err := f.writeHeader(writer); err != nil {
			return err
		}
		if err := f.writeSeparator(writer); err != nil {
			return err
		}
	}
	for _, n := range notifications {
		if err := f.writeRow(n, writer); err != nil {
			return err
		}
	}
	return nil
}

func (f *TableFormatter) writeHeader(writer io.Writer) error {
	cells := make([]string, len(f.columns))
	for i, col := range f.columns {
		cells[i] = formatString(col.Name, col.Width, "left")
	}
	_, err := fmt.Fprintln(writer, headerStyle.Render(strings.TrimRight(strings.Join(cells, "  "), " ")))
	return err
}

func (f *TableFormatter) writeSeparator(writer io.Writer) error {
	cells := make([]string, len(f.columns))
	for i, col := range f.columns {
		cells[i] = strings.Repeat("-", col.Width)
	}
	_, err := fmt.Fprintln(writer, strings.Join(cells, "  "))
	return err
}

func (f *TableFormatter) writeRow(n *domain.Notification, writer io.Writer) error {
	cells := make([]string, len(f.columns))
	for i, col := range f.columns {
		cells[i] = formatString(truncate(col.Extractor(n), col.Width), col.Width, col.Alignment)
	}
	_, err := fmt.Fprintln(writer, strings.TrimRight(strings.Join(cells, "  "), " "))
	return err
}

// formatString pads s to width with the given alignment.
func formatString(s string, width int, alignment string) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	switch alignment {
	case "right":
		return strings.Repeat(" ", width-n) + s
	case "center":
		left := (width - n) / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
	default:
		return s + strings.Repeat(" ", width-n)
	}
}
