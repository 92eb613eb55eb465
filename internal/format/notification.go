package format

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

// stateLabel summarizes the read, seen and archived flags.
func stateLabel(n *domain.Notification) string {
	switch {
	case n.IsArchived():
		return "archived"
	case n.IsRead():
		return "read"
	case n.IsSeen():
		return "seen"
	default:
		return "new"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

// SimpleFormatter formats notifications in a simple format with ID, sent time, state and title.
type SimpleFormatter struct{}

// NewSimpleFormatter creates a new SimpleFormatter.
func NewSimpleFormatter() *SimpleFormatter {
	return &SimpleFormatter{}
}

// FormatNotifications formats notifications in simple format.
func (f *SimpleFormatter) FormatNotifications(notifications []*domain.Notification, writer io.Writer) error {
	for _, n := range notifications {
		_, err := fmt.Fprintf(writer, "%-12s  %-20s  %-8s  - %s\n",
			n.ID, formatTime(n.SentAt), stateLabel(n), truncate(n.Title, 50))
		if err != nil {
			return err
		}
	}
	return nil
}

// CompactFormatter formats notifications with the title only.
type CompactFormatter struct{}

// NewCompactFormatter creates a new CompactFormatter.
func NewCompactFormatter() *CompactFormatter {
	return &CompactFormatter{}
}

// FormatNotifications formats notifications in compact format.
func (f *CompactFormatter) FormatNotifications(notifications []*domain.Notification, writer io.Writer) error {
	for _, n := range notifications {
		if _, err := fmt.Fprintln(writer, truncate(n.Title, 60)); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter formats notifications as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

type jsonNotification struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Content    *string    `json:"content,omitempty"`
	ActionURL  *string    `json:"action_url,omitempty"`
	Category   *string    `json:"category,omitempty"`
	Topic      *string    `json:"topic,omitempty"`
	SentAt     time.Time  `json:"sent_at"`
	SeenAt     *time.Time `json:"seen_at"`
	ReadAt     *time.Time `json:"read_at"`
	ArchivedAt *time.Time `json:"archived_at"`
}

// FormatNotifications formats notifications as JSON.
func (f *JSONFormatter) FormatNotifications(notifications []*domain.Notification, writer io.Writer) error {
	out := make([]jsonNotification, len(notifications))
	for i, n := range notifications {
		out[i] = jsonNotification{
			ID:         n.ID,
			Title:      n.Title,
			Content:    n.Content,
			ActionURL:  n.ActionURL,
			Category:   n.Category,
			Topic:      n.Topic,
			SentAt:     n.SentAt,
			SeenAt:     n.SeenAt,
			ReadAt:     n.ReadAt,
			ArchivedAt: n.ArchivedAt,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal notifications to JSON: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return err
	}
	_, err = fmt.Fprintln(writer)
	return err
}

// truncate shortens s to width runes, adding "..." if truncated.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width < 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
