// Package render draws the rows, header and footer of the watch view.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/bellsync/internal/domain"
)

const (
	statusWidth          = 6
	categoryWidth        = 14
	topicWidth           = 14
	ageWidth             = 5
	spacesBetweenColumns = 8
	defaultTitleWidth    = 50
	minTitleWidth        = 10
	ellipsis             = "..."
)

var (
	accent   = lipgloss.Color("4")
	muted    = lipgloss.Color("241")
	unread   = lipgloss.Color("1")
	selected = lipgloss.NewStyle().Background(accent).Foreground(lipgloss.Color("0"))
)

// SummaryState holds the inputs of the summary line.
type SummaryState struct {
	Predicate  string
	Total      int
	Unread     int
	Unseen     int
	Connection string
	Loading    bool
	Spinner    string
}

// RowState defines the inputs needed to render a notification row.
type RowState struct {
	Notification *domain.Notification
	Width        int
	Selected     bool
	Now          time.Time
}

// FooterState defines the inputs needed to render footer help text.
type FooterState struct {
	HasNextPage bool
	Message     string
	IsError     bool
}

// Summary renders the predicate, counters and connection state.
func Summary(state SummaryState) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("bellsync")
	counts := fmt.Sprintf("total %d  unread %d  unseen %d", state.Total, state.Unread, state.Unseen)
	parts := []string{title, state.Predicate, counts, "realtime: " + state.Connection}
	if state.Loading {
		parts = append(parts, state.Spinner+" loading")
	}
	return strings.Join(parts, "  ")
}

// Header renders the table header.
func Header(width int) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-*s",
		statusWidth, "STATUS",
		titleWidth(width), "TITLE",
		categoryWidth, "CATEGORY",
		topicWidth, "TOPIC",
		ageWidth, "AGE",
	)
	return headerStyle.Render(header)
}

// Row renders a single notification row.
func Row(state RowState) string {
	n := state.Notification
	if n == nil {
		return ""
	}
	width := titleWidth(state.Width)

	row := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-*s",
		statusWidth, StatusIcon(n),
		width, truncate(n.Title, width),
		categoryWidth, truncate(domain.StringValue(n.Category), categoryWidth),
		topicWidth, truncate(domain.StringValue(n.Topic), topicWidth),
		ageWidth, calculateAge(n.SentAt, state.Now),
	)

	switch {
	case state.Selected:
		return selected.Render(row)
	case !n.IsRead():
		return lipgloss.NewStyle().Bold(true).Render(row)
	default:
		return lipgloss.NewStyle().Foreground(muted).Render(row)
	}
}

// StatusIcon summarizes the read, seen and archived state of n.
func StatusIcon(n *domain.Notification) string {
	var b strings.Builder
	switch {
	case n.IsArchived():
		b.WriteString("▣")
	case n.IsRead():
		b.WriteString("○")
	default:
		b.WriteString("●")
	}
	if !n.IsSeen() {
		b.WriteString(" new")
	}
	return b.String()
}

// UnreadMarker renders the unread dot used by the list command.
func UnreadMarker(n *domain.Notification) string {
	if n.IsRead() {
		return lipgloss.NewStyle().Foreground(muted).Render("○")
	}
	return lipgloss.NewStyle().Foreground(unread).Render("●")
}

// Footer renders the footer with help text.
func Footer(state FooterState) string {
	if state.Message != "" {
		style := lipgloss.NewStyle().Foreground(accent)
		if state.IsError {
			style = lipgloss.NewStyle().Foreground(unread).Bold(true)
		}
		return style.Render(state.Message)
	}

	help := []string{"j/k: move", "r/u: read/unread", "a/A: archive/unarchive", "d: delete", "R: read all", "S: seen all", "g: refresh"}
	if state.HasNextPage {
		help = append(help, "n: more")
	}
	help = append(help, "q: quit")
	return lipgloss.NewStyle().Foreground(muted).Render(strings.Join(help, "  |  "))
}

func titleWidth(width int) int {
	w := width - statusWidth - categoryWidth - topicWidth - ageWidth - spacesBetweenColumns
	if width == 0 || w < minTitleWidth {
		return defaultTitleWidth
	}
	return w
}

func truncate(value string, width int) string {
	if utf8.RuneCountInString(value) <= width {
		return value
	}
	if width <= len(ellipsis) {
		return string([]rune(value)[:width])
	}
	return string([]rune(value)[:width-len(ellipsis)]) + ellipsis
}

func calculateAge(sent time.Time, now time.Time) string {
	if sent.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}

	duration := now.Sub(sent)
	switch {
	case duration < time.Minute:
		return fmt.Sprintf("%ds", max(int(duration.Seconds()), 0))
	case duration < time.Hour:
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh", int(duration.Hours()))
	}
	return fmt.Sprintf("%dd", int(duration.Hours()/24))
}
