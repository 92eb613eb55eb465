// Package search provides a unified search abstraction for filtering notifications.
// It supports multiple search strategies (substring, regex, token-based) through
// a common Provider interface.
package search

import (
	"github.com/cristianoliveira/bellsync/internal/domain"
)

// Provider defines the interface for search providers.
type Provider interface {
	// Match returns true if the notification matches the search query.
	Match(notif *domain.Notification, query string) bool

	// Name returns the provider name for identification and debugging.
	Name() string
}

// Searchable fields.
const (
	FieldTitle    = "title"
	FieldContent  = "content"
	FieldCategory = "category"
	FieldTopic    = "topic"
)

// Options holds configuration options for creating search providers.
type Options struct {
	CaseInsensitive bool     // If true, searches ignore case sensitivity
	Fields          []string // Fields to search in
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		CaseInsensitive: false,
		Fields:          []string{FieldTitle, FieldContent},
	}
}

// Option is a function that modifies search options.
type Option func(*Options)

// WithCaseInsensitive sets case-insensitive search.
func WithCaseInsensitive(enabled bool) Option {
	return func(o *Options) {
		o.CaseInsensitive = enabled
	}
}

// WithFields sets the fields to search in.
// Valid fields: "title", "content", "category", "topic".
func WithFields(fields []string) Option {
	return func(o *Options) {
		o.Fields = fields
	}
}

// applyOptions applies the given options to the options struct.
func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// fieldValue returns the value of a searchable field, or "" when unset.
func fieldValue(n *domain.Notification, field string) string {
	switch field {
	case FieldTitle:
		return n.Title
	case FieldContent:
		return domain.StringValue(n.Content)
	case FieldCategory:
		return domain.StringValue(n.Category)
	case FieldTopic:
		return domain.StringValue(n.Topic)
	default:
		return ""
	}
}

// Filter returns the notifications that match query, keeping their order.
func Filter(notifs []*domain.Notification, p Provider, query string) []*domain.Notification {
	if query == "" {
		return notifs
	}
	out := make([]*domain.Notification, 0, len(notifs))
	for _, n := range notifs {
		if p.Match(n, query) {
			out = append(out, n)
		}
	}
	return out
}
