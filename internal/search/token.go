package search

import (
	"strings"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

// TokenProvider provides token-based search.
// The query is split into whitespace-separated tokens.
// Each token must match at least one field (AND logic).
// Special tokens: "read" (match only read), "unread" (match only unread).
type TokenProvider struct {
	opts Options
}

// NewTokenProvider creates a new token search provider.
func NewTokenProvider(opts ...Option) Provider {
	return &TokenProvider{
		opts: applyOptions(opts),
	}
}

// Match returns true if all text tokens match at least one field
// and the notification matches the read/unread filter if specified.
func (p *TokenProvider) Match(notif *domain.Notification, query string) bool {
	var readFilter, unreadFilter bool
	var textTokens []string
	for _, token := range strings.Fields(query) {
		switch strings.ToLower(token) {
		case "read":
			readFilter = true
		case "unread":
			unreadFilter = true
		default:
			if p.opts.CaseInsensitive {
				token = strings.ToLower(token)
			}
			textTokens = append(textTokens, token)
		}
	}

	// read and unread together cancel out
	if readFilter != unreadFilter {
		if readFilter && !notif.IsRead() {
			return false
		}
		if unreadFilter && notif.IsRead() {
			return false
		}
	}

	for _, token := range textTokens {
		if !p.matchToken(notif, token) {
			return false
		}
	}
	return true
}

func (p *TokenProvider) matchToken(notif *domain.Notification, token string) bool {
	for _, field := range p.opts.Fields {
		value := fieldValue(notif, field)
		if value == "" {
			continue
		}
		if p.opts.CaseInsensitive {
			value = strings.ToLower(value)
		}
		if strings.Contains(value, token) {
			return true
		}
	}
	return false
}

// Name returns the provider name.
func (p *TokenProvider) Name() string {
	return "token"
}
