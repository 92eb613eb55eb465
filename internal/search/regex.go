package search

import (
	"regexp"
	"sync"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

// RegexProvider provides regex-based search.
// Matches if any configured field matches the regex pattern.
type RegexProvider struct {
	opts    Options
	cache   map[string]*regexp.Regexp
	cacheMu sync.RWMutex
}

// NewRegexProvider creates a new regex search provider.
func NewRegexProvider(opts ...Option) Provider {
	return &RegexProvider{
		opts:  applyOptions(opts),
		cache: make(map[string]*regexp.Regexp),
	}
}

// Match returns true if any configured field matches the regex pattern.
// If the query is not a valid regex, it returns false for all notifications.
func (p *RegexProvider) Match(notif *domain.Notification, query string) bool {
	if query == "" {
		return true
	}
	re, err := p.Compile(query)
	if err != nil {
		return false
	}
	for _, field := range p.opts.Fields {
		value := fieldValue(notif, field)
		if value != "" && re.MatchString(value) {
			return true
		}
	}
	return false
}

// Compile returns the compiled pattern, using the cache. Callers can use it
// to reject an invalid pattern before filtering.
func (p *RegexProvider) Compile(pattern string) (*regexp.Regexp, error) {
	p.cacheMu.RLock()
	re, ok := p.cache[pattern]
	p.cacheMu.RUnlock()
	if ok {
		return re, nil
	}

	expr := pattern
	if p.opts.CaseInsensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	p.cacheMu.Lock()
	p.cache[pattern] = re
	p.cacheMu.Unlock()
	return re, nil
}

// Name returns the provider name.
func (p *RegexProvider) Name() string {
	return "regex"
}
