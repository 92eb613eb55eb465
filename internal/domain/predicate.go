package domain

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Predicate holds the filter criteria that define which notifications a store
// contains. A Predicate is immutable once built; use NewPredicate or the
// PredicateOptions helpers to construct one.
type Predicate struct {
	read       *bool
	seen       *bool
	archived   bool
	categories []string // sorted, unique
	topics     []string // sorted, unique
}

// PredicateOption configures a Predicate.
type PredicateOption func(*Predicate)

// WithRead pins the read state.
func WithRead(read bool) PredicateOption {
	return func(p *Predicate) { p.read = &read }
}

// WithSeen pins the seen state.
func WithSeen(seen bool) PredicateOption {
	return func(p *Predicate) { p.seen = &seen }
}

// WithArchived selects archived (true) or not archived (false) notifications.
func WithArchived(archived bool) PredicateOption {
	return func(p *Predicate) { p.archived = archived }
}

// WithCategories restricts the predicate to the given categories.
func WithCategories(categories ...string) PredicateOption {
	return func(p *Predicate) { p.categories = append(p.categories, categories...) }
}

// WithTopics restricts the predicate to the given topics.
func WithTopics(topics ...string) PredicateOption {
	return func(p *Predicate) { p.topics = append(p.topics, topics...) }
}

// NewPredicate builds a predicate. With no options it matches every
// notification that is not archived.
func NewPredicate(opts ...PredicateOption) Predicate {
	var p Predicate
	for _, opt := range opts {
		opt(&p)
	}
	p.categories = normalizeSet(p.categories)
	p.topics = normalizeSet(p.topics)
	return p
}

func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Read returns the pinned read state and whether it is set.
func (p Predicate) Read() (value bool, ok bool) {
	if p.read == nil {
		return false, false
	}
	return *p.read, true
}

// Seen returns the pinned seen state and whether it is set.
func (p Predicate) Seen() (value bool, ok bool) {
	if p.seen == nil {
		return false, false
	}
	return *p.seen, true
}

// Archived returns the archived state the predicate selects.
func (p Predicate) Archived() bool {
	return p.archived
}

// Categories returns a copy of the category set.
func (p Predicate) Categories() []string {
	return slices.Clone(p.categories)
}

// Topics returns a copy of the topic set.
func (p Predicate) Topics() []string {
	return slices.Clone(p.topics)
}

// Match reports whether the notification satisfies every criterion of the
// predicate. Unset criteria always pass.
func (p Predicate) Match(n *Notification) bool {
	return p.matchRead(n) &&
		p.matchSeen(n) &&
		p.matchArchived(n) &&
		matchSet(p.categories, n.Category) &&
		matchSet(p.topics, n.Topic)
}

func (p Predicate) matchRead(n *Notification) bool {
	return p.read == nil || *p.read == n.IsRead()
}

func (p Predicate) matchSeen(n *Notification) bool {
	return p.seen == nil || *p.seen == n.IsSeen()
}

func (p Predicate) matchArchived(n *Notification) bool {
	return p.archived == n.IsArchived()
}

// matchSet passes when the set is empty; a nil value fails a non-empty set.
func matchSet(set []string, value *string) bool {
	if len(set) == 0 {
		return true
	}
	if value == nil {
		return false
	}
	_, found := slices.BinarySearch(set, *value)
	return found
}

// Key returns the structural identity of the predicate. Two predicates with
// equal fields produce the same key. Set elements are quoted so a value
// holding a comma cannot pose as two values.
func (p Predicate) Key() string {
	var b strings.Builder
	b.WriteString("read=")
	b.WriteString(triState(p.read))
	b.WriteString(";seen=")
	b.WriteString(triState(p.seen))
	b.WriteString(";archived=")
	b.WriteString(strconv.FormatBool(p.archived))
	b.WriteString(";categories=")
	writeSet(&b, p.categories)
	b.WriteString(";topics=")
	writeSet(&b, p.topics)
	return b.String()
}

func writeSet(b *strings.Builder, values []string) {
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(v))
	}
}

// Equal reports whether two predicates are structurally equal.
func (p Predicate) Equal(other Predicate) bool {
	return p.Key() == other.Key()
}

// String implements fmt.Stringer.
func (p Predicate) String() string {
	return p.Key()
}

func triState(v *bool) string {
	if v == nil {
		return "*"
	}
	return strconv.FormatBool(*v)
}

// QueryParams renders the predicate as REST query parameters.
func (p Predicate) QueryParams() url.Values {
	q := url.Values{}
	if p.read != nil {
		q.Set("read", strconv.FormatBool(*p.read))
	}
	if p.seen != nil {
		q.Set("seen", strconv.FormatBool(*p.seen))
	}
	q.Set("archived", strconv.FormatBool(p.archived))
	for _, c := range p.categories {
		q.Add("category", c)
	}
	for _, t := range p.topics {
		q.Add("topic", t)
	}
	return q
}

// GraphQLArgs renders the predicate as GraphQL field arguments.
func (p Predicate) GraphQLArgs() string {
	args := make([]string, 0, 5)
	if p.read != nil {
		args = append(args, "read: "+strconv.FormatBool(*p.read))
	}
	if p.seen != nil {
		args = append(args, "seen: "+strconv.FormatBool(*p.seen))
	}
	args = append(args, "archived: "+strconv.FormatBool(p.archived))
	if len(p.categories) > 0 {
		args = append(args, fmt.Sprintf("categories: %s", quoteList(p.categories)))
	}
	if len(p.topics) > 0 {
		args = append(args, fmt.Sprintf("topics: %s", quoteList(p.topics)))
	}
	return strings.Join(args, ", ")
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// PredicateOptions holds predicate parameters similar to CLI options.
type PredicateOptions struct {
	Read       string // "read", "unread" or ""
	Seen       string // "seen", "unseen" or ""
	Archived   bool
	Categories []string
	Topics     []string
}

// Read filter values accepted by PredicateOptions.
const (
	ReadFilterRead   = "read"
	ReadFilterUnread = "unread"
	SeenFilterSeen   = "seen"
	SeenFilterUnseen = "unseen"
)

// ToPredicate converts PredicateOptions to a Predicate.
func (o PredicateOptions) ToPredicate() (Predicate, error) {
	var opts []PredicateOption
	switch o.Read {
	case "":
	case ReadFilterRead:
		opts = append(opts, WithRead(true))
	case ReadFilterUnread:
		opts = append(opts, WithRead(false))
	default:
		return Predicate{}, fmt.Errorf("%w: read filter %q", ErrInvalidPredicate, o.Read)
	}
	switch o.Seen {
	case "":
	case SeenFilterSeen:
		opts = append(opts, WithSeen(true))
	case SeenFilterUnseen:
		opts = append(opts, WithSeen(false))
	default:
		return Predicate{}, fmt.Errorf("%w: seen filter %q", ErrInvalidPredicate, o.Seen)
	}
	opts = append(opts,
		WithArchived(o.Archived),
		WithCategories(o.Categories...),
		WithTopics(o.Topics...),
	)
	return NewPredicate(opts...), nil
}
