package domain

import "strconv"

// DefaultPageSize is the number of notifications requested per page.
const DefaultPageSize = 20

// PageToken is an opaque reference to the next page. The empty token asks
// for the first page.
type PageToken string

// Page is one page of notifications plus the server-side counters for the
// predicate it was fetched with.
type Page struct {
	Notifications []*Notification
	TotalCount    int
	UnreadCount   int
	UnseenCount   int

	// Exactly one of Cursor or Numbered is expected to be set.
	Cursor   *CursorPagination
	Numbered *NumberedPagination
}

// CursorPagination describes cursor-based pagination.
type CursorPagination struct {
	NextCursor  *string
	HasNextPage bool
}

// NumberedPagination describes page-number-based pagination.
type NumberedPagination struct {
	CurrentPage int
	TotalPages  int
}

// Next normalizes the page's pagination descriptor into a has-next flag
// and the token to request the following page with.
func (p Page) Next() (hasNext bool, token PageToken) {
	switch {
	case p.Cursor != nil:
		if !p.Cursor.HasNextPage || p.Cursor.NextCursor == nil {
			return false, ""
		}
		return true, PageToken(*p.Cursor.NextCursor)
	case p.Numbered != nil:
		if p.Numbered.CurrentPage >= p.Numbered.TotalPages {
			return false, ""
		}
		return true, PageToken(strconv.Itoa(p.Numbered.CurrentPage + 1))
	default:
		return false, ""
	}
}

// PageNumber interprets the token as a page number, defaulting to 1.
func (t PageToken) PageNumber() int {
	n, err := strconv.Atoi(string(t))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// RealtimeConfig holds what is needed to open the realtime channel.
type RealtimeConfig struct {
	ChannelName string
}
