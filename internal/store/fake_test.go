package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

var (
	errBoom = errors.New("boom")
	t0      = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

// fakeRepo is an in-memory remote service. FetchPage returns fresh copies
// of the server-side notifications, like a real transport would.
type fakeRepo struct {
	mu         sync.Mutex
	server     []*domain.Notification
	cursor     bool
	fetchErr   error
	actionErr  error
	deleteErr  error
	fetchCalls int
	tokens     []domain.PageToken
	actions    []string
	// beforeReturn runs after the page is built and before it is returned.
	beforeReturn func(call int)
}

func newFakeRepo(notifs ...*domain.Notification) *fakeRepo {
	return &fakeRepo{server: notifs}
}

func seed(count int, mutate ...func(i int, n *domain.Notification)) []*domain.Notification {
	out := make([]*domain.Notification, count)
	for i := range out {
		n := &domain.Notification{
			ID:     fmt.Sprintf("n%d", i),
			Title:  fmt.Sprintf("notification %d", i),
			SentAt: t0.Add(-time.Duration(i) * time.Minute),
		}
		for _, m := range mutate {
			m(i, n)
		}
		out[i] = n
	}
	return out
}

func clone(n *domain.Notification) *domain.Notification {
	c := *n
	return &c
}

func (f *fakeRepo) FetchPage(_ context.Context, p domain.Predicate, token domain.PageToken, size int) (domain.Page, error) {
	f.mu.Lock()
	f.fetchCalls++
	call := f.fetchCalls
	f.tokens = append(f.tokens, token)
	hook := f.beforeReturn
	if f.fetchErr != nil {
		err := f.fetchErr
		f.mu.Unlock()
		return domain.Page{}, err
	}

	var matching []*domain.Notification
	page := domain.Page{}
	for _, n := range f.server {
		if !p.Match(n) {
			continue
		}
		matching = append(matching, n)
		page.TotalCount++
		if !n.IsRead() {
			page.UnreadCount++
		}
		if !n.IsSeen() {
			page.UnseenCount++
		}
	}
	number := domain.PageToken(strings.TrimPrefix(string(token), "cursor-")).PageNumber()
	totalPages := (len(matching) + size - 1) / size
	for i := (number - 1) * size; i < len(matching) && i < number*size; i++ {
		page.Notifications = append(page.Notifications, clone(matching[i]))
	}
	if f.cursor {
		next := fmt.Sprintf("cursor-%d", number+1)
		page.Cursor = &domain.CursorPagination{NextCursor: &next, HasNextPage: number < totalPages}
	} else {
		page.Numbered = &domain.NumberedPagination{CurrentPage: number, TotalPages: totalPages}
	}
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return page, nil
}

func (f *fakeRepo) ExecuteAction(_ context.Context, action domain.Action, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, fmt.Sprintf("%s:%s", action, id))
	if f.actionErr != nil {
		return f.actionErr
	}
	for _, n := range f.server {
		if !action.IsBulk() && n.ID != id {
			continue
		}
		switch action {
		case domain.ActionMarkRead, domain.ActionMarkAllRead:
			n.MarkRead(t0)
		case domain.ActionMarkUnread:
			n.MarkUnread()
		case domain.ActionArchive:
			n.Archive(t0)
		case domain.ActionUnarchive:
			n.Unarchive()
		case domain.ActionMarkAllSeen:
			n.MarkSeen(t0)
		}
	}
	return nil
}

func (f *fakeRepo) DeleteNotification(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, "delete:"+id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, n := range f.server {
		if n.ID == id {
			f.server = append(f.server[:i], f.server[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

func (f *fakeRepo) setServer(notifs ...*domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.server = notifs
}

// recorder records observer callbacks as strings.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func (r *recorder) OnStoreReloaded()                   { r.add("reloaded") }
func (r *recorder) OnNotificationsInserted(idx []int)  { r.add("inserted %v", idx) }
func (r *recorder) OnNotificationsChanged(idx []int)   { r.add("changed %v", idx) }
func (r *recorder) OnNotificationsDeleted(idx []int)   { r.add("deleted %v", idx) }
func (r *recorder) OnStoreHasNextPageChanged(has bool) { r.add("hasNext %v", has) }
func (r *recorder) OnTotalCountChanged(count int)      { r.add("total %d", count) }
func (r *recorder) OnUnreadCountChanged(count int)     { r.add("unread %d", count) }
func (r *recorder) OnUnseenCountChanged(count int)     { r.add("unseen %d", count) }

func newTestStore(p domain.Predicate, repo *fakeRepo, opts ...Option) (*Store, *recorder) {
	opts = append([]Option{WithClock(func() time.Time { return t0 })}, opts...)
	s := New(p, repo, opts...)
	rec := &recorder{}
	s.AddContentObserver(rec)
	s.AddCountObserver(rec)
	return s, rec
}

func ids(ns []*domain.Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}
