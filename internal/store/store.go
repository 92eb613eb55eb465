// Package store implements the synchronized notification store: a cached,
// paginated view of the notifications matching one predicate, kept
// consistent with the remote service under local actions and realtime
// events.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/logging"
	"github.com/cristianoliveira/bellsync/internal/metrics"
	"github.com/cristianoliveira/bellsync/internal/ports"
)

const defaultInboxSize = 64

// Store owns the notifications for one predicate.
//
// All state changes go through writeMu, so a locate-mutate-notify sequence
// is atomic with respect to every other change. Observers are dispatched
// while writeMu is held but after mu is released, so they can read the
// store from inside a callback.
type Store struct {
	predicate domain.Predicate
	repo      ports.NotificationRepository
	pageSize  int
	logger    logging.Logger
	now       func() time.Time

	writeMu sync.Mutex
	fetchMu sync.Mutex

	mu            sync.RWMutex
	notifications []*domain.Notification
	total         int
	unread        int
	unseen        int
	hasNextPage   bool
	nextToken     domain.PageToken
	// generation changes whenever the list is replaced or cleared; an
	// in-flight fetch started on an older generation is discarded.
	generation uint64

	refreshSeq     uint64 // guarded by seqMu
	appliedRefresh uint64 // guarded by writeMu
	seqMu          sync.Mutex

	contentObservers observerSet[ContentObserver]
	countObservers   observerSet[CountObserver]

	inbox     chan domain.Event
	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets the number of notifications requested per page.
func WithPageSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = logging.OrNop(l) }
}

// WithClock overrides the time source used for read/seen/archived stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithInboxSize sets the capacity of the realtime event queue.
func WithInboxSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.inbox = make(chan domain.Event, n)
		}
	}
}

// New creates a store for predicate backed by repo. The store is empty and
// reports a next page until the first fetch or refresh.
func New(predicate domain.Predicate, repo ports.NotificationRepository, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		predicate:   predicate,
		repo:        repo,
		pageSize:    domain.DefaultPageSize,
		logger:      logging.Nop(),
		now:         time.Now,
		hasNextPage: true,
		inbox:       make(chan domain.Event, defaultInboxSize),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "store", "predicate", predicate.Key())
	return s
}

// Predicate returns the predicate the store was created with.
func (s *Store) Predicate() domain.Predicate {
	return s.predicate
}

// TotalCount returns the server-side number of notifications matching the predicate.
func (s *Store) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// UnreadCount returns the number of unread notifications.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// UnseenCount returns the number of unseen notifications.
func (s *Store) UnseenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unseen
}

// HasNextPage reports whether Fetch can load more notifications.
func (s *Store) HasNextPage() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasNextPage
}

// Len returns the number of loaded notifications.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notifications)
}

// At returns the notification at index i, or nil when out of range.
func (s *Store) At(i int) *domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.notifications) {
		return nil
	}
	return s.notifications[i].Clone()
}

// IndexOf returns the index of the notification with id, or -1.
func (s *Store) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfLocked(id)
}

// Contains reports whether a notification with id is loaded.
func (s *Store) Contains(id string) bool {
	return s.IndexOf(id) >= 0
}

// Notifications returns a snapshot of the loaded notifications. Both the
// slice and the notifications are copies, safe to read while the store
// keeps changing.
func (s *Store) Notifications() []*domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.notifications)
}

func cloneAll(list []*domain.Notification) []*domain.Notification {
	out := make([]*domain.Notification, len(list))
	for i, n := range list {
		out[i] = n.Clone()
	}
	return out
}

func (s *Store) indexOfLocked(id string) int {
	return slices.IndexFunc(s.notifications, func(n *domain.Notification) bool { return n.ID == id })
}

// AddContentObserver registers a content observer.
func (s *Store) AddContentObserver(o ContentObserver) *Subscription {
	return s.contentObservers.add(o)
}

// RemoveContentObserver unregisters a content observer. Removing an
// observer that is not registered is a no-op.
func (s *Store) RemoveContentObserver(o ContentObserver) {
	s.contentObservers.remove(o)
}

// AddCountObserver registers a count observer.
func (s *Store) AddCountObserver(o CountObserver) *Subscription {
	return s.countObservers.add(o)
}

// RemoveCountObserver unregisters a count observer. Removing an observer
// that is not registered is a no-op.
func (s *Store) RemoveCountObserver(o CountObserver) {
	s.countObservers.remove(o)
}

// Refresh replaces the store's content with the first page. Observers get a
// single reload event. On failure the store is left untouched. If a later
// refresh completes first, this result is discarded and the current
// content is returned.
func (s *Store) Refresh(ctx context.Context) ([]*domain.Notification, error) {
	return s.refresh(ctx, "manual")
}

func (s *Store) refresh(ctx context.Context, trigger string) ([]*domain.Notification, error) {
	s.seqMu.Lock()
	s.refreshSeq++
	seq := s.refreshSeq
	s.seqMu.Unlock()

	page, err := s.repo.FetchPage(ctx, s.predicate, "", s.pageSize)
	if err != nil {
		metrics.StoreRefreshes.WithLabelValues(trigger, metrics.ResultError).Inc()
		return nil, fmt.Errorf("refresh store: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if seq < s.appliedRefresh {
		metrics.StoreRefreshes.WithLabelValues(trigger, metrics.ResultDiscarded).Inc()
		s.logger.Debug("discarding superseded refresh", "seq", seq, "applied", s.appliedRefresh)
		return s.Notifications(), nil
	}
	s.appliedRefresh = seq

	var loaded []*domain.Notification
	s.update(func(c *changes) {
		s.notifications = s.accept(nil, page.Notifications)
		loaded = cloneAll(s.notifications)
		s.applyPageLocked(page)
		s.generation++
		c.reloaded = true
	})
	metrics.StoreRefreshes.WithLabelValues(trigger, metrics.ResultOK).Inc()
	return loaded, nil
}

// Fetch loads the next page and appends it. When there is no next page it
// returns an empty slice and changes nothing. A fetch that overlaps a
// refresh which replaced the list is discarded.
func (s *Store) Fetch(ctx context.Context) ([]*domain.Notification, error) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	s.mu.RLock()
	hasNext, token, generation := s.hasNextPage, s.nextToken, s.generation
	s.mu.RUnlock()
	if !hasNext {
		return []*domain.Notification{}, nil
	}

	page, err := s.repo.FetchPage(ctx, s.predicate, token, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("fetch next page: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	stale := s.generation != generation
	s.mu.RUnlock()
	if stale {
		s.logger.Debug("discarding fetch started before a reload", "token", string(token))
		return []*domain.Notification{}, nil
	}

	var appended []*domain.Notification
	s.update(func(c *changes) {
		oldSize := len(s.notifications)
		s.notifications = s.accept(s.notifications, page.Notifications)
		appended = cloneAll(s.notifications[oldSize:])
		s.applyPageLocked(page)
		c.inserted = indexRange(oldSize, len(s.notifications))
	})
	return appended, nil
}

// accept appends the notifications from a page that match the predicate
// and are not already present.
func (s *Store) accept(list, incoming []*domain.Notification) []*domain.Notification {
	seen := make(map[string]struct{}, len(list)+len(incoming))
	for _, n := range list {
		seen[n.ID] = struct{}{}
	}
	for _, n := range incoming {
		if n == nil {
			continue
		}
		if _, dup := seen[n.ID]; dup {
			continue
		}
		if !s.predicate.Match(n) {
			s.logger.Warn("dropping notification outside predicate", "id", n.ID)
			continue
		}
		seen[n.ID] = struct{}{}
		list = append(list, n)
	}
	return list
}

// applyPageLocked copies the server-authoritative counters and pagination.
func (s *Store) applyPageLocked(page domain.Page) {
	s.total = max(page.TotalCount, 0)
	s.unread = max(page.UnreadCount, 0)
	s.unseen = max(page.UnseenCount, 0)
	s.hasNextPage, s.nextToken = page.Next()
}

// Start launches the worker that applies realtime events. It is safe to
// call more than once.
func (s *Store) Start() {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run()
	})
}

// Close stops the realtime worker and waits for it to exit. Events queued
// but not yet applied are dropped.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
	})
}

func (s *Store) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.inbox:
			s.reconcile(s.ctx, ev)
		}
	}
}

func indexRange(from, to int) []int {
	if to <= from {
		return nil
	}
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
