package store

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/metrics"
)

// HandleRealtimeEvent queues a realtime event for the store's worker. It
// blocks while the queue is full and returns immediately once the store is
// closed. Events are applied in the order they are queued.
func (s *Store) HandleRealtimeEvent(ev domain.Event) {
	select {
	case s.inbox <- ev:
	case <-s.ctx.Done():
	}
}

// reconcile merges one realtime event into the store.
func (s *Store) reconcile(ctx context.Context, ev domain.Event) {
	if ev == nil {
		return
	}
	metrics.RealtimeEventsReceived.WithLabelValues(ev.Kind()).Inc()
	s.logger.Debug("reconciling realtime event", "kind", ev.Kind())

	switch e := ev.(type) {
	case domain.NewEvent:
		s.refreshFromEvent(ctx, ev)
	case domain.ReloadEvent:
		s.refreshFromEvent(ctx, ev)
	case domain.ReadEvent:
		s.reconcileMutation(ctx, ev, e.ID, s.markReadLocked)
	case domain.UnreadEvent:
		s.reconcileMutation(ctx, ev, e.ID, s.markUnreadLocked)
	case domain.ArchivedEvent:
		s.reconcileMutation(ctx, ev, e.ID, s.archiveLocked)
	case domain.DeleteEvent:
		s.reconcileDelete(e.ID)
	case domain.ReadAllEvent:
		read, readPinned := s.predicate.Read()
		seen, seenPinned := s.predicate.Seen()
		if (readPinned && !read) || (seenPinned && !seen) {
			s.clear()
			return
		}
		s.refreshFromEvent(ctx, ev)
	case domain.SeenAllEvent:
		if seen, pinned := s.predicate.Seen(); pinned && !seen {
			s.clear()
			return
		}
		s.refreshFromEvent(ctx, ev)
	default:
		s.logger.Error("unhandled realtime event",
			"error", fmt.Errorf("%w: %T", domain.ErrUnknownEvent, ev))
	}
}

// reconcileMutation applies mutate to a loaded notification, or refreshes
// when the notification is not loaded.
func (s *Store) reconcileMutation(ctx context.Context, ev domain.Event, id string, mutate mutation) {
	s.writeMu.Lock()
	var found bool
	s.update(func(c *changes) {
		_, found = s.mutateByIDLocked(id, mutate, c)
	})
	s.writeMu.Unlock()

	if !found {
		s.refreshFromEvent(ctx, ev)
	}
}

// reconcileDelete removes a loaded notification. Unknown ids are ignored.
func (s *Store) reconcileDelete(id string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.update(func(c *changes) {
		s.removeByIDLocked(id, c)
	})
}

// clear empties the store without a network call: every loaded element is
// reported deleted and the counters drop to zero. Pagination restarts, so
// the next Fetch loads the first page.
func (s *Store) clear() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.update(func(c *changes) {
		c.deleted = indexRange(0, len(s.notifications))
		s.notifications = nil
		s.total, s.unread, s.unseen = 0, 0, 0
		s.hasNextPage, s.nextToken = true, ""
		s.generation++
	})
}

func (s *Store) refreshFromEvent(ctx context.Context, ev domain.Event) {
	if _, err := s.refresh(ctx, "realtime_"+ev.Kind()); err != nil {
		s.logger.Warn("refresh after realtime event failed", "kind", ev.Kind(), "error", err)
	}
}
