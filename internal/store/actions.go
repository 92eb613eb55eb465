package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/metrics"
)

// mutation changes one notification and the counters it contributes to.
// It runs with the state lock held.
type mutation func(n *domain.Notification)

// MarkAsRead marks the notification read remotely, then locally.
func (s *Store) MarkAsRead(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	return s.act(ctx, domain.ActionMarkRead, n, s.markReadLocked)
}

// MarkAsUnread marks the notification unread remotely, then locally.
func (s *Store) MarkAsUnread(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	return s.act(ctx, domain.ActionMarkUnread, n, s.markUnreadLocked)
}

// Archive archives the notification remotely, then locally.
func (s *Store) Archive(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	return s.act(ctx, domain.ActionArchive, n, s.archiveLocked)
}

// Unarchive unarchives the notification remotely, then locally.
func (s *Store) Unarchive(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	return s.act(ctx, domain.ActionUnarchive, n, s.unarchiveLocked)
}

// act runs the remote action and, only if it succeeds, applies mutate to
// the local copy. A notification that left the store while the action was
// in flight yields domain.ErrNotificationNotFound.
func (s *Store) act(ctx context.Context, action domain.Action, n *domain.Notification, mutate mutation) (*domain.Notification, error) {
	if n == nil {
		return nil, fmt.Errorf("%s notification: %w", action, domain.ErrInvalidNotificationID)
	}
	if err := s.repo.ExecuteAction(ctx, action, n.ID); err != nil {
		metrics.StoreActionFailures.WithLabelValues(action.String()).Inc()
		return nil, fmt.Errorf("%s notification %s: %w", action, n.ID, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		result *domain.Notification
		found  bool
	)
	s.update(func(c *changes) {
		result, found = s.mutateByIDLocked(n.ID, mutate, c)
		result = result.Clone()
	})
	if !found {
		metrics.StoreActionFailures.WithLabelValues(action.String()).Inc()
		return nil, fmt.Errorf("%s notification %s: %w", action, n.ID, domain.ErrNotificationNotFound)
	}
	return result, nil
}

// mutateByIDLocked applies mutate to the notification with id and re-tests
// the predicate: a match is reported as changed, a mismatch removes it.
func (s *Store) mutateByIDLocked(id string, mutate mutation, c *changes) (*domain.Notification, bool) {
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return nil, false
	}
	n := s.notifications[idx]
	mutate(n)
	if s.predicate.Match(n) {
		c.changed = []int{idx}
	} else {
		s.notifications = slices.Delete(s.notifications, idx, idx+1)
		c.deleted = []int{idx}
	}
	return n, true
}

// Delete deletes the notification remotely, then removes it locally.
func (s *Store) Delete(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return fmt.Errorf("delete notification: %w", domain.ErrInvalidNotificationID)
	}
	if err := s.repo.DeleteNotification(ctx, n.ID); err != nil {
		metrics.StoreActionFailures.WithLabelValues("delete").Inc()
		return fmt.Errorf("delete notification %s: %w", n.ID, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var found bool
	s.update(func(c *changes) {
		found = s.removeByIDLocked(n.ID, c)
	})
	if !found {
		metrics.StoreActionFailures.WithLabelValues("delete").Inc()
		return fmt.Errorf("delete notification %s: %w", n.ID, domain.ErrNotificationNotFound)
	}
	return nil
}

// removeByIDLocked removes the notification with id and adjusts counters.
func (s *Store) removeByIDLocked(id string, c *changes) bool {
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return false
	}
	n := s.notifications[idx]
	s.total--
	if !n.IsRead() {
		s.unread--
	}
	if !n.IsSeen() {
		s.unseen--
	}
	s.notifications = slices.Delete(s.notifications, idx, idx+1)
	c.deleted = []int{idx}
	return true
}

// MarkAllAsRead marks every notification read remotely, then applies the
// read mutation to every loaded notification. Elements are not removed.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	return s.actAll(ctx, domain.ActionMarkAllRead, s.markReadLocked)
}

// MarkAllAsSeen marks every notification seen remotely, then locally.
// Elements are not removed.
func (s *Store) MarkAllAsSeen(ctx context.Context) error {
	return s.actAll(ctx, domain.ActionMarkAllSeen, s.markSeenLocked)
}

func (s *Store) actAll(ctx context.Context, action domain.Action, mutate mutation) error {
	if err := s.repo.ExecuteAction(ctx, action, ""); err != nil {
		metrics.StoreActionFailures.WithLabelValues(action.String()).Inc()
		return fmt.Errorf("%s: %w", action, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.update(func(c *changes) {
		for _, n := range s.notifications {
			mutate(n)
		}
		c.changed = indexRange(0, len(s.notifications))
	})
	return nil
}

func (s *Store) markReadLocked(n *domain.Notification) {
	if !n.IsSeen() {
		s.unseen--
	}
	if !n.IsRead() {
		s.unread--
		if read, pinned := s.predicate.Read(); pinned && !read {
			s.total--
		}
	}
	n.MarkRead(s.now())
}

func (s *Store) markUnreadLocked(n *domain.Notification) {
	if n.IsRead() {
		read, pinned := s.predicate.Read()
		switch {
		case pinned && read:
			// leaves a read-only view
			s.total--
		case pinned && !read:
			s.total++
			s.unread++
		default:
			s.unread++
		}
	}
	n.MarkUnread()
}

func (s *Store) markSeenLocked(n *domain.Notification) {
	if !n.IsSeen() {
		s.unseen--
		n.MarkSeen(s.now())
	}
}

func (s *Store) archiveLocked(n *domain.Notification) {
	if n.IsArchived() {
		return
	}
	if !n.IsSeen() {
		s.unseen--
	}
	if !n.IsRead() {
		s.unread--
	}
	if !s.predicate.Archived() {
		s.total--
	}
	n.Archive(s.now())
}

func (s *Store) unarchiveLocked(n *domain.Notification) {
	if n.IsArchived() && s.predicate.Archived() {
		// leaves an archived-only view
		s.total--
	}
	n.Unarchive()
}
