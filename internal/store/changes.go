package store

// changes collects the structural events of one state update.
type changes struct {
	reloaded bool
	inserted []int
	changed  []int
	deleted  []int
}

type counters struct {
	total, unread, unseen int
	hasNextPage           bool
}

func (s *Store) countersLocked() counters {
	return counters{total: s.total, unread: s.unread, unseen: s.unseen, hasNextPage: s.hasNextPage}
}

// update applies fn under the state lock and then notifies observers of
// what changed. Callers must hold writeMu.
func (s *Store) update(fn func(c *changes)) {
	s.mu.Lock()
	before := s.countersLocked()
	var c changes
	fn(&c)
	s.clampLocked()
	after := s.countersLocked()
	s.mu.Unlock()

	s.dispatch(c, before, after)
}

// clampLocked keeps counters non-negative.
func (s *Store) clampLocked() {
	s.total = max(s.total, 0)
	s.unread = max(s.unread, 0)
	s.unseen = max(s.unseen, 0)
}

func (s *Store) dispatch(c changes, before, after counters) {
	content := s.contentObservers.snapshot()
	for _, o := range content {
		if c.reloaded {
			o.OnStoreReloaded()
		}
		if len(c.deleted) > 0 {
			o.OnNotificationsDeleted(c.deleted)
		}
		if len(c.inserted) > 0 {
			o.OnNotificationsInserted(c.inserted)
		}
		if len(c.changed) > 0 {
			o.OnNotificationsChanged(c.changed)
		}
		if before.hasNextPage != after.hasNextPage {
			o.OnStoreHasNextPageChanged(after.hasNextPage)
		}
	}

	if before.total == after.total && before.unread == after.unread && before.unseen == after.unseen {
		return
	}
	for _, o := range s.countObservers.snapshot() {
		if before.total != after.total {
			o.OnTotalCountChanged(after.total)
		}
		if before.unread != after.unread {
			o.OnUnreadCountChanged(after.unread)
		}
		if before.unseen != after.unseen {
			o.OnUnseenCountChanged(after.unseen)
		}
	}
}
