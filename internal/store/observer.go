package store

import (
	"reflect"
	"sync"
)

// ContentObserver is notified of structural changes to a store's list.
//
// Callbacks run synchronously after the change is applied and before the
// next change starts. They may read the store but must not call methods
// that mutate it.
type ContentObserver interface {
	OnStoreReloaded()
	OnNotificationsInserted(indexes []int)
	OnNotificationsChanged(indexes []int)
	OnNotificationsDeleted(indexes []int)
	OnStoreHasNextPageChanged(hasNextPage bool)
}

// CountObserver is notified when a store counter changes value.
type CountObserver interface {
	OnTotalCountChanged(count int)
	OnUnreadCountChanged(count int)
	OnUnseenCountChanged(count int)
}

// ContentObserverFuncs adapts optional functions to ContentObserver.
// Register it by pointer.
type ContentObserverFuncs struct {
	Reloaded       func()
	Inserted       func(indexes []int)
	Changed        func(indexes []int)
	Deleted        func(indexes []int)
	HasNextChanged func(hasNextPage bool)
}

func (f *ContentObserverFuncs) OnStoreReloaded() {
	if f.Reloaded != nil {
		f.Reloaded()
	}
}

func (f *ContentObserverFuncs) OnNotificationsInserted(indexes []int) {
	if f.Inserted != nil {
		f.Inserted(indexes)
	}
}

func (f *ContentObserverFuncs) OnNotificationsChanged(indexes []int) {
	if f.Changed != nil {
		f.Changed(indexes)
	}
}

func (f *ContentObserverFuncs) OnNotificationsDeleted(indexes []int) {
	if f.Deleted != nil {
		f.Deleted(indexes)
	}
}

func (f *ContentObserverFuncs) OnStoreHasNextPageChanged(hasNextPage bool) {
	if f.HasNextChanged != nil {
		f.HasNextChanged(hasNextPage)
	}
}

// CountObserverFuncs adapts optional functions to CountObserver.
// Register it by pointer.
type CountObserverFuncs struct {
	Total  func(count int)
	Unread func(count int)
	Unseen func(count int)
}

func (f *CountObserverFuncs) OnTotalCountChanged(count int) {
	if f.Total != nil {
		f.Total(count)
	}
}

func (f *CountObserverFuncs) OnUnreadCountChanged(count int) {
	if f.Unread != nil {
		f.Unread(count)
	}
}

func (f *CountObserverFuncs) OnUnseenCountChanged(count int) {
	if f.Unseen != nil {
		f.Unseen(count)
	}
}

// Subscription is returned when an observer is added. Cancel removes the
// observer; calling it more than once is a no-op.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel removes the observer from the store.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// observerSet is an ordered, concurrency-safe collection of observers.
type observerSet[T any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []observerEntry[T]
}

type observerEntry[T any] struct {
	id  uint64
	obs T
}

func (s *observerSet[T]) add(obs T) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.entries = append(s.entries, observerEntry[T]{id: id, obs: obs})
	return &Subscription{cancel: func() { s.removeID(id) }}
}

func (s *observerSet[T]) removeID(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.id == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return
		}
	}
}

// remove drops every registration of obs. Observers of a non comparable
// type can only be removed through their Subscription.
func (s *observerSet[T]) remove(obs T) {
	if t := reflect.TypeOf(obs); t == nil || !t.Comparable() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0:0]
	for _, e := range s.entries {
		if any(e.obs) != any(obs) {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

func (s *observerSet[T]) snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.obs
	}
	return out
}

func (s *observerSet[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
