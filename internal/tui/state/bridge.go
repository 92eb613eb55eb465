package state

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/bellsync/internal/realtime"
	"github.com/cristianoliveira/bellsync/internal/store"
)

// Bridge turns store and connector callbacks into bubbletea messages. Store
// notifications are coalesced: the view always re-reads the full store.
type Bridge struct {
	changed  chan struct{}
	statuses chan realtime.Status
	subs     []*store.Subscription
}

// NewBridge returns an unattached Bridge.
func NewBridge() *Bridge {
	return &Bridge{
		changed:  make(chan struct{}, 1),
		statuses: make(chan realtime.Status, 8),
	}
}

// Attach observes s until Detach is called.
func (b *Bridge) Attach(s *store.Store) {
	notify := func() {
		select {
		case b.changed <- struct{}{}:
		default:
		}
	}
	content := &store.ContentObserverFuncs{
		Reloaded:       notify,
		Inserted:       func([]int) { notify() },
		Changed:        func([]int) { notify() },
		Deleted:        func([]int) { notify() },
		HasNextChanged: func(bool) { notify() },
	}
	counts := &store.CountObserverFuncs{
		Total:  func(int) { notify() },
		Unread: func(int) { notify() },
		Unseen: func(int) { notify() },
	}
	b.subs = append(b.subs, s.AddContentObserver(content), s.AddCountObserver(counts))
}

// Detach removes every observer registered by Attach.
func (b *Bridge) Detach() {
	for _, sub := range b.subs {
		sub.Cancel()
	}
	b.subs = nil
}

// StatusListener is meant for realtime.WithStatusListener. Statuses are
// dropped when the view falls behind.
func (b *Bridge) StatusListener() func(realtime.Status) {
	return func(s realtime.Status) {
		select {
		case b.statuses <- s:
		default:
		}
	}
}

func (b *Bridge) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-b.changed
		return storeChangedMsg{}
	}
}

func (b *Bridge) waitForStatus() tea.Cmd {
	return func() tea.Msg {
		return connectionMsg{Status: <-b.statuses}
	}
}
