package state

import (
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/realtime"
)

// storeChangedMsg is sent when the store reported a structural or counter change.
type storeChangedMsg struct{}

// connectionMsg carries a realtime connection status change.
type connectionMsg struct {
	Status realtime.Status
}

// loadedMsg is sent when a refresh or fetch completes.
type loadedMsg struct {
	Err error
}

// actionDoneMsg is sent when an action completes.
type actionDoneMsg struct {
	Action domain.Action
	Delete bool
	Err    error
}

// clearMessageMsg clears the footer message if it is still the current one.
type clearMessageMsg struct {
	Seq int
}
