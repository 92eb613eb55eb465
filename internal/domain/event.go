package domain

// Event is a notification lifecycle event delivered over the realtime
// channel. The set of implementations is closed; switch on the concrete type.
type Event interface {
	realtimeEvent()
	// Kind returns a short name for logs and metrics.
	Kind() string
}

// NewEvent signals that a notification was created.
type NewEvent struct{ ID string }

// ReadEvent signals that a notification was marked read.
type ReadEvent struct{ ID string }

// UnreadEvent signals that a notification was marked unread.
type UnreadEvent struct{ ID string }

// ArchivedEvent signals that a notification was archived.
type ArchivedEvent struct{ ID string }

// DeleteEvent signals that a notification was deleted.
type DeleteEvent struct{ ID string }

// ReadAllEvent signals that every notification was marked read.
type ReadAllEvent struct{}

// SeenAllEvent signals that every notification was marked seen.
type SeenAllEvent struct{}

// ReloadEvent signals that the channel reconnected and state may be stale.
type ReloadEvent struct{}

func (NewEvent) realtimeEvent()      {}
func (ReadEvent) realtimeEvent()     {}
func (UnreadEvent) realtimeEvent()   {}
func (ArchivedEvent) realtimeEvent() {}
func (DeleteEvent) realtimeEvent()   {}
func (ReadAllEvent) realtimeEvent()  {}
func (SeenAllEvent) realtimeEvent()  {}
func (ReloadEvent) realtimeEvent()   {}

func (NewEvent) Kind() string      { return "new" }
func (ReadEvent) Kind() string     { return "read" }
func (UnreadEvent) Kind() string   { return "unread" }
func (ArchivedEvent) Kind() string { return "archived" }
func (DeleteEvent) Kind() string   { return "delete" }
func (ReadAllEvent) Kind() string  { return "read-all" }
func (SeenAllEvent) Kind() string  { return "seen-all" }
func (ReloadEvent) Kind() string   { return "reload" }
