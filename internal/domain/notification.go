// Package domain provides the domain layer for notifications.
// It contains the notification entity, store predicates and the actions
// that can be executed against the remote service.
package domain

import (
	"fmt"
	"time"
)

// Notification represents a single notification entity.
//
// A store mutates its own notifications in place under its lock and hands
// out copies made with Clone. The Mark helpers replace timestamp pointers
// and never write through them, so a copy never changes under its holder.
type Notification struct {
	ID         string
	Title      string
	Content    *string
	ActionURL  *string
	Category   *string
	Topic      *string
	Recipient  *Recipient
	SentAt     time.Time
	SeenAt     *time.Time
	ReadAt     *time.Time
	ArchivedAt *time.Time
}

// Recipient identifies the user a notification was delivered to.
type Recipient struct {
	ID         string
	Email      *string
	ExternalID *string
	FirstName  *string
	LastName   *string
}

// Clone returns a copy of n that later mutations of n do not affect.
func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// IsRead reports whether the notification has a read timestamp.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// IsSeen reports whether the notification has a seen timestamp.
func (n *Notification) IsSeen() bool {
	return n.SeenAt != nil
}

// IsArchived reports whether the notification has an archived timestamp.
func (n *Notification) IsArchived() bool {
	return n.ArchivedAt != nil
}

// MarkRead sets both the read and seen timestamps to now.
func (n *Notification) MarkRead(now time.Time) *Notification {
	n.ReadAt = &now
	n.SeenAt = &now
	return n
}

// MarkUnread clears the read timestamp.
func (n *Notification) MarkUnread() *Notification {
	n.ReadAt = nil
	return n
}

// MarkSeen sets the seen timestamp to now.
func (n *Notification) MarkSeen(now time.Time) *Notification {
	n.SeenAt = &now
	return n
}

// Archive sets the archived timestamp to now.
func (n *Notification) Archive(now time.Time) *Notification {
	n.ArchivedAt = &now
	return n
}

// Unarchive clears the archived timestamp.
func (n *Notification) Unarchive() *Notification {
	n.ArchivedAt = nil
	return n
}

// Validate validates the notification and returns an error if invalid.
func (n *Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidNotificationID)
	}
	if n.Title == "" {
		return fmt.Errorf("notification %s: title cannot be empty", n.ID)
	}
	return nil
}

// StringValue dereferences an optional string, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr returns a pointer to v. Used to build optional fields.
func Ptr[T any](v T) *T {
	return &v
}
