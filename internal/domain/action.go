package domain

import "fmt"

// Action is a remote operation on one or all notifications.
type Action string

const (
	ActionMarkRead    Action = "read"
	ActionMarkUnread  Action = "unread"
	ActionArchive     Action = "archive"
	ActionUnarchive   Action = "unarchive"
	ActionMarkAllRead Action = "read_all"
	ActionMarkAllSeen Action = "seen_all"
)

// IsValid checks if the action is known.
func (a Action) IsValid() bool {
	switch a {
	case ActionMarkRead, ActionMarkUnread, ActionArchive, ActionUnarchive,
		ActionMarkAllRead, ActionMarkAllSeen:
		return true
	default:
		return false
	}
}

// IsBulk reports whether the action applies to every notification of the user.
func (a Action) IsBulk() bool {
	return a == ActionMarkAllRead || a == ActionMarkAllSeen
}

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// ParseAction parses a string into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid action: %s", s)
	}
	return a, nil
}
