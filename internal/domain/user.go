package domain

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMissingUser is returned when a user has neither an email nor an
// external ID.
var ErrMissingUser = errors.New("user requires an email or an external id")

// User identifies the person whose notifications are synchronized. At least
// one of Email or ExternalID must be set.
type User struct {
	Email      string
	ExternalID string
}

// Validate checks that the user can be identified remotely.
func (u User) Validate() error {
	if strings.TrimSpace(u.Email) == "" && strings.TrimSpace(u.ExternalID) == "" {
		return ErrMissingUser
	}
	return nil
}

// Key returns a stable identity for registries and caches.
func (u User) Key() string {
	return strconv.Quote(u.Email) + "|" + strconv.Quote(u.ExternalID)
}

// SigningSubject is the value signed for HMAC authentication. The external
// ID wins over the email when both are present.
func (u User) SigningSubject() string {
	if u.ExternalID != "" {
		return u.ExternalID
	}
	return u.Email
}

// String returns a short human readable form.
func (u User) String() string {
	switch {
	case u.Email != "" && u.ExternalID != "":
		return u.Email + " (" + u.ExternalID + ")"
	case u.ExternalID != "":
		return u.ExternalID
	default:
		return u.Email
	}
}
