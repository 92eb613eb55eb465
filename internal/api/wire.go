package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

// timestampLayout is the string form the service uses besides epoch seconds.
const timestampLayout = "2006-01-02T15:04:05Z"

// timestamp accepts epoch seconds, a numeric string or an RFC 3339 string.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '"' {
		secs, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", data, err)
		}
		t.Time = epoch(secs)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		t.Time = epoch(secs)
		return nil
	}
	for _, layout := range []string{timestampLayout, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func epoch(secs float64) time.Time {
	whole := int64(secs)
	return time.Unix(whole, int64((secs-float64(whole))*float64(time.Second))).UTC()
}

func (t *timestamp) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// notificationJSON accepts both the REST (snake case) and the GraphQL
// (camel case) field names.
type notificationJSON struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   *string        `json:"content"`
	ActionURL *string        `json:"action_url"`
	Category  *string        `json:"category"`
	Topic     *string        `json:"topic"`
	Recipient *recipientJSON `json:"recipient"`

	SentAt     *timestamp `json:"sent_at"`
	SeenAt     *timestamp `json:"seen_at"`
	ReadAt     *timestamp `json:"read_at"`
	ArchivedAt *timestamp `json:"archived_at"`

	ActionURLCamel  *string    `json:"actionUrl"`
	SentAtCamel     *timestamp `json:"sentAt"`
	SeenAtCamel     *timestamp `json:"seenAt"`
	ReadAtCamel     *timestamp `json:"readAt"`
	ArchivedAtCamel *timestamp `json:"archivedAt"`
}

type recipientJSON struct {
	ID         string  `json:"id"`
	Email      *string `json:"email"`
	ExternalID *string `json:"external_id"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`

	ExternalIDCamel *string `json:"externalId"`
	FirstNameCamel  *string `json:"firstName"`
	LastNameCamel   *string `json:"lastName"`
}

func (n notificationJSON) toDomain() *domain.Notification {
	out := &domain.Notification{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		ActionURL:  first(n.ActionURL, n.ActionURLCamel),
		Category:   n.Category,
		Topic:      n.Topic,
		SeenAt:     first(n.SeenAt, n.SeenAtCamel).ptr(),
		ReadAt:     first(n.ReadAt, n.ReadAtCamel).ptr(),
		ArchivedAt: first(n.ArchivedAt, n.ArchivedAtCamel).ptr(),
	}
	if sent := first(n.SentAt, n.SentAtCamel).ptr(); sent != nil {
		out.SentAt = *sent
	}
	if r := n.Recipient; r != nil {
		out.Recipient = &domain.Recipient{
			ID:         r.ID,
			Email:      r.Email,
			ExternalID: first(r.ExternalID, r.ExternalIDCamel),
			FirstName:  first(r.FirstName, r.FirstNameCamel),
			LastName:   first(r.LastName, r.LastNameCamel),
		}
	}
	return out
}

func first[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}

func toDomainList(in []notificationJSON) []*domain.Notification {
	out := make([]*domain.Notification, 0, len(in))
	for _, n := range in {
		out = append(out, n.toDomain())
	}
	return out
}
