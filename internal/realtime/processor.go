// Package realtime turns the realtime notification stream into domain
// events and fans them out to subscribed stores.
package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

// ErrMalformedMessage is returned when a message payload is not valid JSON.
var ErrMalformedMessage = errors.New("malformed realtime message")

const namespace = "notifications"

// Message is one named message received on the realtime channel.
type Message struct {
	Name string
	Data []byte
}

type payload struct {
	ID *string `json:"id"`
}

// Decode converts a wire message into a domain event. Per-notification
// messages carry {"id": "..."}; bulk messages carry no id.
func Decode(msg Message) (domain.Event, error) {
	prefix, kind, ok := strings.Cut(msg.Name, "/")
	if !ok || prefix != namespace || kind == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, msg.Name)
	}

	var p payload
	if data := bytes.TrimSpace(msg.Data); len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedMessage, msg.Name, err)
		}
	}

	if p.ID != nil {
		id := *p.ID
		switch kind {
		case "new":
			return domain.NewEvent{ID: id}, nil
		case "read":
			return domain.ReadEvent{ID: id}, nil
		case "unread":
			return domain.UnreadEvent{ID: id}, nil
		case "delete":
			return domain.DeleteEvent{ID: id}, nil
		case "archived":
			return domain.ArchivedEvent{ID: id}, nil
		}
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, msg.Name)
	}

	switch kind {
	case "read/all":
		return domain.ReadAllEvent{}, nil
	case "seen/all":
		return domain.SeenAllEvent{}, nil
	}
	return nil, fmt.Errorf("%w: %q without id", domain.ErrUnknownEvent, msg.Name)
}
