package realtime

import (
	"testing"

	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		want    domain.Event
		wantErr error
	}{
		{"new", Message{"notifications/new", []byte(`{"id":"a"}`)}, domain.NewEvent{ID: "a"}, nil},
		{"read", Message{"notifications/read", []byte(`{"id":"a"}`)}, domain.ReadEvent{ID: "a"}, nil},
		{"unread", Message{"notifications/unread", []byte(`{"id":"a"}`)}, domain.UnreadEvent{ID: "a"}, nil},
		{"delete", Message{"notifications/delete", []byte(`{"id":"a"}`)}, domain.DeleteEvent{ID: "a"}, nil},
		{"archived", Message{"notifications/archived", []byte(`{"id":"a","extra":1}`)}, domain.ArchivedEvent{ID: "a"}, nil},
		{"read all", Message{"notifications/read/all", []byte(`{}`)}, domain.ReadAllEvent{}, nil},
		{"seen all without data", Message{"notifications/seen/all", nil}, domain.SeenAllEvent{}, nil},
		{"empty id is still an id", Message{"notifications/read", []byte(`{"id":""}`)}, domain.ReadEvent{ID: ""}, nil},
		{"other namespace", Message{"users/new", []byte(`{"id":"a"}`)}, nil, domain.ErrUnknownEvent},
		{"no kind", Message{"notifications", nil}, nil, domain.ErrUnknownEvent},
		{"trailing slash", Message{"notifications/", nil}, nil, domain.ErrUnknownEvent},
		{"unknown kind with id", Message{"notifications/seen", []byte(`{"id":"a"}`)}, nil, domain.ErrUnknownEvent},
		{"per-item kind without id", Message{"notifications/read", []byte(`{}`)}, nil, domain.ErrUnknownEvent},
		{"bulk kind with id", Message{"notifications/read/all", []byte(`{"id":"a"}`)}, nil, domain.ErrUnknownEvent},
		{"malformed payload", Message{"notifications/read", []byte(`{"id":`)}, nil, ErrMalformedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.msg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
