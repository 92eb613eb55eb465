package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshal(t *testing.T) {
	want := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "epoch seconds", input: `1672628645`, want: want},
		{name: "fractional epoch", input: `1672628645.5`, want: want.Add(500 * time.Millisecond)},
		{name: "numeric string", input: `"1672628645"`, want: want},
		{name: "service layout", input: `"2023-01-02T03:04:05Z"`, want: want},
		{name: "rfc3339 with offset", input: `"2023-01-02T05:04:05+02:00"`, want: want},
		{name: "null", input: `null`},
		{name: "empty string", input: `""`},
		{name: "garbage", input: `"soon"`, wantErr: true},
		{name: "boolean", input: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
			if tt.want.IsZero() {
				assert.Nil(t, ts.ptr())
			}
		})
	}
}

func TestNotificationJSONPrefersSnakeCase(t *testing.T) {
	var n notificationJSON
	require.NoError(t, json.Unmarshal([]byte(`{"id":"n1","read_at":1672628645,"readAt":"2024-01-01T00:00:00Z"}`), &n))
	got := n.toDomain()
	require.NotNil(t, got.ReadAt)
	assert.Equal(t, 2023, got.ReadAt.Year())
	assert.True(t, got.SentAt.IsZero())
	assert.Nil(t, got.Recipient)
}
