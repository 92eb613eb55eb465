package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTemplates(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default preset", nil, "[1] Invoice ready\n"},
		{"count only", []string{"--format", "count-only"}, "1\n"},
		{"json preset", []string{"--format", "json"}, `{"total":2,"unread":1,"unseen":1}` + "\n"},
		{"custom template", []string{"--format", "${read-count} read of ${total-count}"}, "1 read of 2\n"},
		{"filtered", []string{"--filter", "read", "--format", "${total-count} ${latest-title}"}, "1 Welcome aboard\n"},
		{"category", []string{"--format", "${latest-category}:${has-unread}"}, "billing:true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupService(t)
			out, err := execute(t, NewStatusCmd(newSession), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestStatusRejectsBadTemplates(t *testing.T) {
	svc := setupService(t)

	_, err := execute(t, NewStatusCmd(newSession), "--format", "${nope}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	_, err = execute(t, NewStatusCmd(newSession), "--format", "${unread-count")
	require.Error(t, err)

	_, queries := svc.snapshot()
	assert.Empty(t, queries)
}

func TestStatusHelpListsPresets(t *testing.T) {
	c := NewStatusCmd(newSession)
	assert.Contains(t, c.Long, "count-only")
	assert.Contains(t, c.Long, "unread-count")
}
