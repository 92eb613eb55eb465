package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNext(t *testing.T) {
	tests := []struct {
		name      string
		page      Page
		wantNext  bool
		wantToken PageToken
	}{
		{"no descriptor", Page{}, false, ""},
		{"cursor with next", Page{Cursor: &CursorPagination{NextCursor: Ptr("abc"), HasNextPage: true}}, true, "abc"},
		{"cursor exhausted", Page{Cursor: &CursorPagination{NextCursor: Ptr("abc"), HasNextPage: false}}, false, ""},
		{"cursor missing value", Page{Cursor: &CursorPagination{HasNextPage: true}}, false, ""},
		{"numbered first of three", Page{Numbered: &NumberedPagination{CurrentPage: 1, TotalPages: 3}}, true, "2"},
		{"numbered last", Page{Numbered: &NumberedPagination{CurrentPage: 3, TotalPages: 3}}, false, ""},
		{"numbered empty", Page{Numbered: &NumberedPagination{CurrentPage: 1, TotalPages: 0}}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasNext, token := tt.page.Next()
			assert.Equal(t, tt.wantNext, hasNext)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestPageTokenPageNumber(t *testing.T) {
	assert.Equal(t, 1, PageToken("").PageNumber())
	assert.Equal(t, 1, PageToken("cursor").PageNumber())
	assert.Equal(t, 1, PageToken("-2").PageNumber())
	assert.Equal(t, 4, PageToken("4").PageNumber())
}

func TestEventKinds(t *testing.T) {
	events := []Event{
		NewEvent{ID: "1"}, ReadEvent{ID: "1"}, UnreadEvent{ID: "1"}, ArchivedEvent{ID: "1"},
		DeleteEvent{ID: "1"}, ReadAllEvent{}, SeenAllEvent{}, ReloadEvent{},
	}
	seen := map[string]bool{}
	for _, e := range events {
		assert.False(t, seen[e.Kind()], "duplicate kind %s", e.Kind())
		seen[e.Kind()] = true
	}
	assert.Len(t, seen, 8)
}
