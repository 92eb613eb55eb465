package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/bellsync/internal/colors"
	"github.com/cristianoliveira/bellsync/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// fakeNotification is a notification as the fake service stores it.
type fakeNotification struct {
	ID       string
	Title    string
	Category string
	Sent     time.Time
	Read     bool
	Seen     bool
	Archived bool
}

func (n fakeNotification) json() map[string]any {
	out := map[string]any{
		"id":      n.ID,
		"title":   n.Title,
		"sent_at": n.Sent.Unix(),
	}
	if n.Category != "" {
		out["category"] = n.Category
	}
	stamp := n.Sent.Add(time.Minute).Format(time.RFC3339)
	if n.Read {
		out["read_at"] = stamp
	}
	if n.Seen {
		out["seen_at"] = stamp
	}
	if n.Archived {
		out["archived_at"] = stamp
	}
	return out
}

// fakeService is an in-memory notification service. Notifications are
// served in stored order, newest first.
type fakeService struct {
	mu            sync.Mutex
	notifications []fakeNotification
	calls         []string
	queries       []string
	done          chan struct{}
}

func newFakeService() *fakeService {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return &fakeService{
		done: make(chan struct{}),
		notifications: []fakeNotification{
			{ID: "n1", Title: "Invoice ready", Category: "billing", Sent: base.Add(2 * time.Hour)},
			{ID: "n2", Title: "Welcome aboard", Sent: base.Add(time.Hour), Read: true, Seen: true},
			{ID: "a1", Title: "Old report", Sent: base, Read: true, Seen: true, Archived: true},
		},
	}
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ws": map[string]any{"channel": "inbox"}})
	})
	mux.HandleFunc("GET /ws/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		select {
		case <-r.Context().Done():
		case <-f.done:
		}
	})
	mux.HandleFunc("GET /notifications", f.list)
	mux.HandleFunc("POST /notifications/{id}/{action}", func(w http.ResponseWriter, r *http.Request) {
		f.mutate(r, func(n *fakeNotification) {
			switch r.PathValue("action") {
			case "read":
				n.Read, n.Seen = true, true
			case "unread":
				n.Read = false
			case "archive":
				n.Archived = true
			}
		})
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /notifications/{id}/archive", func(w http.ResponseWriter, r *http.Request) {
		f.mutate(r, func(n *fakeNotification) { n.Archived = false })
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /notifications/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		f.notifications = slices.DeleteFunc(f.notifications, func(n fakeNotification) bool {
			return n.ID == r.PathValue("id")
		})
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /notifications/read", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /notifications/seen", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeService) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q.Encode())

	var matched []fakeNotification
	for _, n := range f.notifications {
		if strconv.FormatBool(n.Archived) != q.Get("archived") {
			continue
		}
		if v := q.Get("read"); v != "" && strconv.FormatBool(n.Read) != v {
			continue
		}
		if v := q.Get("seen"); v != "" && strconv.FormatBool(n.Seen) != v {
			continue
		}
		matched = append(matched, n)
	}

	unread, unseen := 0, 0
	for _, n := range matched {
		if !n.Read {
			unread++
		}
		if !n.Seen {
			unseen++
		}
	}

	page, _ := strconv.Atoi(q.Get("page"))
	page = max(page, 1)
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	perPage = max(perPage, 1)
	totalPages := max((len(matched)+perPage-1)/perPage, 1)

	items := []map[string]any{}
	for i := (page - 1) * perPage; i < min(page*perPage, len(matched)); i++ {
		items = append(items, matched[i].json())
	}
	writeJSON(w, map[string]any{
		"notifications": items,
		"total":         len(matched),
		"unread_count":  unread,
		"unseen_count":  unseen,
		"current_page":  page,
		"total_pages":   totalPages,
	})
}

func (f *fakeService) mutate(r *http.Request, fn func(n *fakeNotification)) {
	f.record(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == r.PathValue("id") {
			fn(&f.notifications[i])
		}
	}
}

func (f *fakeService) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
}

func (f *fakeService) snapshot() (calls, queries []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls), slices.Clone(f.queries)
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// setupService starts a fake service and points the configuration at it.
func setupService(t *testing.T) *fakeService {
	t.Helper()
	svc := newFakeService()
	srv := httptest.NewServer(svc.handler())
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(svc.done) })

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("BELLSYNC_CONFIG_PATH", "")
	config.Load()
	config.Set("base_url", srv.URL)
	config.Set("api_key", "pk_test")
	config.Set("user_email", "ada@example.com")
	return svc
}

// captureConsole redirects colors output to the returned buffer.
func captureConsole(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	colors.SetOutput(buf, buf)
	t.Cleanup(func() { colors.SetOutput(nil, nil) })
	return buf
}

// execute runs c with args and returns what it wrote to stdout.
func execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewCommandsRejectNilOpener(t *testing.T) {
	require.Panics(t, func() { NewListCmd(nil) })
	require.Panics(t, func() { NewStatusCmd(nil) })
	require.Panics(t, func() { NewFollowCmd(nil) })
	require.Panics(t, func() { NewWatchCmd(nil) })
	require.Panics(t, func() { NewActionCmd(nil, actionDefs[0]) })
	require.Panics(t, func() { NewBulkCmd(nil, bulkDefs[0]) })
}
