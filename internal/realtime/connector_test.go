package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDial = errors.New("dial failed")

// fakeStreamer hands out pipes; the test writes frames to the other end.
type fakeStreamer struct {
	mu       sync.Mutex
	failures int
	dials    int
	channels []string
	conns    chan *io.PipeWriter
}

func newFakeStreamer() *fakeStreamer {
	return &fakeStreamer{conns: make(chan *io.PipeWriter, 8)}
}

func (f *fakeStreamer) OpenStream(_ context.Context, channel string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dials++
	f.channels = append(f.channels, channel)
	if f.failures > 0 {
		f.failures--
		return nil, errDial
	}
	r, w := io.Pipe()
	f.conns <- w
	return r, nil
}

func (f *fakeStreamer) dialCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dials
}

func (f *fakeStreamer) next(t *testing.T) *io.PipeWriter {
	t.Helper()
	select {
	case w := <-f.conns:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("no stream opened")
		return nil
	}
}

func send(t *testing.T, w *io.PipeWriter, name, data string) {
	t.Helper()
	go func() {
		_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	}()
}

func receive(t *testing.T, h chanHandler) domain.Event {
	t.Helper()
	select {
	case ev := <-h:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
		return nil
	}
}

func newTestConnector(streamer Streamer, statuses *[]Status, mu *sync.Mutex) *Connector {
	return NewConnector(streamer,
		WithReconnectPolicy(retry.Immediate()),
		WithStatusListener(func(s Status) {
			mu.Lock()
			defer mu.Unlock()
			*statuses = append(*statuses, s)
		}),
	)
}

func TestConnectorDeliversEvents(t *testing.T) {
	streamer := newFakeStreamer()
	c := NewConnector(streamer, WithReconnectPolicy(retry.Immediate()))
	h := make(chanHandler, 8)
	c.Subscribe(h)

	require.NoError(t, c.Connect(context.Background(), domain.RealtimeConfig{ChannelName: "user-1"}))
	defer c.Disconnect()
	assert.Equal(t, StatusConnected, c.Status())

	w := streamer.next(t)
	send(t, w, "notifications/read", `{"id":"n1"}`)
	assert.Equal(t, domain.Event(domain.ReadEvent{ID: "n1"}), receive(t, h))

	send(t, w, "notifications/bogus", `{"id":"n1"}`)
	send(t, w, "notifications/seen/all", `{}`)
	assert.Equal(t, domain.Event(domain.SeenAllEvent{}), receive(t, h), "unknown messages are dropped")
	assert.Equal(t, []string{"user-1"}, streamer.channels)
}

func TestConnectIsNoopWhileConnected(t *testing.T) {
	streamer := newFakeStreamer()
	c := NewConnector(streamer)
	ctx := context.Background()

	require.NoError(t, c.Connect(ctx, domain.RealtimeConfig{ChannelName: "a"}))
	require.NoError(t, c.Connect(ctx, domain.RealtimeConfig{ChannelName: "a"}))
	c.Disconnect()

	assert.Equal(t, 1, streamer.dialCount())
}

func TestConnectFailureLeavesConnectorDisconnected(t *testing.T) {
	streamer := newFakeStreamer()
	streamer.failures = 1
	var (
		mu       sync.Mutex
		statuses []Status
	)
	c := newTestConnector(streamer, &statuses, &mu)

	err := c.Connect(context.Background(), domain.RealtimeConfig{ChannelName: "a"})
	require.ErrorIs(t, err, errDial)
	assert.Equal(t, StatusDisconnected, c.Status())

	require.NoError(t, c.Connect(context.Background(), domain.RealtimeConfig{ChannelName: "a"}))
	c.Disconnect()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{
		StatusConnecting, StatusDisconnected,
		StatusConnecting, StatusConnected, StatusDisconnected,
	}, statuses)
}

func TestConnectorReconnectsAndReloadsAfterDrop(t *testing.T) {
	streamer := newFakeStreamer()
	var (
		mu       sync.Mutex
		statuses []Status
	)
	c := newTestConnector(streamer, &statuses, &mu)
	h := make(chanHandler, 8)
	c.Subscribe(h)

	require.NoError(t, c.Connect(context.Background(), domain.RealtimeConfig{ChannelName: "a"}))
	defer c.Disconnect()

	first := streamer.next(t)
	streamer.mu.Lock()
	streamer.failures = 2
	streamer.mu.Unlock()
	require.NoError(t, first.Close())

	second := streamer.next(t)
	assert.Equal(t, domain.Event(domain.ReloadEvent{}), receive(t, h))
	assert.Eventually(t, func() bool { return c.Status() == StatusConnected }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 4, streamer.dialCount())

	send(t, second, "notifications/new", `{"id":"n9"}`)
	assert.Equal(t, domain.Event(domain.NewEvent{ID: "n9"}), receive(t, h))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusConnecting, StatusConnected, StatusConnecting, StatusConnected}, statuses)
}

func TestDisconnectStopsWithoutReload(t *testing.T) {
	streamer := newFakeStreamer()
	c := NewConnector(streamer, WithReconnectPolicy(retry.Immediate()))
	h := make(chanHandler, 8)
	c.Subscribe(h)

	require.NoError(t, c.Connect(context.Background(), domain.RealtimeConfig{ChannelName: "a"}))
	streamer.next(t)
	c.Disconnect()
	c.Disconnect()

	assert.Equal(t, StatusDisconnected, c.Status())
	assert.Equal(t, 1, streamer.dialCount())
	assert.Empty(t, h)
	assert.Equal(t, 1, c.Len(), "subscribers survive a disconnect")
}

func TestConnectWithCancelledContext(t *testing.T) {
	streamer := newFakeStreamer()
	c := NewConnector(streamer)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Connect(ctx, domain.RealtimeConfig{ChannelName: "a"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusDisconnected, c.Status())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "disconnected", StatusDisconnected.String())
	assert.Equal(t, "connecting", StatusConnecting.String())
	assert.Equal(t, "connected", StatusConnected.String())
}
