package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cristianoliveira/bellsync/internal/domain"
)

// ErrMissingChannel is returned when the realtime config names no channel.
var ErrMissingChannel = errors.New("realtime config has no channel")

type configJSON struct {
	WS struct {
		Channel string `json:"channel"`
	} `json:"ws"`
}

// FetchRealtimeConfig returns the realtime channel for the user.
func (c *Client) FetchRealtimeConfig(ctx context.Context) (domain.RealtimeConfig, error) {
	var body configJSON
	if err := c.do(ctx, request{method: http.MethodGet, path: "/config"}, &body); err != nil {
		return domain.RealtimeConfig{}, fmt.Errorf("fetch realtime config: %w", err)
	}
	if body.WS.Channel == "" {
		return domain.RealtimeConfig{}, ErrMissingChannel
	}
	return domain.RealtimeConfig{ChannelName: body.WS.Channel}, nil
}

// OpenStream opens the server-sent event stream of channel. The stream lives
// until ctx is cancelled or the body is closed.
func (c *Client) OpenStream(ctx context.Context, channel string) (io.ReadCloser, error) {
	if channel == "" {
		return nil, ErrMissingChannel
	}
	resp, err := c.send(ctx, request{
		method: http.MethodGet,
		path:   "/ws/stream",
		query:  url.Values{"channel": {channel}},
		accept: "text/event-stream",
		stream: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	return resp.Body, nil
}
