package realtime

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/logging"
	"github.com/cristianoliveira/bellsync/internal/metrics"
	"github.com/cristianoliveira/bellsync/internal/ports"
	"github.com/cristianoliveira/bellsync/internal/retry"
)

// Status is the connection state of a Connector.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Streamer opens the server-sent event stream of a realtime channel.
type Streamer interface {
	OpenStream(ctx context.Context, channel string) (io.ReadCloser, error)
}

// DefaultReconnectPolicy is used between reconnection attempts after the
// stream drops.
var DefaultReconnectPolicy = retry.Exponential(time.Second, 30*time.Second)

// Connector keeps one realtime stream open and publishes its events to the
// embedded Hub. When the stream drops while connected it reconnects, then
// sends a ReloadEvent to every subscriber since events may have been missed.
type Connector struct {
	*Hub
	streamer Streamer
	logger   logging.Logger
	policy   retry.Policy
	onStatus func(Status)

	mu     sync.Mutex
	status Status
	epoch  uint64
	cancel context.CancelFunc
	done   chan struct{}
}

var _ ports.RealtimeChannel = (*Connector)(nil)

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) ConnectorOption {
	return func(c *Connector) { c.logger = logging.OrNop(l) }
}

// WithReconnectPolicy sets the delay between reconnection attempts.
func WithReconnectPolicy(p retry.Policy) ConnectorOption {
	return func(c *Connector) {
		if p != nil {
			c.policy = p
		}
	}
}

// WithStatusListener registers fn to be called on every status change.
func WithStatusListener(fn func(Status)) ConnectorOption {
	return func(c *Connector) { c.onStatus = fn }
}

// NewConnector creates a disconnected Connector reading from streamer.
func NewConnector(streamer Streamer, opts ...ConnectorOption) *Connector {
	c := &Connector{
		Hub:      NewHub(),
		streamer: streamer,
		logger:   logging.Nop(),
		policy:   DefaultReconnectPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "realtime")
	return c
}

// Status returns the current connection state.
func (c *Connector) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connect opens the stream for cfg.ChannelName. It returns nil without doing
// anything when the connector is already connecting or connected. If the
// first attempt fails the connector goes back to disconnected and the error
// is returned; retrying is up to the caller.
func (c *Connector) Connect(ctx context.Context, cfg domain.RealtimeConfig) error {
	c.mu.Lock()
	if c.status != StatusDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.epoch++
	epoch := c.epoch
	c.status = StatusConnecting
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.mu.Unlock()
	c.logger.Info("realtime status changed", "status", StatusConnecting.String())
	c.notifyStatus(StatusConnecting)

	stop := context.AfterFunc(ctx, cancel)
	body, err := c.dial(runCtx, cfg.ChannelName)
	if !stop() && err == nil {
		body.Close()
		err = ctx.Err()
	}
	if err != nil {
		cancel()
		c.setStatus(epoch, StatusDisconnected)
		return fmt.Errorf("connect realtime channel %q: %w", cfg.ChannelName, err)
	}

	done := make(chan struct{})
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		cancel()
		body.Close()
		return nil
	}
	c.done = done
	c.mu.Unlock()
	c.setStatus(epoch, StatusConnected)

	go c.listen(runCtx, epoch, cfg.ChannelName, body, done)
	return nil
}

// Disconnect closes the stream and stops reconnecting. Subscribers stay
// registered.
func (c *Connector) Disconnect() {
	c.mu.Lock()
	c.epoch++
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	changed := c.status != StatusDisconnected
	c.status = StatusDisconnected
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if changed {
		c.logger.Info("realtime disconnected")
		c.notifyStatus(StatusDisconnected)
	}
}

func (c *Connector) listen(ctx context.Context, epoch uint64, channel string, body io.ReadCloser, done chan struct{}) {
	defer close(done)
	for {
		err := c.consume(ctx, body)
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("realtime stream dropped", "channel", channel, "error", err)
		if !c.setStatus(epoch, StatusConnecting) {
			return
		}

		err = retry.Forever(ctx, "realtime_reconnect", func(ctx context.Context) error {
			b, err := c.dial(ctx, channel)
			if err != nil {
				return err
			}
			body = b
			return nil
		}, retry.WithPolicy(c.policy), retry.WithLogger(c.logger))
		if err != nil {
			return
		}
		if !c.setStatus(epoch, StatusConnected) {
			body.Close()
			return
		}
		c.Publish(domain.ReloadEvent{})
	}
}

// consume reads body until it ends or ctx is done, then closes it.
func (c *Connector) consume(ctx context.Context, body io.ReadCloser) error {
	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer stop()
	defer body.Close()

	err := readFrames(body, c.dispatch)
	if err == nil {
		err = io.EOF
	}
	return err
}

func (c *Connector) dispatch(msg Message) {
	ev, err := Decode(msg)
	if err != nil {
		metrics.RealtimeMessagesRejected.WithLabelValues(msg.Name).Inc()
		c.logger.Error("dropping realtime message", "name", msg.Name, "error", err)
		return
	}
	c.logger.Debug("realtime event", "kind", ev.Kind())
	c.Publish(ev)
}

func (c *Connector) dial(ctx context.Context, channel string) (io.ReadCloser, error) {
	body, err := c.streamer.OpenStream(ctx, channel)
	if err != nil {
		metrics.RealtimeConnects.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}
	metrics.RealtimeConnects.WithLabelValues(metrics.ResultOK).Inc()
	return body, nil
}

// setStatus moves to status if epoch is still current and reports whether
// it did.
func (c *Connector) setStatus(epoch uint64, status Status) bool {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return false
	}
	changed := c.status != status
	c.status = status
	c.mu.Unlock()

	if changed {
		c.logger.Info("realtime status changed", "status", status.String())
		c.notifyStatus(status)
	}
	return true
}

func (c *Connector) notifyStatus(status Status) {
	if c.onStatus != nil {
		c.onStatus(status)
	}
}
