// Package pushtoken keeps the device token of a user registered with the
// push channel. Registration and removal run in the background and retry
// until they succeed.
package pushtoken

import (
	"context"
	"sync"
	"time"

	"github.com/cristianoliveira/bellsync/internal/logging"
	"github.com/cristianoliveira/bellsync/internal/ports"
	"github.com/cristianoliveira/bellsync/internal/retry"
)

// DefaultDelay is the wait between failed attempts.
const DefaultDelay = 10 * time.Second

// Director sends and deletes the device token of one user. A new request
// cancels the one in flight so the last call wins.
type Director struct {
	registrar ports.PushTokenRegistrar
	logger    logging.Logger
	policy    retry.Policy

	mu    sync.Mutex
	job   *retry.Job
	token string
}

// Option configures a Director.
type Option func(*Director)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Director) { d.logger = logging.OrNop(l) }
}

// WithPolicy sets the delay between attempts.
func WithPolicy(p retry.Policy) Option {
	return func(d *Director) {
		if p != nil {
			d.policy = p
		}
	}
}

// New returns a Director registering tokens through registrar.
func New(registrar ports.PushTokenRegistrar, opts ...Option) *Director {
	d := &Director{
		registrar: registrar,
		logger:    logging.Nop(),
		policy:    retry.Constant(DefaultDelay),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "push_token")
	return d
}

// Send registers token in the background. The returned job finishes once
// the token is registered or the request is superseded.
func (d *Director) Send(token string) *retry.Job {
	return d.start("push_token_register", token, func(ctx context.Context) error {
		return d.registrar.RegisterPushToken(ctx, token)
	})
}

// Delete unregisters token in the background.
func (d *Director) Delete(token string) *retry.Job {
	return d.start("push_token_unregister", "", func(ctx context.Context) error {
		return d.registrar.UnregisterPushToken(ctx, token)
	})
}

// Token returns the last token sent, or "" after a Delete.
func (d *Director) Token() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token
}

// Pending reports whether a request is still retrying.
func (d *Director) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.job == nil {
		return false
	}
	select {
	case <-d.job.Done():
		return false
	default:
		return true
	}
}

// Close cancels any request in flight.
func (d *Director) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.job.Stop()
	d.job = nil
}

func (d *Director) start(name, token string, op func(ctx context.Context) error) *retry.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.job.Stop()
	d.token = token
	d.job = retry.Go(context.Background(), name, op, retry.WithPolicy(d.policy), retry.WithLogger(d.logger))
	return d.job
}
