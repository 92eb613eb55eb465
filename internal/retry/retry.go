// Package retry runs background tasks that retry until they succeed or are
// cancelled.
package retry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cristianoliveira/bellsync/internal/logging"
	"github.com/cristianoliveira/bellsync/internal/metrics"
)

// Policy builds the delay schedule for one run of a task.
type Policy func() backoff.BackOff

// Constant waits d between attempts.
func Constant(d time.Duration) Policy {
	return func() backoff.BackOff { return backoff.NewConstantBackOff(d) }
}

// Immediate retries without waiting.
func Immediate() Policy {
	return func() backoff.BackOff { return &backoff.ZeroBackOff{} }
}

// Exponential grows the delay from initial up to maxDelay.
func Exponential(initial, maxDelay time.Duration) Policy {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initial
		b.MaxInterval = maxDelay
		return b
	}
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

type options struct {
	policy Policy
	logger logging.Logger
}

// Option configures a task.
type Option func(*options)

// WithPolicy sets the delay schedule. The default waits 30 seconds.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithLogger sets the logger that records failed attempts.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = logging.OrNop(l) }
}

// DefaultDelay is the wait between attempts when no policy is given.
const DefaultDelay = 30 * time.Second

// Forever runs op until it returns nil, returns a Permanent error, or ctx is
// done. Failed attempts are logged at warn level.
func Forever(ctx context.Context, name string, op func(ctx context.Context) error, opts ...Option) error {
	o := options{policy: Constant(DefaultDelay), logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("task", name)

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, op(ctx)
	},
		backoff.WithBackOff(o.policy()),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.RetryAttempts.WithLabelValues(name).Inc()
			logger.Warn("attempt failed, retrying", "attempt", attempt, "next", next.String(), "error", err)
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("task cancelled", "attempts", attempt)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("task succeeded", "attempts", attempt)
	return nil
}

// Job is a task running Forever in its own goroutine.
type Job struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Go starts op in the background. The job stops when op succeeds, when
// parent is done, or when Stop is called.
func Go(parent context.Context, name string, op func(ctx context.Context) error, opts ...Option) *Job {
	ctx, cancel := context.WithCancel(parent)
	j := &Job{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(j.done)
		defer cancel()
		err := Forever(ctx, name, op, opts...)
		j.mu.Lock()
		j.err = err
		j.mu.Unlock()
	}()
	return j
}

// Stop cancels the job and waits for it to exit. It is safe to call on a
// finished job and on a nil Job.
func (j *Job) Stop() {
	if j == nil {
		return
	}
	j.cancel()
	<-j.done
}

// Done is closed when the job has exited.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Err returns the job's result once Done is closed: nil on success, or the
// cancellation or permanent error.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
