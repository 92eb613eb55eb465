// Package director keeps one notification store per predicate for a user
// and wires every store to the shared realtime channel.
package director

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/logging"
	"github.com/cristianoliveira/bellsync/internal/metrics"
	"github.com/cristianoliveira/bellsync/internal/ports"
	"github.com/cristianoliveira/bellsync/internal/retry"
	"github.com/cristianoliveira/bellsync/internal/store"
)

// DefaultConnectDelay is the wait between realtime connection attempts.
const DefaultConnectDelay = 30 * time.Second

// Director is a registry of stores keyed by predicate. It owns the
// realtime connection: the first store triggers a connect loop that
// retries until the channel is open.
type Director struct {
	repo      ports.NotificationRepository
	channel   ports.RealtimeChannel
	config    ports.ConfigSource
	logger    logging.Logger
	policy    retry.Policy
	storeOpts []store.Option

	mu      sync.Mutex
	stores  map[string]*store.Store
	order   []string
	connect *retry.Job
}

// Option configures a Director.
type Option func(*Director)

// WithLogger sets the logger used by the director and its stores.
func WithLogger(l logging.Logger) Option {
	return func(d *Director) { d.logger = logging.OrNop(l) }
}

// WithConnectPolicy sets the delay between realtime connection attempts.
func WithConnectPolicy(p retry.Policy) Option {
	return func(d *Director) {
		if p != nil {
			d.policy = p
		}
	}
}

// WithStoreOptions sets options applied to every store the director builds.
func WithStoreOptions(opts ...store.Option) Option {
	return func(d *Director) { d.storeOpts = append(d.storeOpts, opts...) }
}

// New creates a Director. No connection is made until the first store is
// requested.
func New(repo ports.NotificationRepository, channel ports.RealtimeChannel, config ports.ConfigSource, opts ...Option) *Director {
	d := &Director{
		repo:    repo,
		channel: channel,
		config:  config,
		logger:  logging.Nop(),
		policy:  retry.Constant(DefaultConnectDelay),
		stores:  make(map[string]*store.Store),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "director")
	return d
}

// StoreFor returns the live store for predicate, building and subscribing
// one if needed. Structurally equal predicates share a store.
func (d *Director) StoreFor(predicate domain.Predicate) *store.Store {
	key := predicate.Key()

	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.stores[key]; ok {
		return s
	}

	opts := append(slices.Clone(d.storeOpts), store.WithLogger(d.logger))
	s := store.New(predicate, d.repo, opts...)
	s.Start()
	d.channel.Subscribe(s)
	d.stores[key] = s
	d.order = append(d.order, key)
	metrics.LiveStores.Inc()
	d.logger.Debug("store created", "predicate", key)

	if d.connect == nil {
		d.connect = retry.Go(context.Background(), "realtime_connect", d.connectRealtime,
			retry.WithPolicy(d.policy), retry.WithLogger(d.logger))
	}
	return s
}

func (d *Director) connectRealtime(ctx context.Context) error {
	cfg, err := d.config.GetConfig(ctx, false)
	if err != nil {
		return fmt.Errorf("get realtime config: %w", err)
	}
	if err := d.channel.Connect(ctx, cfg); err != nil {
		return err
	}
	d.logger.Info("realtime connected", "channel", cfg.ChannelName)
	return nil
}

// ForAll returns the store of every unarchived notification.
func (d *Director) ForAll() *store.Store {
	return d.StoreFor(domain.NewPredicate())
}

// ForUnread returns the store of unread notifications.
func (d *Director) ForUnread() *store.Store {
	return d.StoreFor(domain.NewPredicate(domain.WithRead(false)))
}

// ForRead returns the store of read notifications.
func (d *Director) ForRead() *store.Store {
	return d.StoreFor(domain.NewPredicate(domain.WithRead(true)))
}

// ForCategory returns the store of notifications in category.
func (d *Director) ForCategory(category string) *store.Store {
	return d.StoreFor(domain.NewPredicate(domain.WithCategories(category)))
}

// ForTopic returns the store of notifications in topic.
func (d *Director) ForTopic(topic string) *store.Store {
	return d.StoreFor(domain.NewPredicate(domain.WithTopics(topic)))
}

// Dispose unsubscribes and closes the store for predicate. It is a no-op
// when no such store is live.
func (d *Director) Dispose(predicate domain.Predicate) {
	key := predicate.Key()

	d.mu.Lock()
	s, ok := d.stores[key]
	if ok {
		delete(d.stores, key)
		d.order = slices.DeleteFunc(d.order, func(k string) bool { return k == key })
	}
	d.mu.Unlock()

	if ok {
		d.release(s)
		d.logger.Debug("store disposed", "predicate", key)
	}
}

// Stores returns the live stores in creation order.
func (d *Director) Stores() []*store.Store {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*store.Store, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.stores[key])
	}
	return out
}

// Len returns the number of live stores.
func (d *Director) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.stores)
}

// Logout tears down every store, disconnects the realtime channel and
// drops the user's realtime configuration.
func (d *Director) Logout(ctx context.Context) error {
	d.Close()
	if err := d.config.DeleteConfig(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	d.logger.Info("logged out")
	return nil
}

// Close tears down every store and disconnects the realtime channel. The
// director can be used again afterwards.
func (d *Director) Close() {
	d.mu.Lock()
	stores := make([]*store.Store, 0, len(d.order))
	for _, key := range d.order {
		stores = append(stores, d.stores[key])
	}
	d.stores = make(map[string]*store.Store)
	d.order = nil
	job := d.connect
	d.connect = nil
	d.mu.Unlock()

	job.Stop()
	for _, s := range stores {
		d.release(s)
	}
	d.channel.Disconnect()
}

func (d *Director) release(s *store.Store) {
	d.channel.Unsubscribe(s)
	s.Close()
	metrics.LiveStores.Dec()
}
