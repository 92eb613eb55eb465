// Package remoteconfig resolves the realtime configuration of a user, reading
// the local cache first and falling back to the API.
package remoteconfig

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianoliveira/bellsync/internal/cache"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/logging"
)

// Cache stores configs per user key.
type Cache interface {
	Get(ctx context.Context, userKey string) (domain.RealtimeConfig, error)
	Put(ctx context.Context, userKey string, cfg domain.RealtimeConfig) error
	Delete(ctx context.Context, userKey string) error
}

// Fetcher loads the config from the remote service.
type Fetcher interface {
	FetchRealtimeConfig(ctx context.Context) (domain.RealtimeConfig, error)
}

// Provider implements ports.ConfigSource for one user.
type Provider struct {
	cache   Cache
	fetcher Fetcher
	userKey string
	logger  logging.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(p *Provider) {
		p.logger = logging.OrNop(logger)
	}
}

// New returns a provider for the user identified by userKey. A nil cache
// always goes to the network.
func New(c Cache, fetcher Fetcher, userKey string, opts ...Option) *Provider {
	p := &Provider{cache: c, fetcher: fetcher, userKey: userKey, logger: logging.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetConfig returns the cached config unless force is set or nothing is
// cached, in which case it fetches and caches the remote config. A cache
// failure never hides a successful fetch.
func (p *Provider) GetConfig(ctx context.Context, force bool) (domain.RealtimeConfig, error) {
	if !force && p.cache != nil {
		cfg, err := p.cache.Get(ctx, p.userKey)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, cache.ErrNotCached) {
			p.logger.Warn("read cached realtime config", "error", err)
		}
	}

	cfg, err := p.fetcher.FetchRealtimeConfig(ctx)
	if err != nil {
		return domain.RealtimeConfig{}, fmt.Errorf("get realtime config: %w", err)
	}
	if p.cache != nil {
		if err := p.cache.Put(ctx, p.userKey, cfg); err != nil {
			p.logger.Warn("store realtime config", "error", err)
		}
	}
	return cfg, nil
}

// DeleteConfig drops the cached config of the user.
func (p *Provider) DeleteConfig(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	if err := p.cache.Delete(ctx, p.userKey); err != nil {
		return fmt.Errorf("delete realtime config: %w", err)
	}
	return nil
}
