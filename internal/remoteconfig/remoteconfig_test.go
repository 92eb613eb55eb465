package remoteconfig

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cristianoliveira/bellsync/internal/cache"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("offline")

type fakeFetcher struct {
	calls   int
	channel string
	err     error
}

func (f *fakeFetcher) FetchRealtimeConfig(context.Context) (domain.RealtimeConfig, error) {
	f.calls++
	if f.err != nil {
		return domain.RealtimeConfig{}, f.err
	}
	return domain.RealtimeConfig{ChannelName: f.channel}, nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (domain.RealtimeConfig, error) {
	return domain.RealtimeConfig{}, errors.New("disk on fire")
}
func (brokenCache) Put(context.Context, string, domain.RealtimeConfig) error { return errors.New("disk on fire") }
func (brokenCache) Delete(context.Context, string) error                     { return errors.New("disk on fire") }

func newSQLiteCache(t *testing.T) *cache.SQLiteCache {
	t.Helper()
	c, err := cache.NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGetConfigCachesRemoteValue(t *testing.T) {
	fetcher := &fakeFetcher{channel: "chan-1"}
	p := New(newSQLiteCache(t), fetcher, "ada")
	ctx := context.Background()

	cfg, err := p.GetConfig(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "chan-1", cfg.ChannelName)

	fetcher.channel = "chan-2"
	cfg, err = p.GetConfig(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "chan-1", cfg.ChannelName, "served from cache")
	assert.Equal(t, 1, fetcher.calls)

	cfg, err = p.GetConfig(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "chan-2", cfg.ChannelName)
	assert.Equal(t, 2, fetcher.calls)
}

func TestCacheIsPerUser(t *testing.T) {
	c := newSQLiteCache(t)
	ctx := context.Background()
	_, err := New(c, &fakeFetcher{channel: "ada"}, "ada").GetConfig(ctx, false)
	require.NoError(t, err)

	cfg, err := New(c, &fakeFetcher{channel: "bob"}, "bob").GetConfig(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.ChannelName)
}

func TestDeleteConfigForcesNetwork(t *testing.T) {
	fetcher := &fakeFetcher{channel: "chan"}
	p := New(newSQLiteCache(t), fetcher, "ada")
	ctx := context.Background()

	_, err := p.GetConfig(ctx, false)
	require.NoError(t, err)
	require.NoError(t, p.DeleteConfig(ctx))
	_, err = p.GetConfig(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestGetConfigFetchError(t *testing.T) {
	p := New(newSQLiteCache(t), &fakeFetcher{err: errOffline}, "ada")
	_, err := p.GetConfig(context.Background(), false)
	require.ErrorIs(t, err, errOffline)
}

func TestBrokenCacheFallsBackToNetwork(t *testing.T) {
	fetcher := &fakeFetcher{channel: "chan"}
	p := New(brokenCache{}, fetcher, "ada")

	cfg, err := p.GetConfig(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "chan", cfg.ChannelName)
	require.Error(t, p.DeleteConfig(context.Background()))
}

func TestNilCache(t *testing.T) {
	fetcher := &fakeFetcher{channel: "chan"}
	p := New(nil, fetcher, "ada")
	ctx := context.Background()

	for range 2 {
		_, err := p.GetConfig(ctx, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, fetcher.calls)
	assert.NoError(t, p.DeleteConfig(ctx))
}
