package main

import (
	"errors"
	"fmt"

	"github.com/cristianoliveira/bellsync/internal/api"
	"github.com/cristianoliveira/bellsync/internal/cache"
	"github.com/cristianoliveira/bellsync/internal/client"
	"github.com/cristianoliveira/bellsync/internal/colors"
	"github.com/cristianoliveira/bellsync/internal/config"
	"github.com/cristianoliveira/bellsync/internal/director"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/hooks"
	"github.com/cristianoliveira/bellsync/internal/logging"
	"github.com/cristianoliveira/bellsync/internal/pushtoken"
	"github.com/cristianoliveira/bellsync/internal/retry"
	"github.com/cristianoliveira/bellsync/internal/store"
)

// session is the signed-in user of one command run.
type session struct {
	client *client.Client
	user   *client.User
	cache  *cache.SQLiteCache
	logger logging.Logger
}

// openSession builds a session from the loaded configuration. Can be changed
// for testing.
var openSession = newSession

func newSession(command string, opts ...client.Option) (*session, error) {
	logger, err := logging.Init(logging.FromGlobalConfig(command))
	if err != nil {
		return nil, err
	}
	colors.SetLogger(logger)
	s, err := buildSession(logger, opts)
	if err != nil {
		_ = logger.Shutdown()
		return nil, err
	}
	return s, nil
}

func buildSession(logger logging.Logger, opts []client.Option) (*session, error) {
	user := domain.User{
		Email:      config.Get("user_email", ""),
		ExternalID: config.Get("user_external_id", ""),
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: set user_email or user_external_id, or pass --email", err)
	}

	apiClient, err := api.New(api.Config{
		BaseURL:    config.Get("base_url", config.DefaultBaseURL),
		APIKey:     config.Get("api_key", ""),
		APISecret:  config.Get("api_secret", ""),
		EnableHMAC: config.GetBool("enable_hmac", false),
		Timeout:    config.GetSeconds("http_timeout_seconds", api.DefaultTimeout),
	}, user, api.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	pagination, err := api.ParsePagination(config.Get("pagination", string(api.PaginationPage)))
	if err != nil {
		return nil, err
	}

	configCache, err := cache.NewSQLiteCache(config.Get("cache_path", ""))
	if err != nil {
		return nil, err
	}

	base := []client.Option{
		client.WithLogger(logger),
		client.WithConfigCache(configCache),
		client.WithPagination(pagination),
		client.WithConnectPolicy(retry.Constant(config.GetSeconds("realtime_retry_seconds", director.DefaultConnectDelay))),
		client.WithPushPolicy(retry.Constant(config.GetSeconds("push_retry_seconds", pushtoken.DefaultDelay))),
		client.WithStoreOptions(
			store.WithPageSize(config.GetInt("page_size", domain.DefaultPageSize)),
			store.WithLogger(logger),
		),
	}
	c := client.New(apiClient, append(base, opts...)...)

	u, err := c.ForUser(user)
	if err != nil {
		c.Close()
		_ = configCache.Close()
		return nil, err
	}
	return &session{client: c, user: u, cache: configCache, logger: logger}, nil
}

// Store returns the live store of the session user for predicate.
func (s *session) Store(predicate domain.Predicate) *store.Store {
	return s.user.Store.StoreFor(predicate)
}

// hookRunner builds the hook runner from the hooks_* settings.
func (s *session) hookRunner() (*hooks.Runner, error) {
	mode, err := hooks.ParseFailureMode(config.Get("hooks_failure_mode", string(hooks.FailureWarn)))
	if err != nil {
		return nil, err
	}
	opts := []hooks.Option{
		hooks.WithFailureMode(mode),
		hooks.WithTimeout(config.GetSeconds("hooks_timeout_seconds", hooks.DefaultTimeout)),
		hooks.WithLogger(s.logger),
	}
	if config.GetBool("hooks_async", false) {
		opts = append(opts, hooks.WithAsync(config.GetInt("hooks_max_async", 10)))
	}
	return hooks.New(config.Get("hooks_dir", ""), opts...), nil
}

// Close tears down the stores and the realtime connection. The user stays
// signed in.
func (s *session) Close() error {
	s.client.Close()
	return errors.Join(s.cache.Close(), s.logger.Shutdown())
}
