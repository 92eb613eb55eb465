// Package client is the entry point of the library. It keeps one session per
// user: a store director wired to the realtime stream and a push token
// director.
package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cristianoliveira/bellsync/internal/api"
	"github.com/cristianoliveira/bellsync/internal/director"
	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/logging"
	"github.com/cristianoliveira/bellsync/internal/pushtoken"
	"github.com/cristianoliveira/bellsync/internal/realtime"
	"github.com/cristianoliveira/bellsync/internal/remoteconfig"
	"github.com/cristianoliveira/bellsync/internal/retry"
	"github.com/cristianoliveira/bellsync/internal/store"
)

// ErrUnknownUser is returned when removing a user that has no session.
var ErrUnknownUser = errors.New("unknown user")

// User is the session of one user.
type User struct {
	domain.User
	Store    *director.Director
	Push     *pushtoken.Director
	Realtime *realtime.Connector
}

// Client keeps a session per user. Sessions share the API transport and the
// config cache.
type Client struct {
	api        *api.Client
	cache      remoteconfig.Cache
	logger     logging.Logger
	pagination api.Pagination

	connectPolicy retry.Policy
	pushPolicy    retry.Policy
	storeOpts     []store.Option
	connectorOpts []realtime.ConnectorOption

	mu          sync.Mutex
	users       map[string]*User
	order       []string
	deviceToken string
	// push directors of removed users still unregistering the token
	retired []*pushtoken.Director
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger shared by every session.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.logger = logging.OrNop(l) }
}

// WithConfigCache sets where realtime configs are cached.
func WithConfigCache(cache remoteconfig.Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithPagination selects REST page-number or GraphQL cursor pagination.
func WithPagination(p api.Pagination) Option {
	return func(c *Client) { c.pagination = p }
}

// WithConnectPolicy sets the delay between realtime connect attempts.
func WithConnectPolicy(p retry.Policy) Option {
	return func(c *Client) { c.connectPolicy = p }
}

// WithPushPolicy sets the delay between push token attempts.
func WithPushPolicy(p retry.Policy) Option {
	return func(c *Client) { c.pushPolicy = p }
}

// WithStoreOptions sets options applied to every store.
func WithStoreOptions(opts ...store.Option) Option {
	return func(c *Client) { c.storeOpts = append(c.storeOpts, opts...) }
}

// WithConnectorOptions sets options applied to every realtime connector.
func WithConnectorOptions(opts ...realtime.ConnectorOption) Option {
	return func(c *Client) { c.connectorOpts = append(c.connectorOpts, opts...) }
}

// New returns a Client using apiClient as the template for every user.
func New(apiClient *api.Client, opts ...Option) *Client {
	c := &Client{
		api:        apiClient,
		logger:     logging.Nop(),
		pagination: api.PaginationPage,
		users:      make(map[string]*User),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForUserEmail returns the session of the user with email.
func (c *Client) ForUserEmail(email string) (*User, error) {
	return c.ForUser(domain.User{Email: email})
}

// ForUserExternalID returns the session of the user with externalID.
func (c *Client) ForUserExternalID(externalID string) (*User, error) {
	return c.ForUser(domain.User{ExternalID: externalID})
}

// ForUser returns the session of u, creating it on first use. A device
// token set earlier is sent for new sessions.
func (c *Client) ForUser(u domain.User) (*User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	key := u.Key()

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.users[key]; ok {
		return existing, nil
	}

	session, err := c.newSession(u)
	if err != nil {
		return nil, err
	}
	c.users[key] = session
	c.order = append(c.order, key)
	if c.deviceToken != "" {
		session.Push.Send(c.deviceToken)
	}
	c.logger.Info("user session created", "user", u.String())
	return session, nil
}

func (c *Client) newSession(u domain.User) (*User, error) {
	userAPI, err := c.api.ForUser(u)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", u, err)
	}
	logger := c.logger.With("user", u.String())

	connector := realtime.NewConnector(userAPI,
		append([]realtime.ConnectorOption{realtime.WithLogger(logger)}, c.connectorOpts...)...)

	config := remoteconfig.New(c.cache, userAPI, u.Key(), remoteconfig.WithLogger(logger))

	dir := director.New(userAPI.Repository(c.pagination), connector, config,
		director.WithLogger(logger),
		director.WithConnectPolicy(c.connectPolicy),
		director.WithStoreOptions(c.storeOpts...),
	)
	push := pushtoken.New(userAPI, pushtoken.WithLogger(logger), pushtoken.WithPolicy(c.pushPolicy))

	return &User{User: u, Store: dir, Push: push, Realtime: connector}, nil
}

// Users returns the live sessions in creation order.
func (c *Client) Users() []*User {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*User, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.users[key])
	}
	return out
}

// RemoveUserEmail logs out the user with email.
func (c *Client) RemoveUserEmail(ctx context.Context, email string) error {
	return c.RemoveUser(ctx, domain.User{Email: email})
}

// RemoveUserExternalID logs out the user with externalID.
func (c *Client) RemoveUserExternalID(ctx context.Context, externalID string) error {
	return c.RemoveUser(ctx, domain.User{ExternalID: externalID})
}

// RemoveUser logs out u: the stores are torn down and the cached realtime
// config dropped. Unregistering the device token runs in the background
// and retries until it succeeds or the client is closed. The session is
// forgotten even when logout fails.
func (c *Client) RemoveUser(ctx context.Context, u domain.User) error {
	key := u.Key()

	c.mu.Lock()
	session, ok := c.users[key]
	if ok {
		delete(c.users, key)
		c.order = slices.DeleteFunc(c.order, func(k string) bool { return k == key })
	}
	token := c.deviceToken
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("remove %s: %w", u, ErrUnknownUser)
	}

	if token != "" {
		session.Push.Delete(token)
	}
	c.retire(session.Push)

	if err := session.Store.Logout(ctx); err != nil {
		return fmt.Errorf("remove %s: %w", u, err)
	}
	c.logger.Info("user session removed", "user", u.String())
	return nil
}

// retire keeps push alive while it still has work and drops the retired
// directors that are done.
func (c *Client) retire(push *pushtoken.Director) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retired = slices.DeleteFunc(c.retired, func(d *pushtoken.Director) bool { return !d.Pending() })
	if push.Pending() {
		c.retired = append(c.retired, push)
		return
	}
	push.Close()
}

// SetDeviceToken registers token for every current session and for the
// sessions created afterwards.
func (c *Client) SetDeviceToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deviceToken = token
	for _, key := range c.order {
		c.users[key].Push.Send(token)
	}
}

// DeviceToken returns the token set with SetDeviceToken.
func (c *Client) DeviceToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deviceToken
}

// Close tears down every session without logging the users out and stops
// the token removals still retrying.
func (c *Client) Close() {
	c.mu.Lock()
	sessions := make([]*User, 0, len(c.order))
	for _, key := range c.order {
		sessions = append(sessions, c.users[key])
	}
	retired := c.retired
	c.users = make(map[string]*User)
	c.order = nil
	c.retired = nil
	c.mu.Unlock()

	for _, d := range retired {
		d.Close()
	}
	for _, s := range sessions {
		s.Store.Close()
		s.Push.Close()
	}
}
