// Package api is the HTTP client for the notification service. It serves
// notification pages over REST or GraphQL, executes actions, and exposes the
// realtime config, the realtime event stream and push token registration.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cristianoliveira/bellsync/internal/domain"
	"github.com/cristianoliveira/bellsync/internal/logging"
	"github.com/cristianoliveira/bellsync/internal/metrics"
	"github.com/cristianoliveira/bellsync/internal/version"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// Request headers understood by the service.
const (
	HeaderAPIKey     = "X-MAGICBELL-API-KEY"
	HeaderUserHMAC   = "X-MAGICBELL-USER-HMAC"
	HeaderExternalID = "X-MAGICBELL-USER-EXTERNAL-ID"
	HeaderEmail      = "X-MAGICBELL-USER-EMAIL"
	HeaderRequestID  = "X-Request-ID"
)

// DefaultTimeout bounds regular requests. Streams are not bounded.
const DefaultTimeout = 30 * time.Second

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = gobreaker.ErrOpenState

// Config holds the project credentials and endpoint.
type Config struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	EnableHMAC bool
	Timeout    time.Duration
}

// BreakerConfig tunes the circuit breaker guarding every request.
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig returns the breaker defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "api",
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// Client talks to the API on behalf of one user. Clients for other users
// share the transport and breaker through ForUser.
type Client struct {
	baseURL *url.URL
	apiKey  string
	secret  string
	hmac    bool
	user    domain.User

	http    *http.Client
	stream  *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for regular requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithStreamClient sets the client used for the realtime stream. It must not
// carry a timeout.
func WithStreamClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.stream = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBreaker replaces the default breaker settings.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = newBreaker(cfg, c)
	}
}

// New validates cfg and user and returns a Client.
func New(cfg Config, user domain.User, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.magicbell.com"
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", base)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: u,
		apiKey:  cfg.APIKey,
		secret:  cfg.APISecret,
		hmac:    cfg.EnableHMAC,
		user:    user,
		http:    &http.Client{Timeout: timeout},
		stream:  &http.Client{},
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = newBreaker(DefaultBreakerConfig(), c)
	}
	return c, nil
}

// ForUser returns a client for another user sharing this client's
// transport, breaker and credentials.
func (c *Client) ForUser(user domain.User) (*Client, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	cpy := *c
	cpy.user = user
	return &cpy, nil
}

// User returns the user the client acts for.
func (c *Client) User() domain.User {
	return c.user
}

func newBreaker(cfg BreakerConfig, c *Client) *gobreaker.CircuitBreaker[*http.Response] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		// a caller giving up is not a failure of the service
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	metrics.BreakerState.WithLabelValues(cfg.Name).Set(0)
	return gobreaker.NewCircuitBreaker[*http.Response](settings)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	accept string
	stream bool
}

// send performs req through the breaker. 5xx responses count as breaker
// failures; any non-2xx response is returned as *HTTPError. On success the
// caller owns the response body.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	u := c.baseURL.JoinPath(r.path)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader = http.NoBody
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", r.method, r.path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", r.method, err)
	}
	c.setHeaders(req, r)

	hc := c.http
	if r.stream {
		hc = c.stream
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := hc.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, readHTTPError(resp)
		}
		return resp, nil
	})
	if err != nil {
		var herr *HTTPError
		status := "transport"
		if errors.As(err, &herr) {
			status = strconv.Itoa(herr.StatusCode)
		}
		metrics.APIRequests.WithLabelValues(r.method, status).Inc()
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	metrics.APIRequests.WithLabelValues(r.method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readHTTPError(resp)
	}
	return resp, nil
}

// do sends r and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, r request) {
	h := req.Header
	h.Set(HeaderAPIKey, c.apiKey)
	h.Set(HeaderRequestID, uuid.New().String())
	h.Set("User-Agent", version.UserAgent())
	if r.body != nil {
		h.Set("Content-Type", "application/json")
	}
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	h.Set("Accept", accept)

	if c.user.ExternalID != "" {
		h.Set(HeaderExternalID, c.user.ExternalID)
	}
	if c.user.Email != "" {
		h.Set(HeaderEmail, c.user.Email)
	}
	if c.hmac && c.secret != "" {
		h.Set(HeaderUserHMAC, Sign(c.secret, c.user.SigningSubject()))
	}
}
