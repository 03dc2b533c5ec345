// Package client provides a thin HTTP client for the marketplace catalog API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/donaldgifford/secondhand-client/internal/metrics"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// TokenSource supplies the bearer credential for protected calls.
type TokenSource interface {
	Token() (string, bool)
}

// Client is a thin HTTP client for the catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *RateLimiter
	log        *slog.Logger
}

// New creates a new API client targeting the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenSource sets where protected calls read the bearer token from.
// Without one every protected call fails with domain.ErrAuthRequired.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithRateLimiter throttles outgoing requests.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = rl
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the response wrapper every catalog endpoint uses.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func (e *envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// get performs a protected GET request and decodes the envelope data into dst.
func (c *Client) get(ctx context.Context, path string, dst any) error {
	return c.do(ctx, http.MethodGet, path, nil, dst)
}

// put performs a protected PUT request with a JSON body.
func (c *Client) put(ctx context.Context, path string, body, dst any) error {
	return c.do(ctx, http.MethodPut, path, body, dst)
}

// del performs a protected DELETE request.
func (c *Client) del(ctx context.Context, path string, dst any) error {
	return c.do(ctx, http.MethodDelete, path, nil, dst)
}

// postPublic performs an unauthenticated POST with a JSON body.
func (c *Client) postPublic(ctx context.Context, path string, body, dst any) error {
	r, err := jsonBody(body)
	if err != nil {
		return err
	}
	return c.send(ctx, &call{
		method:      http.MethodPost,
		path:        path,
		body:        r,
		contentType: "application/json",
	}, dst)
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	r, err := jsonBody(body)
	if err != nil {
		return err
	}
	cl := &call{method: method, path: path, body: r, protected: true}
	if body != nil {
		cl.contentType = "application/json"
	}
	return c.send(ctx, cl, dst)
}

func jsonBody(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

type call struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	protected   bool
}

// Outcome labels for request metrics.
const (
	outcomeOK       = "ok"
	outcomeNetwork  = "network"
	outcomeRejected = "rejected"
	outcomeAuth     = "auth"
)

func (c *Client) send(ctx context.Context, cl *call, dst any) error {
	endpoint := endpointLabel(cl.method, cl.path)

	var token string
	if cl.protected {
		var ok bool
		if c.tokens != nil {
			token, ok = c.tokens.Token()
		}
		if !ok {
			metrics.APIRequestsTotal.WithLabelValues(endpoint, outcomeAuth).Inc()
			return fmt.Errorf("%s: %w", endpoint, domain.ErrAuthRequired)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	outcome, err := c.roundTrip(req, cl.protected, dst)
	elapsed := time.Since(start)

	metrics.APIRequestDuration.WithLabelValues(endpoint, outcome).Observe(elapsed.Seconds())
	metrics.APIRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	c.log.Debug("api request",
		"endpoint", endpoint,
		"outcome", outcome,
		"duration", elapsed,
	)
	return err
}

func (c *Client) roundTrip(req *http.Request, protected bool, dst any) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isConnectionRefused(err) {
			return outcomeNetwork, fmt.Errorf("%w: API server not running at %s", domain.ErrNetwork, c.baseURL)
		}
		return outcomeNetwork, fmt.Errorf("%w: sending request: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcomeNetwork, fmt.Errorf("%w: reading response body: %w", domain.ErrNetwork, err)
	}

	var env envelope
	envErr := json.Unmarshal(respBody, &env)
	msg := env.text()
	if envErr != nil && msg == "" {
		msg = strings.TrimSpace(string(respBody))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized && protected:
		return outcomeAuth, fmt.Errorf("%w: %s", domain.ErrAuthRequired, msg)
	case resp.StatusCode >= http.StatusBadRequest:
		return outcomeRejected, &domain.RejectedError{Status: resp.StatusCode, Message: msg}
	case env.Success != nil && !*env.Success:
		return outcomeRejected, &domain.RejectedError{Status: resp.StatusCode, Message: msg}
	}

	if dst == nil {
		return outcomeOK, nil
	}
	if envErr != nil {
		return outcomeRejected, fmt.Errorf("decoding response: %w", envErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return outcomeOK, nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return outcomeRejected, fmt.Errorf("decoding response: %w", err)
	}
	return outcomeOK, nil
}

// endpointLabel turns "/item/55?x=y" into "GET /item/{id}" so metric
// cardinality stays bounded.
func endpointLabel(method, path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i := 1; i < len(segs); i++ {
		segs[i] = "{id}"
	}
	return method + " /" + strings.Join(segs, "/")
}

func isConnectionRefused(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connect: connection refused")
}
