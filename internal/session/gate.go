// Package session owns the client's authenticated identity: a bearer token
// persisted across restarts, the two-state gate derived from it, and the
// redirect contract protected views are evaluated against.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/donaldgifford/secondhand-client/internal/metrics"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// LoginPath is where unauthenticated views are redirected.
const LoginPath = "/login"

// ErrAlreadyInitialized is returned by a second call to Initialize.
var ErrAlreadyInitialized = errors.New("session already initialized")

// State is the gate's authentication state.
type State int

// Gate states.
const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Gate is the single owner of session state. Login and Logout are the only
// writers; every outgoing request reads the token through Token.
type Gate struct {
	store Store
	log   *slog.Logger

	mu          sync.RWMutex
	token       string
	initialized bool

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// Option configures the Gate.
type Option func(*Gate)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		g.log = l
	}
}

// NewGate creates an Unauthenticated gate backed by store. Call Initialize to
// pick up a persisted token.
func NewGate(store Store, opts ...Option) *Gate {
	g := &Gate{
		store: store,
		log:   slog.Default(),
		subs:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Initialize reads the persisted token. It runs once per Gate; later calls
// return ErrAlreadyInitialized. A store error leaves the gate
// Unauthenticated.
func (g *Gate) Initialize() error {
	g.mu.Lock()
	if g.initialized {
		g.mu.Unlock()
		return ErrAlreadyInitialized
	}
	g.initialized = true

	token, err := g.store.Load()
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("loading session: %w", err)
	}
	g.token = strings.TrimSpace(token)
	state := g.stateLocked()
	g.mu.Unlock()

	g.log.Debug("session initialized", "state", state.String())
	return nil
}

// Login persists token and moves to Authenticated. An empty token is
// rejected and leaves the gate untouched.
func (g *Gate) Login(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Invalid("token", "login returned no token")
	}

	g.mu.Lock()
	if err := g.store.Save(token); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("persisting session: %w", err)
	}
	g.token = token
	g.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues(Authenticated.String()).Inc()
	g.log.Info("session started")
	g.notify(Authenticated)
	return nil
}

// Logout clears the persisted token and moves to Unauthenticated. It always
// transitions, even when the store fails to clear; that error is returned.
func (g *Gate) Logout() error {
	g.mu.Lock()
	err := g.store.Clear()
	g.token = ""
	g.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues(Unauthenticated.String()).Inc()
	g.log.Info("session ended")
	g.notify(Unauthenticated)

	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stateLocked()
}

func (g *Gate) stateLocked() State {
	if g.token == "" {
		return Unauthenticated
	}
	return Authenticated
}

// IsAuthenticated reports whether a token is present.
func (g *Gate) IsAuthenticated() bool {
	return g.State() == Authenticated
}

// Token returns the bearer credential, or false when Unauthenticated.
func (g *Gate) Token() (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token, g.token != ""
}

// Subscribe registers fn to run after every Login and Logout. fn is invoked
// synchronously on the caller's goroutine. The returned func unregisters it.
func (g *Gate) Subscribe(fn func(State)) func() {
	g.subMu.Lock()
	defer g.subMu.Unlock()

	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn

	return func() {
		g.subMu.Lock()
		defer g.subMu.Unlock()
		delete(g.subs, id)
	}
}

func (g *Gate) notify(s State) {
	g.subMu.Lock()
	fns := make([]func(State), 0, len(g.subs))
	for i := range g.nextSub {
		if fn, ok := g.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	g.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Claims are the informational fields of the backend-issued JWT.
type Claims struct {
	UserID    int
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's expiry is known and before now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

type tokenClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// Claims decodes the current token without verifying its signature. The
// result is for display only; gating never depends on it.
func (g *Gate) Claims() (*Claims, error) {
	token, ok := g.Token()
	if !ok {
		return nil, domain.ErrAuthRequired
	}

	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return nil, fmt.Errorf("decoding session token: %w", err)
	}

	c := &Claims{UserID: tc.UserID}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}
