// Package mockapi implements an in-memory fake of the second-hand catalog
// API. It speaks the same envelope, bearer-token and pagination conventions
// as the real backend and is used for local development and HTTP-level tests.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	mw "github.com/donaldgifford/secondhand-client/internal/api/middleware"
)

// Default page sizes, matching the backend.
const (
	DefaultMarketPageSize = 8
	DefaultMinePageSize   = 6
)

// Fault is an injected failure for one route.
type Fault struct {
	// Status and Message form the failure envelope. A zero Status only
	// applies Delay and lets the request through.
	Status  int
	Message string
	// Delay is applied before the fault or the real handler runs.
	Delay time.Duration
	// Times limits how many requests the fault applies to; 0 means until
	// cleared.
	Times int
}

// Server is the fake catalog API. It implements http.Handler.
type Server struct {
	echo       *echo.Echo
	cat        *catalog
	log        *slog.Logger
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time

	faultMu sync.Mutex
	faults  map[string]*Fault
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithSecret sets the HS256 signing secret for issued tokens.
func WithSecret(secret []byte) Option {
	return func(s *Server) {
		s.secret = secret
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) {
		s.tokenTTL = d
	}
}

// WithBcryptCost sets the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) {
		s.bcryptCost = cost
	}
}

// WithClock overrides the time source for timestamps and token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a Server with an empty catalog.
func New(opts ...Option) *Server {
	s := &Server{
		log:        slog.Default(),
		secret:     []byte("mockapi-dev-secret"),
		tokenTTL:   24 * time.Hour,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		faults:     make(map[string]*Fault),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cat = newCatalog(s.now)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(mw.RequestLog(s.log))
	e.Use(mw.Metrics())
	e.Use(mw.Recovery(s.log))
	e.Use(s.injectFaults)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cfg := huma.DefaultConfig("Secondhand mock catalog", "1.0.0")
	cfg.CreateHooks = nil
	cfg.Transformers = nil
	api := humaecho.New(e, cfg)
	s.registerAuthRoutes(api)
	s.registerListingRoutes(api)
	s.registerUploadRoutes(api)

	s.echo = e
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// AddUser registers an account and returns its id.
func (s *Server) AddUser(username, email, password string) (int, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hashing password: %w", err)
	}
	u, err := s.cat.addUser(username, email, string(hash))
	if err != nil {
		return 0, fmt.Errorf("adding user %q: %w", username, err)
	}
	return u.ID, nil
}

// AddListing stores l for its owner and returns the stored copy.
func (s *Server) AddListing(l Listing) (Listing, error) {
	stored, err := s.cat.addPost(l)
	if err != nil {
		return Listing{}, fmt.Errorf("adding listing for user %d: %w", l.OwnerID, err)
	}
	return stored, nil
}

// Listing returns the stored listing, including soft-deleted ones.
func (s *Server) Listing(id int) (Listing, bool) {
	l, err := s.cat.post(id, true)
	return l, err == nil
}

// IssueToken returns a bearer token for userID.
func (s *Server) IssueToken(userID int) (string, error) {
	return s.signToken(userID)
}

// InjectFault makes requests to method and route (the route template as echo
// matches it, for example "/item/:id") fail or stall as described by f.
func (s *Server) InjectFault(method, route string, f Fault) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[method+" "+route] = &f
}

// ClearFaults removes every injected fault.
func (s *Server) ClearFaults() {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	clear(s.faults)
}

func (s *Server) takeFault(key string) (Fault, bool) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()

	f, ok := s.faults[key]
	if !ok {
		return Fault{}, false
	}
	if f.Times > 0 {
		f.Times--
		if f.Times == 0 {
			delete(s.faults, key)
		}
	}
	return *f, true
}

func (s *Server) injectFaults(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		f, ok := s.takeFault(c.Request().Method + " " + c.Path())
		if !ok {
			return next(c)
		}
		if f.Delay > 0 {
			if err := sleep(c.Request().Context(), f.Delay); err != nil {
				return err
			}
		}
		if f.Status == 0 {
			return next(c)
		}
		s.log.Debug("injected fault", "route", c.Path(), "status", f.Status)
		return fail(c, f.Status, f.Message)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = fmt.Sprint(he.Message)
	}

	if werr := fail(c, status, msg); werr != nil {
		s.log.Warn("writing error response", "error", werr)
	}
}

func init() {
	// Huma's own request errors use the backend's failure envelope.
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		for _, err := range errs {
			if err != nil {
				msg += ": " + err.Error()
				break
			}
		}
		return &apiError{status: status, Message: msg}
	}
}

// envelope wraps every successful response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// reply is the output of every JSON operation.
type reply struct {
	Status int
	Body   envelope
}

func ok(status int, message string, data any) *reply {
	return &reply{
		Status: status,
		Body:   envelope{Success: true, Data: data, Message: message},
	}
}

// apiError is the failure envelope. It implements huma.StatusError.
type apiError struct {
	status  int
	Success bool   `json:"success"`
	Message string `json:"error"`
}

func (e *apiError) Error() string  { return e.Message }
func (e *apiError) GetStatus() int { return e.status }

func failure(status int, msg string) error {
	return &apiError{status: status, Message: msg}
}

// fail writes the failure envelope for requests that never reach huma.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, &apiError{status: status, Message: msg})
}
