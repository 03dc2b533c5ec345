package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/secondhand-client/internal/api/client"
	"github.com/donaldgifford/secondhand-client/internal/config"
	"github.com/donaldgifford/secondhand-client/internal/listing"
	"github.com/donaldgifford/secondhand-client/internal/mutation"
	"github.com/donaldgifford/secondhand-client/internal/session"
	"github.com/donaldgifford/secondhand-client/pkg/logger"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// app holds the components one command invocation works with.
type app struct {
	cfg  *config.Config
	log  *slog.Logger
	gate *session.Gate
	api  *apiclient.Client
	in   *bufio.Reader
	out  io.Writer

	coords map[listing.Scope]*listing.Coordinator
}

// newApp loads configuration, restores the persisted session and builds the
// API client for cmd.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	gate := session.NewGate(
		session.NewFileStore(cfg.Session.StorePath),
		session.WithLogger(logger.Component(log, "session")),
	)
	if err := gate.Initialize(); err != nil {
		return nil, err
	}

	api := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTokenSource(gate),
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		apiclient.WithRateLimiter(apiclient.NewRateLimiter(cfg.API.RateLimit.PerSecond, cfg.API.RateLimit.Burst)),
		apiclient.WithLogger(logger.Component(log, "api")),
	)

	a := &app{
		cfg:    cfg,
		log:    log,
		gate:   gate,
		api:    api,
		in:     bufio.NewReader(cmd.InOrStdin()),
		out:    cmd.OutOrStdout(),
		coords: make(map[listing.Scope]*listing.Coordinator),
	}
	gate.Subscribe(a.sessionChanged)
	return a, nil
}

// sessionChanged drops the collections loaded under the old session once it
// ends, so a later command starts from an empty page.
func (a *app) sessionChanged(s session.State) {
	a.log.Info("session changed", "state", s)
	if s == session.Unauthenticated {
		clear(a.coords)
	}
}

// loadConfig reads --config (or the default file when it exists) and applies
// flag and environment overrides.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if def := defaultConfigPath(); def != "" {
			if _, err := os.Stat(def); err == nil {
				path = def
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("checking default config: %w", err)
			}
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if s := viper.GetString("server"); s != "" {
		cfg.API.BaseURL = s
	}
	if s := viper.GetString("session-file"); s != "" {
		cfg.Session.StorePath = s
	}
	if s := viper.GetString("log-level"); s != "" {
		cfg.Logging.Level = s
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// requireLogin evaluates the session gate for a protected command.
func (a *app) requireLogin() error {
	if out := session.Guard(a.gate, struct{}{}); out.Redirected() {
		return fmt.Errorf("%w: run 'shc login' first (redirect to %s)", domain.ErrAuthRequired, out.Redirect.To)
	}
	return nil
}

// authFailed turns a server-side rejection of the stored token into a logout,
// so the next protected command is gated locally.
func (a *app) authFailed(err error) error {
	if err == nil || !errors.Is(err, domain.ErrAuthRequired) {
		return err
	}
	if a.gate.IsAuthenticated() {
		if lerr := a.gate.Logout(); lerr != nil {
			a.log.Warn("clearing rejected session", "error", lerr)
		}
		return fmt.Errorf("session is no longer valid, run 'shc login': %w", err)
	}
	return err
}

// coordinator returns the collection for scope, creating it on first use.
func (a *app) coordinator(scope listing.Scope) (*listing.Coordinator, error) {
	if c, found := a.coords[scope]; found {
		return c, nil
	}
	f, err := listing.ForScope(a.api, scope)
	if err != nil {
		return nil, err
	}
	size := a.cfg.Paging.MarketPageSize
	if scope == listing.ScopeMine {
		size = a.cfg.Paging.MyListingsPageSize
	}
	c := listing.NewCoordinator(scope, f,
		listing.WithPageSize(size),
		listing.WithLogger(logger.Component(a.log, "listing")),
	)
	a.coords[scope] = c
	return c, nil
}

func (a *app) pipeline() *mutation.Pipeline {
	return mutation.NewPipeline(a.api,
		mutation.WithLogger(logger.Component(a.log, "mutation")),
		mutation.WithUploadLimits(mutation.UploadLimits{
			MaxImages:     a.cfg.Upload.MaxImages,
			MaxImageBytes: a.cfg.Upload.MaxImageBytes,
		}),
	)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
