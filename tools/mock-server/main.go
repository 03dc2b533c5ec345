// Package main runs the fake second-hand catalog API for local development.
// It serves an in-memory catalog seeded from a JSON fixture, so the shc CLI
// can be exercised without the real backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/donaldgifford/secondhand-client/internal/mockapi"
	"github.com/donaldgifford/secondhand-client/pkg/logger"
)

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/fixtures.json", "path to catalog fixture")
	secret := flag.String("secret", "mockapi-dev-secret", "HS256 secret for issued tokens")
	logLevel := flag.String("log-level", "debug", "log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(*logLevel, "text")

	srv, err := newServer(log, *fixtureFile, []byte(*secret))
	if err != nil {
		log.Error("failed to build server", "fixture", *fixtureFile, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, fmt.Sprintf(":%d", *port), srv); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// newServer builds the fake API and seeds it from the fixture at path.
func newServer(log *slog.Logger, path string, secret []byte) (*mockapi.Server, error) {
	fixture, err := mockapi.LoadFixture(path)
	if err != nil {
		return nil, err
	}

	srv := mockapi.New(mockapi.WithLogger(log), mockapi.WithSecret(secret))
	if err := srv.Seed(fixture); err != nil {
		return nil, fmt.Errorf("seeding catalog: %w", err)
	}
	log.Info("loaded fixture", "users", len(fixture.Users), "listings", len(fixture.Listings))
	return srv, nil
}

// run serves h on addr until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, log *slog.Logger, addr string, h http.Handler) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting mock catalog server", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("mock catalog server stopped")
	return nil
}
