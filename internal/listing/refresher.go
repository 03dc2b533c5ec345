package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher periodically re-fetches a coordinator's current page.
type Refresher struct {
	cron     *cron.Cron
	coord    *Coordinator
	interval time.Duration
	log      *slog.Logger
}

// NewRefresher creates a Refresher that refreshes coord every interval.
// Refreshes go through FetchPage, so manual navigation that overlaps a
// refresh still wins if it was dispatched later.
func NewRefresher(coord *Coordinator, interval time.Duration, log *slog.Logger) (*Refresher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %s", interval)
	}

	r := &Refresher{
		cron:     cron.New(),
		coord:    coord,
		interval: interval,
		log:      log,
	}

	if _, err := r.cron.AddFunc("@every "+interval.String(), r.refresh); err != nil {
		return nil, err
	}
	return r, nil
}

// Start begins running scheduled refreshes.
func (r *Refresher) Start() {
	r.log.Info("refresher started", "scope", r.coord.Scope(), "interval", r.interval)
	r.cron.Start()
}

// Stop stops the refresher, returning a context that is done once any
// running refresh has finished.
func (r *Refresher) Stop() context.Context {
	r.log.Info("refresher stopping", "scope", r.coord.Scope())
	return r.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (r *Refresher) Entries() []cron.Entry {
	return r.cron.Entries()
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()

	err := r.coord.Refresh(ctx)
	switch {
	case err == nil, errors.Is(err, ErrSuperseded):
	default:
		r.log.Warn("scheduled refresh failed", "scope", r.coord.Scope(), "error", err)
	}
}
