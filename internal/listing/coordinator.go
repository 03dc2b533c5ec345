// Package listing keeps paginated listing collections in sync with the catalog
// API. A Coordinator owns one collection (the market, or the caller's own
// listings) and resolves overlapping page requests so that the most recently
// dispatched request always wins.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/donaldgifford/secondhand-client/internal/metrics"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// ErrSuperseded is returned by FetchPage when a newer fetch was dispatched
// before this one completed. Its response was discarded.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// Scope identifies which collection a Coordinator serves.
type Scope string

// Scopes.
const (
	ScopeMarket Scope = "market"
	ScopeMine   Scope = "mine"
)

// Default page sizes per scope.
const (
	DefaultMarketPageSize = 8
	DefaultMinePageSize   = 6
)

// DefaultPageSize returns the page size the catalog UI uses for s.
func (s Scope) DefaultPageSize() int {
	if s == ScopeMine {
		return DefaultMinePageSize
	}
	return DefaultMarketPageSize
}

// PageState is a consistent view of one collection page.
type PageState struct {
	Items       []domain.ListingSummary `json:"items"`
	CurrentPage int                     `json:"current_page"`
	TotalPages  int                     `json:"total_pages"`
	TotalCount  int                     `json:"total_count"`
	PageSize    int                     `json:"page_size"`
	Loading     bool                    `json:"loading"`
	Err         string                  `json:"error,omitempty"`
}

// Find returns the item with id, if present.
func (p PageState) Find(id string) (domain.ListingSummary, bool) {
	for _, it := range p.Items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.ListingSummary{}, false
}

func (p *PageState) clone() PageState {
	c := *p
	c.Items = slices.Clone(p.Items)
	return c
}

// Coordinator owns the PageState of one scope.
type Coordinator struct {
	scope    Scope
	fetcher  Fetcher
	pageSize int
	log      *slog.Logger

	mu    sync.Mutex
	state PageState
	seq   uint64
	acks  map[string]*ack

	changes listeners[PageState]
	scroll  listeners[struct{}]
}

// ack is a server-acknowledged mutation of one listing. seq is the latest
// fetch sequence number when the edit was acknowledged.
type ack struct {
	seq     uint64
	sold    bool
	deleted bool
	edit    *domain.EditableFields
}

// Option configures the Coordinator.
type Option func(*Coordinator)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// WithPageSize overrides the scope's default page size.
func WithPageSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewCoordinator creates a Coordinator for scope backed by f. The initial
// state is an empty first page.
func NewCoordinator(scope Scope, f Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		scope:    scope,
		fetcher:  f,
		pageSize: scope.DefaultPageSize(),
		log:      slog.Default(),
		acks:     make(map[string]*ack),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = PageState{
		Items:       []domain.ListingSummary{},
		CurrentPage: 1,
		TotalPages:  1,
		PageSize:    c.pageSize,
	}
	return c
}

// Scope returns the collection this coordinator serves.
func (c *Coordinator) Scope() Scope {
	return c.scope
}

// PageSize returns the fixed page size requested on every fetch.
func (c *Coordinator) PageSize() int {
	return c.pageSize
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers fn to receive a snapshot after every applied change,
// including the loading transition at dispatch. The returned func
// unregisters it.
func (c *Coordinator) Subscribe(fn func(PageState)) func() {
	return c.changes.add(fn)
}

// OnScrollReset registers fn to run whenever ChangePage dispatches.
func (c *Coordinator) OnScrollReset(fn func()) func() {
	return c.scroll.add(func(struct{}) { fn() })
}

// FetchPage loads page into the collection. Pages below 1 fail with
// domain.ErrInvalidArgument before any request. If a newer fetch is
// dispatched while this one is outstanding, this response is discarded and
// ErrSuperseded is returned. On failure the previous items stay in place and
// the state carries a readable error.
func (c *Coordinator) FetchPage(ctx context.Context, page int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", domain.ErrInvalidArgument, page)
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.Loading = true
	c.state.Err = ""
	snap := c.state.clone()
	c.mu.Unlock()

	metrics.FetchesTotal.WithLabelValues(string(c.scope)).Inc()
	c.changes.emit(snap)

	res, err := c.fetcher.FetchPage(ctx, page, c.pageSize)
	if err == nil {
		err = checkPage(res, page)
	}

	c.mu.Lock()
	if seq != c.seq {
		latest := c.seq
		c.mu.Unlock()
		metrics.FetchSupersededTotal.WithLabelValues(string(c.scope)).Inc()
		c.log.Debug("discarding superseded page",
			"scope", c.scope,
			"page", page,
			"seq", seq,
			"latest_seq", latest,
		)
		return ErrSuperseded
	}

	if err != nil {
		c.state.Loading = false
		c.state.Err = domain.Message(err)
		snap = c.state.clone()
		c.mu.Unlock()

		metrics.FetchFailuresTotal.WithLabelValues(string(c.scope)).Inc()
		c.log.Warn("page fetch failed", "scope", c.scope, "page", page, "error", err)
		c.changes.emit(snap)
		return fmt.Errorf("fetching %s page %d: %w", c.scope, page, err)
	}

	items := make([]domain.ListingSummary, 0, min(len(res.Items), c.pageSize))
	dropped := 0
	for _, it := range res.Items {
		if it.Status == domain.StatusDeleted {
			continue
		}
		it, keep := c.reconcileLocked(it, seq)
		if !keep {
			dropped++
			continue
		}
		items = append(items, it)
	}
	if len(items) > c.pageSize {
		c.log.Warn("server returned more items than the page size",
			"scope", c.scope,
			"page", page,
			"items", len(items),
			"page_size", c.pageSize,
		)
		items = items[:c.pageSize]
	}

	c.state = PageState{
		Items:       items,
		CurrentPage: page,
		TotalPages:  max(res.TotalPages, 1),
		TotalCount:  max(res.TotalCount-dropped, 0),
		PageSize:    c.pageSize,
	}
	snap = c.state.clone()
	c.mu.Unlock()

	c.log.Debug("page applied",
		"scope", c.scope,
		"page", page,
		"items", len(items),
		"total_pages", snap.TotalPages,
	)
	c.changes.emit(snap)
	return nil
}

// reconcileLocked replays acknowledged mutations onto an item from the fetch
// dispatched as seq. Deletes and solds always win since status only moves
// forward. Edits win only over fetches dispatched before the edit was
// acknowledged; later fetches already carry the server's values.
func (c *Coordinator) reconcileLocked(it domain.ListingSummary, seq uint64) (domain.ListingSummary, bool) {
	a, found := c.acks[it.ID]
	if !found {
		return it, true
	}
	if a.deleted {
		return it, false
	}
	if a.sold && it.Status.CanTransition(domain.StatusSold) {
		it.Status = domain.StatusSold
	}
	if a.edit != nil && seq <= a.seq {
		it.Title = a.edit.Title
		it.Price = a.edit.Price
	}
	return it, true
}

// checkPage rejects responses that would break the page bounds.
func checkPage(res *domain.Page, page int) error {
	if res == nil {
		return errors.New("empty page response")
	}
	if total := max(res.TotalPages, 1); page > total {
		return fmt.Errorf("%w: page %d is past the last page %d", domain.ErrInvalidArgument, page, total)
	}
	return nil
}

// ChangePage signals a scroll reset and fetches page.
func (c *Coordinator) ChangePage(ctx context.Context, page int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", domain.ErrInvalidArgument, page)
	}
	c.scroll.emit(struct{}{})
	return c.FetchPage(ctx, page)
}

// Refresh re-fetches the current page.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	page := c.state.CurrentPage
	c.mu.Unlock()
	return c.FetchPage(ctx, page)
}

// ApplySold marks the item with id as sold. It reports whether the item was
// present. The status sticks even if an older fetch lands afterwards.
func (c *Coordinator) ApplySold(id string) bool {
	return c.mutate(id, func(a *ack) { a.sold = true }, func(items []domain.ListingSummary, i int) []domain.ListingSummary {
		if items[i].Status.CanTransition(domain.StatusSold) {
			items[i].Status = domain.StatusSold
		}
		return items
	})
}

// ApplyEdit replaces the editable summary fields of the item with id.
func (c *Coordinator) ApplyEdit(id string, f domain.EditableFields) bool {
	return c.mutate(id, func(a *ack) {
		a.edit = &f
		a.seq = c.seq
	}, func(items []domain.ListingSummary, i int) []domain.ListingSummary {
		items[i].Title = f.Title
		items[i].Price = f.Price
		return items
	})
}

// Remove drops the item with id from the collection. It stays out of every
// later page, including responses to fetches dispatched before the removal.
func (c *Coordinator) Remove(id string) bool {
	return c.mutate(id, func(a *ack) { a.deleted = true }, func(items []domain.ListingSummary, i int) []domain.ListingSummary {
		c.state.TotalCount = max(c.state.TotalCount-1, 0)
		return slices.Delete(items, i, i+1)
	})
}

func (c *Coordinator) mutate(
	id string,
	record func(*ack),
	fn func(items []domain.ListingSummary, i int) []domain.ListingSummary,
) bool {
	c.mu.Lock()
	a, found := c.acks[id]
	if !found {
		a = &ack{}
		c.acks[id] = a
	}
	record(a)

	i := slices.IndexFunc(c.state.Items, func(it domain.ListingSummary) bool {
		return it.ID == id
	})
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.state.Items = fn(c.state.Items, i)
	snap := c.state.clone()
	c.mu.Unlock()

	c.changes.emit(snap)
	return true
}
