package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	listingMocks "github.com/donaldgifford/secondhand-client/internal/listing/mocks"
	"github.com/donaldgifford/secondhand-client/pkg/logger"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

func makePage(page, totalPages, totalCount, n int) *domain.Page {
	items := make([]domain.ListingSummary, n)
	for i := range items {
		items[i] = domain.ListingSummary{
			ID:     fmt.Sprintf("p%d-%d", page, i),
			Title:  fmt.Sprintf("item %d on page %d", i, page),
			Price:  decimal.NewFromInt(int64(10 + i)),
			Status: domain.StatusAvailable,
		}
	}
	return &domain.Page{
		Items:      items,
		Page:       page,
		PageSize:   n,
		TotalPages: totalPages,
		TotalCount: totalCount,
	}
}

func newTestCoordinator(t *testing.T, scope Scope, f Fetcher, opts ...Option) *Coordinator {
	t.Helper()
	return NewCoordinator(scope, f, append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting on channel")
		var zero T
		return zero
	}
}

func TestNewCoordinator_InitialState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		scope    Scope
		opts     []Option
		wantSize int
	}{
		{name: "market default", scope: ScopeMarket, wantSize: 8},
		{name: "mine default", scope: ScopeMine, wantSize: 6},
		{name: "override", scope: ScopeMarket, opts: []Option{WithPageSize(20)}, wantSize: 20},
		{name: "non-positive override ignored", scope: ScopeMine, opts: []Option{WithPageSize(0)}, wantSize: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCoordinator(t, tt.scope, listingMocks.NewMockFetcher(t), tt.opts...)
			s := c.Snapshot()
			assert.Equal(t, tt.wantSize, c.PageSize())
			assert.Equal(t, tt.wantSize, s.PageSize)
			assert.Equal(t, 1, s.CurrentPage)
			assert.Equal(t, 1, s.TotalPages)
			assert.Empty(t, s.Items)
			assert.False(t, s.Loading)
		})
	}
}

func TestFetchPage_FirstOfThree(t *testing.T) {
	t.Parallel()

	mf := listingMocks.NewMockFetcher(t)
	mf.EXPECT().FetchPage(mock.Anything, 1, 8).Return(makePage(1, 3, 24, 8), nil).Once()

	c := newTestCoordinator(t, ScopeMarket, mf)
	require.NoError(t, c.FetchPage(context.Background(), 1))

	s := c.Snapshot()
	assert.Len(t, s.Items, 8)
	assert.Equal(t, 1, s.CurrentPage)
	assert.Equal(t, 3, s.TotalPages)
	assert.Equal(t, 24, s.TotalCount)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Err)
}

func TestFetchPage_ValidPagesStayInBounds(t *testing.T) {
	t.Parallel()

	const totalPages = 4
	f := FetchFunc(func(_ context.Context, page, size int) (*domain.Page, error) {
		return makePage(page, totalPages, 30, size), nil
	})
	c := newTestCoordinator(t, ScopeMine, f)

	for page := 1; page <= totalPages; page++ {
		require.NoError(t, c.FetchPage(context.Background(), page))
		s := c.Snapshot()
		assert.Equal(t, page, s.CurrentPage)
		assert.LessOrEqual(t, len(s.Items), s.PageSize)
		assert.GreaterOrEqual(t, s.CurrentPage, 1)
		assert.LessOrEqual(t, s.CurrentPage, s.TotalPages)
	}
}

func TestFetchPage_InvalidPage(t *testing.T) {
	t.Parallel()

	for _, page := range []int{0, -1, -100} {
		t.Run(fmt.Sprint(page), func(t *testing.T) {
			t.Parallel()

			// No expectations: any call to the fetcher fails the test.
			c := newTestCoordinator(t, ScopeMarket, listingMocks.NewMockFetcher(t))
			calls := 0
			c.Subscribe(func(PageState) { calls++ })

			err := c.FetchPage(context.Background(), page)
			require.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.False(t, c.Snapshot().Loading)
			assert.Zero(t, calls)

			require.ErrorIs(t, c.ChangePage(context.Background(), page), domain.ErrInvalidArgument)
		})
	}
}

func TestFetchPage_FailureKeepsItems(t *testing.T) {
	t.Parallel()

	mf := listingMocks.NewMockFetcher(t)
	mf.EXPECT().FetchPage(mock.Anything, 1, 8).Return(makePage(1, 2, 10, 8), nil).Once()
	mf.EXPECT().FetchPage(mock.Anything, 2, 8).
		Return(nil, fmt.Errorf("%w: sending request: timeout", domain.ErrNetwork)).Once()

	c := newTestCoordinator(t, ScopeMarket, mf)
	require.NoError(t, c.FetchPage(context.Background(), 1))
	before := c.Snapshot()

	err := c.FetchPage(context.Background(), 2)
	require.ErrorIs(t, err, domain.ErrNetwork)

	after := c.Snapshot()
	assert.Equal(t, before.Items, after.Items, "stale items remain visible")
	assert.Equal(t, 1, after.CurrentPage)
	assert.False(t, after.Loading)
	assert.Equal(t, "failed to connect to server", after.Err)

	mf.EXPECT().FetchPage(mock.Anything, 2, 8).Return(makePage(2, 2, 10, 2), nil).Once()
	require.NoError(t, c.FetchPage(context.Background(), 2))
	assert.Empty(t, c.Snapshot().Err, "a new fetch clears the error")
}

func TestFetchPage_ServerRejection(t *testing.T) {
	t.Parallel()

	mf := listingMocks.NewMockFetcher(t)
	mf.EXPECT().FetchPage(mock.Anything, 1, 6).
		Return(nil, &domain.RejectedError{Status: 500, Message: "Failed to get my listings"}).Once()

	c := newTestCoordinator(t, ScopeMine, mf)
	err := c.FetchPage(context.Background(), 1)
	require.ErrorIs(t, err, domain.ErrServerRejected)
	assert.Equal(t, "Failed to get my listings", c.Snapshot().Err)
}

func TestFetchPage_ResponseShaping(t *testing.T) {
	t.Parallel()

	withDeleted := makePage(1, 1, 3, 3)
	withDeleted.Items[1].Status = domain.StatusDeleted

	tests := []struct {
		name      string
		page      *domain.Page
		wantItems int
		wantPages int
	}{
		{name: "empty collection clamps total pages", page: makePage(1, 0, 0, 0), wantItems: 0, wantPages: 1},
		{name: "surplus items are dropped", page: makePage(1, 2, 12, 11), wantItems: 8, wantPages: 2},
		{name: "deleted items are filtered", page: withDeleted, wantItems: 2, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mf := listingMocks.NewMockFetcher(t)
			mf.EXPECT().FetchPage(mock.Anything, 1, 8).Return(tt.page, nil).Once()

			c := newTestCoordinator(t, ScopeMarket, mf)
			require.NoError(t, c.FetchPage(context.Background(), 1))

			s := c.Snapshot()
			assert.Len(t, s.Items, tt.wantItems)
			assert.Equal(t, tt.wantPages, s.TotalPages)
			for _, it := range s.Items {
				assert.NotEqual(t, domain.StatusDeleted, it.Status)
			}
		})
	}
}

func TestFetchPage_PastLastPage(t *testing.T) {
	t.Parallel()

	mf := listingMocks.NewMockFetcher(t)
	mf.EXPECT().FetchPage(mock.Anything, 1, 8).Return(makePage(1, 2, 9, 8), nil).Once()
	mf.EXPECT().FetchPage(mock.Anything, 5, 8).Return(makePage(5, 2, 9, 0), nil).Once()

	c := newTestCoordinator(t, ScopeMarket, mf)
	require.NoError(t, c.FetchPage(context.Background(), 1))

	err := c.FetchPage(context.Background(), 5)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	s := c.Snapshot()
	assert.Equal(t, 1, s.CurrentPage)
	assert.Len(t, s.Items, 8)
	assert.NotEmpty(t, s.Err)
}

type reply struct {
	page *domain.Page
	err  error
}

type pendingFetch struct {
	page  int
	reply chan reply
}

// controlledFetcher blocks every fetch until the test answers it.
func controlledFetcher() (Fetcher, <-chan pendingFetch) {
	calls := make(chan pendingFetch)
	f := FetchFunc(func(ctx context.Context, page, _ int) (*domain.Page, error) {
		p := pendingFetch{page: page, reply: make(chan reply, 1)}
		calls <- p
		select {
		case r := <-p.reply:
			return r.page, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	return f, calls
}

func TestChangePage_LaterDispatchWins(t *testing.T) {
	t.Parallel()

	f, calls := controlledFetcher()
	c := newTestCoordinator(t, ScopeMarket, f)
	ctx := context.Background()

	page2Done := make(chan error, 1)
	page3Done := make(chan error, 1)

	go func() { page2Done <- c.ChangePage(ctx, 2) }()
	p2 := recv(t, calls)
	require.Equal(t, 2, p2.page)

	go func() { page3Done <- c.ChangePage(ctx, 3) }()
	p3 := recv(t, calls)
	require.Equal(t, 3, p3.page)

	// Page 3 answers first, then the slow page 2 response lands.
	p3.reply <- reply{page: makePage(3, 3, 24, 8)}
	require.NoError(t, recv(t, page3Done))

	p2.reply <- reply{page: makePage(2, 3, 24, 8)}
	require.ErrorIs(t, recv(t, page2Done), ErrSuperseded)

	s := c.Snapshot()
	assert.Equal(t, 3, s.CurrentPage)
	require.Len(t, s.Items, 8)
	assert.Equal(t, "p3-0", s.Items[0].ID)
	assert.False(t, s.Loading)
}

func TestFetchPage_SupersededFailureIsSilent(t *testing.T) {
	t.Parallel()

	f, calls := controlledFetcher()
	c := newTestCoordinator(t, ScopeMine, f)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	secondDone := make(chan error, 1)

	go func() { firstDone <- c.FetchPage(ctx, 1) }()
	first := recv(t, calls)
	go func() { secondDone <- c.FetchPage(ctx, 2) }()
	second := recv(t, calls)

	first.reply <- reply{err: errors.New("boom")}
	require.ErrorIs(t, recv(t, firstDone), ErrSuperseded)

	s := c.Snapshot()
	assert.Empty(t, s.Err, "superseded failure is not surfaced")
	assert.True(t, s.Loading, "the newer fetch is still outstanding")

	second.reply <- reply{page: makePage(2, 2, 7, 1)}
	require.NoError(t, recv(t, secondDone))
	assert.False(t, c.Snapshot().Loading)
}

func TestFetchPage_ConcurrentCallers(t *testing.T) {
	t.Parallel()

	f := FetchFunc(func(_ context.Context, page, size int) (*domain.Page, error) {
		time.Sleep(time.Duration(10-page) * time.Millisecond)
		return makePage(page, 10, 80, size), nil
	})
	c := newTestCoordinator(t, ScopeMarket, f)

	var wg sync.WaitGroup
	for page := 1; page <= 10; page++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.FetchPage(context.Background(), page)
			if err != nil {
				assert.ErrorIs(t, err, ErrSuperseded)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.False(t, s.Loading)
	assert.Len(t, s.Items, 8)
	assert.Equal(t, fmt.Sprintf("p%d-0", s.CurrentPage), s.Items[0].ID, "items and page come from one response")
}

func TestSubscribeAndScrollReset(t *testing.T) {
	t.Parallel()

	mf := listingMocks.NewMockFetcher(t)
	mf.EXPECT().FetchPage(mock.Anything, 2, 8).Return(makePage(2, 2, 16, 8), nil).Once()

	c := newTestCoordinator(t, ScopeMarket, mf)

	var states []PageState
	unsub := c.Subscribe(func(s PageState) { states = append(states, s) })
	resets := 0
	c.OnScrollReset(func() { resets++ })

	require.NoError(t, c.ChangePage(context.Background(), 2))
	assert.Equal(t, 1, resets)
	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.False(t, states[1].Loading)
	assert.Equal(t, 2, states[1].CurrentPage)

	unsub()
	c.ApplySold("p2-0")
	assert.Len(t, states, 2)
}

func TestRefresh_UsesCurrentPage(t *testing.T) {
	t.Parallel()

	mf := listingMocks.NewMockFetcher(t)
	mf.EXPECT().FetchPage(mock.Anything, 1, 6).Return(makePage(1, 3, 18, 6), nil).Once()
	mf.EXPECT().FetchPage(mock.Anything, 3, 6).Return(makePage(3, 3, 18, 6), nil).Twice()

	c := newTestCoordinator(t, ScopeMine, mf)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))
	require.NoError(t, c.FetchPage(ctx, 3))
	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, 3, c.Snapshot().CurrentPage)
}

func TestCollectionMutators(t *testing.T) {
	t.Parallel()

	mf := listingMocks.NewMockFetcher(t)
	mf.EXPECT().FetchPage(mock.Anything, 1, 6).Return(makePage(1, 1, 3, 3), nil).Once()

	c := newTestCoordinator(t, ScopeMine, mf)
	require.NoError(t, c.FetchPage(context.Background(), 1))
	held := c.Snapshot()

	assert.True(t, c.ApplySold("p1-0"))
	assert.True(t, c.ApplyEdit("p1-1", domain.EditableFields{
		Title: "renamed",
		Price: decimal.RequireFromString("49.99"),
	}))
	assert.True(t, c.Remove("p1-2"))

	assert.False(t, c.ApplySold("missing"))
	assert.False(t, c.ApplyEdit("missing", domain.EditableFields{}))
	assert.False(t, c.Remove("missing"))

	s := c.Snapshot()
	require.Len(t, s.Items, 2)
	assert.Equal(t, 2, s.TotalCount)

	sold, ok := s.Find("p1-0")
	require.True(t, ok)
	assert.Equal(t, domain.StatusSold, sold.Status)

	edited, ok := s.Find("p1-1")
	require.True(t, ok)
	assert.Equal(t, "renamed", edited.Title)
	assert.True(t, decimal.RequireFromString("49.99").Equal(edited.Price))

	_, ok = s.Find("p1-2")
	assert.False(t, ok)

	assert.Len(t, held.Items, 3, "earlier snapshots are unaffected")
	assert.Equal(t, domain.StatusAvailable, held.Items[0].Status)
}

func TestAcknowledgedMutationsSurviveOlderFetch(t *testing.T) {
	t.Parallel()

	f, calls := controlledFetcher()
	c := newTestCoordinator(t, ScopeMine, f)
	ctx := context.Background()

	loaded := make(chan error, 1)
	go func() { loaded <- c.FetchPage(ctx, 1) }()
	recv(t, calls).reply <- reply{page: makePage(1, 1, 4, 4)}
	require.NoError(t, recv(t, loaded))

	// A refresh is in flight when the mutations are acknowledged.
	refreshed := make(chan error, 1)
	go func() { refreshed <- c.Refresh(ctx) }()
	stale := recv(t, calls)

	require.True(t, c.Remove("p1-0"))
	require.True(t, c.ApplySold("p1-1"))
	require.True(t, c.ApplyEdit("p1-2", domain.EditableFields{
		Title: "renamed",
		Price: decimal.RequireFromString("49.99"),
	}))

	stale.reply <- reply{page: makePage(1, 1, 4, 4)}
	require.NoError(t, recv(t, refreshed))

	s := c.Snapshot()
	_, present := s.Find("p1-0")
	assert.False(t, present, "removed listing stays removed")
	assert.Len(t, s.Items, 3)
	assert.Equal(t, 3, s.TotalCount)

	sold, ok := s.Find("p1-1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusSold, sold.Status)

	edited, ok := s.Find("p1-2")
	require.True(t, ok)
	assert.Equal(t, "renamed", edited.Title)
	assert.True(t, decimal.RequireFromString("49.99").Equal(edited.Price))

	// A fetch dispatched after the edit carries the server's latest values.
	newer := makePage(1, 1, 3, 4)
	newer.Items = newer.Items[1:]
	newer.Items[1].Title = "renamed again"
	go func() { refreshed <- c.Refresh(ctx) }()
	recv(t, calls).reply <- reply{page: newer}
	require.NoError(t, recv(t, refreshed))

	edited, ok = c.Snapshot().Find("p1-2")
	require.True(t, ok)
	assert.Equal(t, "renamed again", edited.Title)
	sold, ok = c.Snapshot().Find("p1-1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusSold, sold.Status, "a later page cannot revert a sale")
}

type stubLister struct{}

func (stubLister) ListItems(context.Context, int, int) (*domain.Page, error) {
	return &domain.Page{TotalPages: 1, Items: []domain.ListingSummary{{ID: "market"}}}, nil
}

func (stubLister) ListMyListings(context.Context, int, int) (*domain.Page, error) {
	return &domain.Page{TotalPages: 1, Items: []domain.ListingSummary{{ID: "mine"}}}, nil
}

func TestForScope(t *testing.T) {
	t.Parallel()

	for _, scope := range []Scope{ScopeMarket, ScopeMine} {
		f, err := ForScope(stubLister{}, scope)
		require.NoError(t, err)
		p, err := f.FetchPage(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.Equal(t, string(scope), p.Items[0].ID)
	}

	_, err := ForScope(stubLister{}, Scope("other"))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}
