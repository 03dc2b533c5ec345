package listing

import (
	"context"
	"fmt"

	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// Fetcher loads one page of a listing collection.
type Fetcher interface {
	FetchPage(ctx context.Context, page, pageSize int) (*domain.Page, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context, page, pageSize int) (*domain.Page, error)

// FetchPage implements Fetcher.
func (f FetchFunc) FetchPage(ctx context.Context, page, pageSize int) (*domain.Page, error) {
	return f(ctx, page, pageSize)
}

// PageLister is the part of the catalog API client the coordinator needs.
type PageLister interface {
	ListItems(ctx context.Context, page, pageSize int) (*domain.Page, error)
	ListMyListings(ctx context.Context, page, pageSize int) (*domain.Page, error)
}

// ForScope returns the Fetcher that serves scope from api.
func ForScope(api PageLister, scope Scope) (Fetcher, error) {
	switch scope {
	case ScopeMarket:
		return FetchFunc(api.ListItems), nil
	case ScopeMine:
		return FetchFunc(api.ListMyListings), nil
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidArgument, scope)
	}
}
