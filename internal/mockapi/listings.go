package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"
)

const timeLayout = time.RFC3339Nano

// Field limits, matching the backend.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	maxContactLen     = 200
	maxZipCodeLen     = 20
)

var (
	minPrice = decimal.RequireFromString("0.01")
	maxPrice = decimal.NewFromInt(999999)
)

// postView is the wire form of a post.
type postView struct {
	ID          int         `json:"id"`
	UserID      int         `json:"user_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	ContactInfo string      `json:"contact_info"`
	ZipCode     string      `json:"zip_code"`
	Negotiable  bool        `json:"negotiable"`
	ImageURLs   []string    `json:"image_urls"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
	User        userView    `json:"user"`
}

type pageView struct {
	Posts      []postView `json:"posts"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

func (s *Server) view(l Listing) postView {
	owner, _ := s.cat.userByID(l.OwnerID)
	images := l.ImageURLs
	if images == nil {
		images = []string{}
	}
	return postView{
		ID:          l.ID,
		UserID:      l.OwnerID,
		Title:       l.Title,
		Description: l.Description,
		Price:       json.Number(l.Price.String()),
		ContactInfo: l.ContactInfo,
		ZipCode:     l.ZipCode,
		Negotiable:  l.Negotiable,
		ImageURLs:   images,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:   l.UpdatedAt.UTC().Format(timeLayout),
		User:        viewUser(owner),
	}
}

// pageInput is read leniently: the backend treats missing or malformed
// values as defaults rather than errors.
type pageInput struct {
	Page     string `query:"page"      doc:"1-based page number"`
	PageSize string `query:"page_size" doc:"Posts per page"`
}

// params returns page and page_size, falling back to 1 and def for missing
// or non-positive values.
func (in *pageInput) params(def int) (page, size int) {
	page, size = 1, def
	if v, err := strconv.Atoi(in.Page); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(in.PageSize); err == nil && v > 0 {
		size = v
	}
	return page, size
}

func (s *Server) respondPage(in *pageInput, keep func(*Listing) bool, def int) *reply {
	page, size := in.params(def)
	items, total := s.cat.page(keep, page, size)

	views := make([]postView, 0, len(items))
	for _, l := range items {
		views = append(views, s.view(l))
	}

	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}

	return ok(http.StatusOK, "", pageView{
		Posts:      views,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	})
}

// listItems handles GET /items. Only active posts are listed.
func (s *Server) listItems(_ context.Context, in *pageInput) (*reply, error) {
	return s.respondPage(in, func(l *Listing) bool {
		return l.Status == StatusActive
	}, DefaultMarketPageSize), nil
}

// myListings handles GET /mylistings. Sold posts stay listed for their owner.
func (s *Server) myListings(ctx context.Context, in *pageInput) (*reply, error) {
	uid := currentUser(ctx)
	return s.respondPage(in, func(l *Listing) bool {
		return l.OwnerID == uid && l.Status != StatusDeleted
	}, DefaultMinePageSize), nil
}

type postInput struct {
	ID string `path:"id" doc:"Post ID"`
}

func (in *postInput) postID() (int, error) {
	id, err := strconv.Atoi(in.ID)
	if err != nil || id <= 0 {
		return 0, failure(http.StatusBadRequest, "Invalid post ID")
	}
	return id, nil
}

// getItem handles GET /item/{id}.
func (s *Server) getItem(_ context.Context, in *postInput) (*reply, error) {
	id, err := in.postID()
	if err != nil {
		return nil, err
	}
	l, err := s.cat.post(id, false)
	if err != nil {
		return nil, failure(http.StatusNotFound, "Post not found")
	}
	return ok(http.StatusOK, "", s.view(l)), nil
}

type statusInput struct {
	ID     string `path:"id"      doc:"Post ID"`
	Status string `query:"status" doc:"Target status; only sold is accepted"`
}

// setStatus handles PUT /items/{id}?status=sold.
func (s *Server) setStatus(ctx context.Context, in *statusInput) (*reply, error) {
	id, err := (&postInput{ID: in.ID}).postID()
	if err != nil {
		return nil, err
	}
	if in.Status != StatusSold {
		return nil, failure(http.StatusBadRequest, "Invalid status")
	}

	l, err := s.cat.modify(id, currentUser(ctx), func(l *Listing) error {
		if l.Status != StatusActive {
			return errConflict
		}
		l.Status = StatusSold
		return nil
	})
	if err != nil {
		return nil, s.modifyFailed(err, "Post is already sold")
	}

	s.log.Info("post marked sold", "post_id", id)
	return ok(http.StatusOK, "Post marked as sold", s.view(l)), nil
}

type updateInput struct {
	ID      string `path:"id" doc:"Post ID"`
	RawBody []byte
}

type updateRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
}

// updateItem handles PUT /item/{id}.
func (s *Server) updateItem(ctx context.Context, in *updateInput) (*reply, error) {
	id, err := (&postInput{ID: in.ID}).postID()
	if err != nil {
		return nil, err
	}

	var req updateRequest
	if err := json.Unmarshal(in.RawBody, &req); err != nil {
		return nil, failure(http.StatusBadRequest, "Invalid request body")
	}
	price, err := decimal.NewFromString(req.Price.String())
	if strings.TrimSpace(req.Title) == "" || err != nil || !price.IsPositive() {
		return nil, failure(http.StatusBadRequest, "Title and valid price are required")
	}
	if msg := checkFields(req.Title, req.Description, price); msg != "" {
		return nil, failure(http.StatusBadRequest, msg)
	}

	l, err := s.cat.modify(id, currentUser(ctx), func(l *Listing) error {
		l.Title = req.Title
		l.Description = req.Description
		l.Price = price
		return nil
	})
	if err != nil {
		return nil, s.modifyFailed(err, "")
	}

	s.log.Info("post updated", "post_id", id)
	return ok(http.StatusOK, "Post updated successfully", s.view(l)), nil
}

// deleteItem handles DELETE /item/{id}. Deletion is soft.
func (s *Server) deleteItem(ctx context.Context, in *postInput) (*reply, error) {
	id, err := in.postID()
	if err != nil {
		return nil, err
	}

	_, err = s.cat.modify(id, currentUser(ctx), func(l *Listing) error {
		l.Status = StatusDeleted
		return nil
	})
	if err != nil {
		return nil, s.modifyFailed(err, "")
	}

	s.log.Info("post deleted", "post_id", id)
	return ok(http.StatusOK, "Post deleted successfully", nil), nil
}

func (s *Server) modifyFailed(err error, conflictMsg string) error {
	switch {
	case errors.Is(err, errNotFound):
		return failure(http.StatusNotFound, "Post not found")
	case errors.Is(err, errForbidden):
		return failure(http.StatusForbidden, "You can only modify your own posts")
	case errors.Is(err, errConflict):
		return failure(http.StatusConflict, conflictMsg)
	}
	s.log.Error("modifying post", "error", err)
	return failure(http.StatusInternalServerError, "Failed to update post")
}

// registerListingRoutes registers the catalog operations. All of them need a
// bearer token.
func (s *Server) registerListingRoutes(api huma.API) {
	auth := huma.Middlewares{s.requireAuth(api)}
	modifyErrors := []int{
		http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusConflict,
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-items",
		Method:      http.MethodGet,
		Path:        "/items",
		Summary:     "List active posts",
		Description: "Returns one page of active posts, newest first.",
		Tags:        []string{"items"},
		Middlewares: auth,
		Errors:      []int{http.StatusUnauthorized},
	}, s.listItems)

	huma.Register(api, huma.Operation{
		OperationID: "list-my-listings",
		Method:      http.MethodGet,
		Path:        "/mylistings",
		Summary:     "List the caller's posts",
		Description: "Returns one page of the caller's active and sold posts, newest first.",
		Tags:        []string{"items"},
		Middlewares: auth,
		Errors:      []int{http.StatusUnauthorized},
	}, s.myListings)

	huma.Register(api, huma.Operation{
		OperationID: "get-item",
		Method:      http.MethodGet,
		Path:        "/item/{id}",
		Summary:     "Get a post",
		Description: "Returns a post that has not been deleted.",
		Tags:        []string{"items"},
		Middlewares: auth,
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound},
	}, s.getItem)

	huma.Register(api, huma.Operation{
		OperationID: "mark-item-sold",
		Method:      http.MethodPut,
		Path:        "/items/{id}",
		Summary:     "Mark a post sold",
		Description: "Moves one of the caller's active posts to sold.",
		Tags:        []string{"items"},
		Middlewares: auth,
		Errors:      modifyErrors,
	}, s.setStatus)

	huma.Register(api, huma.Operation{
		OperationID: "update-item",
		Method:      http.MethodPut,
		Path:        "/item/{id}",
		Summary:     "Edit a post",
		Description: "Replaces the title, description and price of one of the caller's posts.",
		Tags:        []string{"items"},
		Middlewares: auth,
		Errors:      modifyErrors,
	}, s.updateItem)

	huma.Register(api, huma.Operation{
		OperationID: "delete-item",
		Method:      http.MethodDelete,
		Path:        "/item/{id}",
		Summary:     "Delete a post",
		Description: "Soft-deletes one of the caller's posts.",
		Tags:        []string{"items"},
		Middlewares: auth,
		Errors:      modifyErrors,
	}, s.deleteItem)
}

func checkFields(title, description string, price decimal.Decimal) string {
	switch {
	case utf8.RuneCountInString(title) > maxTitleLen:
		return "Title is too long"
	case utf8.RuneCountInString(description) > maxDescriptionLen:
		return "Description is too long"
	case price.LessThan(minPrice) || price.GreaterThan(maxPrice):
		return "Invalid price"
	}
	return ""
}
