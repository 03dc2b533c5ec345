// Package domain defines the canonical marketplace types shared by the
// session, listing, mutation and carousel components.
package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a listing.
type Status string

// Status constants.
const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
	StatusDeleted   Status = "deleted"
)

// CanTransition reports whether a listing may move from s to next.
// available -> sold and any -> deleted are allowed; nothing leaves deleted
// and sold never returns to available.
func (s Status) CanTransition(next Status) bool {
	switch {
	case s == next:
		return s != StatusDeleted
	case s == StatusDeleted:
		return false
	case next == StatusDeleted:
		return true
	case s == StatusAvailable && next == StatusSold:
		return true
	default:
		return false
	}
}

// ListingSummary is the card-level representation of a listing.
type ListingSummary struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Price           decimal.Decimal `json:"price"`
	Status          Status          `json:"status"`
	PrimaryImageURL string          `json:"primary_image_url,omitempty"`
	ZipCode         string          `json:"zip_code,omitempty"`
}

// ListingDetail is the full representation shown on a listing's detail view.
type ListingDetail struct {
	ListingSummary

	Description string    `json:"description"`
	ContactInfo string    `json:"contact_info"`
	Negotiable  bool      `json:"negotiable"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerName   string    `json:"owner_name,omitempty"`
}

// Clone returns a copy of d that shares no slices with the original.
func (d *ListingDetail) Clone() *ListingDetail {
	c := *d
	c.Images = slices.Clone(d.Images)
	return &c
}

// EditableFields are the fields an owner may change after publishing.
type EditableFields struct {
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// Page is one page of a listing collection as reported by the server.
type Page struct {
	Items      []ListingSummary `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
	TotalCount int              `json:"total_count"`
}

// User is the account returned by login.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Credentials is the login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up request.
type Registration struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is the outcome of a successful login or registration.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// ImageFile is one image attached to a new listing.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewListing is the payload for publishing a listing.
type NewListing struct {
	Title       string
	Description string
	ContactInfo string
	Price       decimal.Decimal
	Negotiable  bool
	ZipCode     string
	Images      []ImageFile
}
