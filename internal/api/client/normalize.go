package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// rawListing accepts every payload shape the catalog backend has shipped.
// Fields with more than one historical spelling are resolved in normalize*.
type rawListing struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	ContactInfo string          `json:"contact_info"`
	ZipCode     string          `json:"zip_code"`
	Negotiable  bool            `json:"negotiable"`
	Status      string          `json:"status"`
	Sold        *bool           `json:"sold"`
	CreatedAt   string          `json:"created_at"`
	OwnerName   string          `json:"owner_name"`

	ImageURLs      []string `json:"image_urls"`
	Images         []string `json:"images"`
	ImageURLsCamel []string `json:"imageUrls"`
	ImageURL       string   `json:"image_url"`

	User *struct {
		Username string `json:"username"`
	} `json:"user"`
}

type rawPage struct {
	Posts      []json.RawMessage `json:"posts"`
	Items      []json.RawMessage `json:"items"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

type rawUser struct {
	ID       json.RawMessage `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
}

type rawAuth struct {
	Token string   `json:"token"`
	User  *rawUser `json:"user"`
}

// normalizeDetail maps a raw listing payload to the canonical detail form.
func normalizeDetail(data json.RawMessage) (*domain.ListingDetail, error) {
	var raw rawListing
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding listing: %w", err)
	}

	id, err := flexID(raw.ID)
	if err != nil {
		return nil, fmt.Errorf("decoding listing id: %w", err)
	}
	if id == "" {
		return nil, errors.New("decoding listing: missing id")
	}

	price, err := flexDecimal(raw.Price)
	if err != nil {
		return nil, fmt.Errorf("decoding listing %s price: %w", id, err)
	}

	status, err := normalizeStatus(raw.Status, raw.Sold)
	if err != nil {
		return nil, fmt.Errorf("decoding listing %s: %w", id, err)
	}

	images := firstNonEmpty(raw.ImageURLs, raw.Images, raw.ImageURLsCamel)
	if len(images) == 0 && raw.ImageURL != "" {
		images = []string{raw.ImageURL}
	}
	if images == nil {
		images = []string{}
	}

	d := &domain.ListingDetail{
		ListingSummary: domain.ListingSummary{
			ID:      id,
			Title:   raw.Title,
			Price:   price,
			Status:  status,
			ZipCode: raw.ZipCode,
		},
		Description: raw.Description,
		ContactInfo: raw.ContactInfo,
		Negotiable:  raw.Negotiable,
		Images:      images,
		OwnerName:   raw.OwnerName,
	}
	if len(images) > 0 {
		d.PrimaryImageURL = images[0]
	}
	if d.OwnerName == "" && raw.User != nil {
		d.OwnerName = raw.User.Username
	}
	if raw.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw.CreatedAt); err == nil {
			d.CreatedAt = t
		}
	}
	return d, nil
}

// normalizeSummary maps a raw listing payload to the canonical summary form.
func normalizeSummary(data json.RawMessage) (domain.ListingSummary, error) {
	d, err := normalizeDetail(data)
	if err != nil {
		return domain.ListingSummary{}, err
	}
	return d.ListingSummary, nil
}

// normalizePage maps a raw page payload. Deleted listings are dropped since
// they must never appear in a collection. Posts that cannot be mapped are
// skipped with a warning so one bad entry does not hide the rest of the page.
func normalizePage(data json.RawMessage, log *slog.Logger) (*domain.Page, error) {
	var raw rawPage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}

	posts := raw.Posts
	if posts == nil {
		posts = raw.Items
	}

	items := make([]domain.ListingSummary, 0, len(posts))
	for i, p := range posts {
		s, err := normalizeSummary(p)
		if err != nil {
			log.Warn("skipping malformed listing", "index", i, "error", err)
			continue
		}
		if s.Status == domain.StatusDeleted {
			continue
		}
		items = append(items, s)
	}

	return &domain.Page{
		Items:      items,
		Page:       raw.Page,
		PageSize:   raw.PageSize,
		TotalPages: raw.TotalPages,
		TotalCount: raw.TotalCount,
	}, nil
}

func normalizeAuth(data json.RawMessage) (*domain.AuthResult, error) {
	var raw rawAuth
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding auth result: %w", err)
	}

	res := &domain.AuthResult{Token: raw.Token}
	if raw.User != nil {
		id, err := flexID(raw.User.ID)
		if err != nil {
			return nil, fmt.Errorf("decoding user id: %w", err)
		}
		res.User = &domain.User{ID: id, Username: raw.User.Username, Email: raw.User.Email}
	}
	return res, nil
}

func normalizeStatus(status string, sold *bool) (domain.Status, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "active", "available":
		if sold != nil && *sold {
			return domain.StatusSold, nil
		}
		return domain.StatusAvailable, nil
	case "sold":
		return domain.StatusSold, nil
	case "deleted":
		return domain.StatusDeleted, nil
	default:
		return "", fmt.Errorf("unknown listing status %q", status)
	}
}

// flexID accepts an id encoded as a JSON number or string.
func flexID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// flexDecimal accepts a price encoded as a JSON number or string.
func flexDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func firstNonEmpty(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}
