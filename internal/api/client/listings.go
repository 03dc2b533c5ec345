package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// ListItems returns one page of the public market collection.
func (c *Client) ListItems(ctx context.Context, page, pageSize int) (*domain.Page, error) {
	return c.listPage(ctx, "/items", page, pageSize)
}

// ListMyListings returns one page of the caller's own listings. The server
// scopes the collection by the bearer token.
func (c *Client) ListMyListings(ctx context.Context, page, pageSize int) (*domain.Page, error) {
	return c.listPage(ctx, "/mylistings", page, pageSize)
}

func (c *Client) listPage(ctx context.Context, base string, page, pageSize int) (*domain.Page, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}

	path := base
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var data json.RawMessage
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	return normalizePage(data, c.log)
}

// GetItem returns a single listing by ID.
func (c *Client) GetItem(ctx context.Context, id string) (*domain.ListingDetail, error) {
	var data json.RawMessage
	if err := c.get(ctx, "/item/"+url.PathEscape(id), &data); err != nil {
		return nil, err
	}
	return normalizeDetail(data)
}

// MarkSold sets a listing's status to sold.
func (c *Client) MarkSold(ctx context.Context, id string) error {
	return c.put(ctx, "/items/"+url.PathEscape(id)+"?status=sold", struct{}{}, nil)
}

// updateRequest carries the price as a JSON number without a float round trip.
type updateRequest struct {
	Title       string      `json:"title"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
}

// UpdateItem replaces a listing's editable fields.
func (c *Client) UpdateItem(ctx context.Context, id string, f domain.EditableFields) error {
	return c.put(ctx, "/item/"+url.PathEscape(id), updateRequest{
		Title:       f.Title,
		Price:       json.Number(f.Price.String()),
		Description: f.Description,
	}, nil)
}

// DeleteItem deletes a listing.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.del(ctx, "/item/"+url.PathEscape(id), nil)
}

// CreateListing publishes a new listing with its images as a multipart form.
func (c *Client) CreateListing(ctx context.Context, l *domain.NewListing) error {
	body, contentType, err := encodeListing(l)
	if err != nil {
		return err
	}
	return c.send(ctx, &call{
		method:      http.MethodPost,
		path:        "/upload",
		body:        body,
		contentType: contentType,
		protected:   true,
	}, nil)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeListing(l *domain.NewListing) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"title", l.Title},
		{"description", l.Description},
		{"contact_info", l.ContactInfo},
		{"price", l.Price.String()},
		{"negotiable", strconv.FormatBool(l.Negotiable)},
		{"zip_code", l.ZipCode},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", f.name, err)
		}
	}

	for _, img := range l.Images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="images"; filename="%s"`, quoteEscaper.Replace(img.Filename)))
		h.Set("Content-Type", img.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("creating image part %s: %w", img.Filename, err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("writing image %s: %w", img.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
