package mutation

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

// Field limits enforced by the catalog backend.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 2000
	MaxContactLen     = 200
	MaxZipCodeLen     = 20
)

var (
	minPrice = decimal.RequireFromString("0.01")
	maxPrice = decimal.NewFromInt(999999)
)

// UploadLimits bounds the images attached to a new listing.
type UploadLimits struct {
	MaxImages     int
	MaxImageBytes int64
}

// DefaultUploadLimits returns 5 images of at most 5 MiB each.
func DefaultUploadLimits() UploadLimits {
	return UploadLimits{MaxImages: 5, MaxImageBytes: 5 << 20}
}

// EditInput is the raw working copy of an edit, as typed by the user.
type EditInput struct {
	Title       string
	Price       string
	Description string
}

// Parse validates the working copy and converts the price to a decimal.
func (in EditInput) Parse() (domain.EditableFields, error) {
	title := strings.TrimSpace(in.Title)
	if err := checkText("title", title, MaxTitleLen, true); err != nil {
		return domain.EditableFields{}, err
	}
	if err := checkText("description", in.Description, MaxDescriptionLen, false); err != nil {
		return domain.EditableFields{}, err
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return domain.EditableFields{}, err
	}
	return domain.EditableFields{Title: title, Price: price, Description: in.Description}, nil
}

// ParsePrice parses s as a decimal price within the accepted range.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, domain.Invalid("price", "is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.Invalid("price", fmt.Sprintf("%q is not a number", s))
	}
	if d.LessThan(minPrice) || d.GreaterThan(maxPrice) {
		return decimal.Zero, domain.Invalid("price", fmt.Sprintf("must be between %s and %s", minPrice, maxPrice))
	}
	return d, nil
}

// Draft is a new listing as entered by the user.
type Draft struct {
	Title       string
	Description string
	ContactInfo string
	Price       string
	Negotiable  bool
	ZipCode     string
	Images      []domain.ImageFile
}

// Validate checks d against the backend's rules and limits and returns the
// listing to upload. Missing image content types are sniffed from the data.
func (d *Draft) Validate(limits UploadLimits) (*domain.NewListing, error) {
	title := strings.TrimSpace(d.Title)
	contact := strings.TrimSpace(d.ContactInfo)
	zip := strings.TrimSpace(d.ZipCode)

	checks := []struct {
		field    string
		value    string
		max      int
		required bool
	}{
		{"title", title, MaxTitleLen, true},
		{"description", d.Description, MaxDescriptionLen, true},
		{"contact_info", contact, MaxContactLen, true},
		{"zip_code", zip, MaxZipCodeLen, true},
	}
	for _, c := range checks {
		if err := checkText(c.field, c.value, c.max, c.required); err != nil {
			return nil, err
		}
	}

	price, err := ParsePrice(d.Price)
	if err != nil {
		return nil, err
	}

	images, err := checkImages(d.Images, limits)
	if err != nil {
		return nil, err
	}

	return &domain.NewListing{
		Title:       title,
		Description: d.Description,
		ContactInfo: contact,
		Price:       price,
		Negotiable:  d.Negotiable,
		ZipCode:     zip,
		Images:      images,
	}, nil
}

func checkImages(in []domain.ImageFile, limits UploadLimits) ([]domain.ImageFile, error) {
	switch {
	case len(in) == 0:
		return nil, domain.Invalid("images", "please upload at least 1 image")
	case limits.MaxImages > 0 && len(in) > limits.MaxImages:
		return nil, domain.Invalid("images", fmt.Sprintf("you can upload at most %d images", limits.MaxImages))
	}

	out := make([]domain.ImageFile, len(in))
	for i, img := range in {
		if limits.MaxImageBytes > 0 && int64(len(img.Data)) > limits.MaxImageBytes {
			return nil, domain.Invalid("images",
				fmt.Sprintf("%s must be smaller than %d MB", img.Filename, limits.MaxImageBytes>>20))
		}
		if img.ContentType == "" {
			img.ContentType = http.DetectContentType(img.Data)
		}
		if !strings.HasPrefix(img.ContentType, "image/") {
			return nil, domain.Invalid("images", fmt.Sprintf("%s is not an image", img.Filename))
		}
		out[i] = img
	}
	return out, nil
}

func checkText(field, value string, maxLen int, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return domain.Invalid(field, "is required")
	}
	if n := utf8.RuneCountInString(value); n > maxLen {
		return domain.Invalid(field, fmt.Sprintf("must be at most %d characters, got %d", maxLen, n))
	}
	return nil
}
