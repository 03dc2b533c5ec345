package mockapi

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

// Fixture is a set of accounts and listings to preload.
type Fixture struct {
	Users    []FixtureUser    `json:"users"`
	Listings []FixtureListing `json:"listings"`
}

// FixtureUser is one preloaded account.
type FixtureUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FixtureListing is one preloaded listing, owned by the user named Owner.
type FixtureListing struct {
	Owner       string          `json:"owner"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ContactInfo string          `json:"contact_info"`
	ZipCode     string          `json:"zip_code"`
	Negotiable  bool            `json:"negotiable"`
	ImageURLs   []string        `json:"image_urls"`
	Status      string          `json:"status"`
}

// LoadFixture reads a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &f, nil
}

// Seed loads f into the catalog. Listings are stamped one minute apart in
// fixture order, so the first listing is the newest.
func (s *Server) Seed(f *Fixture) error {
	owners := make(map[string]int, len(f.Users))
	for _, u := range f.Users {
		id, err := s.AddUser(u.Username, u.Email, u.Password)
		if err != nil {
			return err
		}
		owners[u.Username] = id
	}

	base := s.now()
	for i, l := range f.Listings {
		owner, found := owners[l.Owner]
		if !found {
			return fmt.Errorf("listing %q: unknown owner %q", l.Title, l.Owner)
		}
		_, err := s.AddListing(Listing{
			OwnerID:     owner,
			Title:       l.Title,
			Description: l.Description,
			Price:       l.Price,
			ContactInfo: l.ContactInfo,
			ZipCode:     l.ZipCode,
			Negotiable:  l.Negotiable,
			ImageURLs:   l.ImageURLs,
			Status:      l.Status,
			CreatedAt:   base.Add(-time.Duration(i) * time.Minute),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
