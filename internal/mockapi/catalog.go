package mockapi

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Post statuses as stored by the catalog backend.
const (
	StatusActive  = "active"
	StatusSold    = "sold"
	StatusDeleted = "deleted"
)

var (
	errNotFound  = errors.New("not found")
	errForbidden = errors.New("forbidden")
	errConflict  = errors.New("conflict")
)

type user struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Listing is a post held by the fake catalog.
type Listing struct {
	ID          int
	OwnerID     int
	Title       string
	Description string
	Price       decimal.Decimal
	ContactInfo string
	ZipCode     string
	Negotiable  bool
	ImageURLs   []string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (l *Listing) clone() Listing {
	c := *l
	c.ImageURLs = slices.Clone(l.ImageURLs)
	return c
}

type image struct {
	contentType string
	data        []byte
}

// catalog is the in-memory store behind the fake API.
type catalog struct {
	mu       sync.RWMutex
	users    map[int]*user
	byEmail  map[string]*user
	posts    map[int]*Listing
	images   map[string]image
	lastUser int
	lastPost int
	now      func() time.Time
}

func newCatalog(now func() time.Time) *catalog {
	return &catalog{
		users:   make(map[int]*user),
		byEmail: make(map[string]*user),
		posts:   make(map[int]*Listing),
		images:  make(map[string]image),
		now:     now,
	}
}

func (c *catalog) addUser(username, email, hash string) (user, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := c.byEmail[key]; ok {
		return user{}, errConflict
	}
	for _, u := range c.users {
		if u.Username == username {
			return user{}, errConflict
		}
	}

	c.lastUser++
	u := &user{
		ID:           c.lastUser,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    c.now(),
	}
	c.users[u.ID] = u
	c.byEmail[key] = u
	return *u, nil
}

func (c *catalog) userByEmail(email string) (user, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.byEmail[strings.ToLower(email)]
	if !ok {
		return user{}, false
	}
	return *u, true
}

func (c *catalog) userByID(id int) (user, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	if !ok {
		return user{}, false
	}
	return *u, true
}

func (c *catalog) addPost(l Listing) (Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.users[l.OwnerID]; !ok {
		return Listing{}, errNotFound
	}
	c.lastPost++
	l.ID = c.lastPost
	if l.Status == "" {
		l.Status = StatusActive
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = c.now()
	}
	l.UpdatedAt = l.CreatedAt
	c.posts[l.ID] = &l
	return l.clone(), nil
}

// post returns a listing by id. Deleted listings are reported only when
// includeDeleted is set.
func (c *catalog) post(id int, includeDeleted bool) (Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.posts[id]
	if !ok || (!includeDeleted && p.Status == StatusDeleted) {
		return Listing{}, errNotFound
	}
	return p.clone(), nil
}

// modify runs fn on the owner's listing under the write lock.
func (c *catalog) modify(id, ownerID int, fn func(*Listing) error) (Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.posts[id]
	if !ok || p.Status == StatusDeleted {
		return Listing{}, errNotFound
	}
	if p.OwnerID != ownerID {
		return Listing{}, errForbidden
	}
	if err := fn(p); err != nil {
		return Listing{}, err
	}
	p.UpdatedAt = c.now()
	return p.clone(), nil
}

// page returns the listings matching keep, newest first, and the total match
// count.
func (c *catalog) page(keep func(*Listing) bool, page, size int) ([]Listing, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]*Listing, 0, len(c.posts))
	for _, p := range c.posts {
		if keep(p) {
			matched = append(matched, p)
		}
	}
	slices.SortFunc(matched, func(a, b *Listing) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(b.ID, a.ID)
	})

	total := len(matched)
	offset := (page - 1) * size
	if offset >= total {
		return []Listing{}, total
	}
	end := min(offset+size, total)

	out := make([]Listing, 0, end-offset)
	for _, p := range matched[offset:end] {
		out = append(out, p.clone())
	}
	return out, total
}

func (c *catalog) putImage(name, contentType string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[name] = image{contentType: contentType, data: data}
}

func (c *catalog) image(name string) (image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[name]
	return img, ok
}
