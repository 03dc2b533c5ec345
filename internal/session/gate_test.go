package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/secondhand-client/pkg/logger"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

type failingStore struct {
	loadErr  error
	saveErr  error
	clearErr error
	token    string
}

func (f *failingStore) Load() (string, error) { return f.token, f.loadErr }
func (f *failingStore) Save(string) error     { return f.saveErr }
func (f *failingStore) Clear() error          { return f.clearErr }

func newGate(t *testing.T, store Store) *Gate {
	t.Helper()
	return NewGate(store, WithLogger(logger.Discard()))
}

func TestGate_Initialize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  State
	}{
		{name: "no persisted token", token: "", want: Unauthenticated},
		{name: "whitespace token", token: "  ", want: Unauthenticated},
		{name: "persisted token", token: "abc", want: Authenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newGate(t, NewMemoryStore(tt.token))
			assert.Equal(t, Unauthenticated, g.State(), "gate starts unauthenticated")
			require.NoError(t, g.Initialize())
			assert.Equal(t, tt.want, g.State())
		})
	}
}

func TestGate_InitializeRunsOnce(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore("first")
	g := newGate(t, store)
	require.NoError(t, g.Initialize())

	require.NoError(t, store.Save("second"))
	require.ErrorIs(t, g.Initialize(), ErrAlreadyInitialized)

	tok, _ := g.Token()
	assert.Equal(t, "first", tok)
}

func TestGate_InitializeStoreError(t *testing.T) {
	t.Parallel()

	g := newGate(t, &failingStore{loadErr: errors.New("disk gone"), token: "abc"})
	err := g.Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading session")
	assert.Equal(t, Unauthenticated, g.State())
}

func TestGate_Login(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore("")
	g := newGate(t, store)
	require.NoError(t, g.Initialize())

	var notified []State
	g.Subscribe(func(s State) {
		persisted, _ := store.Load()
		assert.Equal(t, "tok-1", persisted, "store is written before subscribers run")
		notified = append(notified, s)
	})

	require.NoError(t, g.Login("tok-1"))
	assert.Equal(t, Authenticated, g.State())
	assert.Equal(t, []State{Authenticated}, notified)

	tok, ok := g.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", tok)
}

func TestGate_LoginEmptyTokenIsRejected(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore("")
	g := newGate(t, store)
	require.NoError(t, g.Initialize())

	calls := 0
	g.Subscribe(func(State) { calls++ })

	err := g.Login("")
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, Unauthenticated, g.State())
	assert.Zero(t, calls)

	persisted, _ := store.Load()
	assert.Empty(t, persisted)
}

func TestGate_LoginStoreError(t *testing.T) {
	t.Parallel()

	g := newGate(t, &failingStore{saveErr: errors.New("read-only")})
	err := g.Login("tok")
	require.Error(t, err)
	assert.Equal(t, Unauthenticated, g.State())
}

func TestGate_Logout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		initial string
	}{
		{name: "from authenticated", initial: "tok"},
		{name: "from unauthenticated", initial: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewMemoryStore(tt.initial)
			g := newGate(t, store)
			require.NoError(t, g.Initialize())

			require.NoError(t, g.Logout())
			require.NoError(t, g.Logout(), "logout is idempotent")

			assert.Equal(t, Unauthenticated, g.State())
			persisted, _ := store.Load()
			assert.Empty(t, persisted)

			out := Guard(g, "my-listings")
			require.True(t, out.Redirected())
			assert.Equal(t, LoginPath, out.Redirect.To)
			assert.True(t, out.Redirect.Replace)
			assert.Empty(t, out.View)
		})
	}
}

func TestGate_LogoutStoreErrorStillTransitions(t *testing.T) {
	t.Parallel()

	store := &failingStore{token: "tok", clearErr: errors.New("permission denied")}
	g := newGate(t, store)
	require.NoError(t, g.Initialize())

	err := g.Logout()
	require.Error(t, err)
	assert.Equal(t, Unauthenticated, g.State())
}

func TestGuard_Authenticated(t *testing.T) {
	t.Parallel()

	g := newGate(t, NewMemoryStore("tok"))
	require.NoError(t, g.Initialize())

	type view struct{ name string }
	out := Guard(g, view{name: "sell"})
	assert.False(t, out.Redirected())
	assert.Equal(t, view{name: "sell"}, out.View)
}

func TestGate_Unsubscribe(t *testing.T) {
	t.Parallel()

	g := newGate(t, NewMemoryStore(""))
	var order []string
	unsubA := g.Subscribe(func(State) { order = append(order, "a") })
	g.Subscribe(func(State) { order = append(order, "b") })

	require.NoError(t, g.Login("x"))
	unsubA()
	require.NoError(t, g.Logout())

	assert.Equal(t, []string{"a", "b", "b"}, order)
}

func TestGate_Claims(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	g := newGate(t, NewMemoryStore(signed))
	require.NoError(t, g.Initialize())

	c, err := g.Claims()
	require.NoError(t, err)
	assert.Equal(t, 7, c.UserID)
	assert.True(t, exp.Equal(c.ExpiresAt))
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.Expired(exp.Add(time.Minute)))
}

func TestGate_ClaimsOpaqueToken(t *testing.T) {
	t.Parallel()

	g := newGate(t, NewMemoryStore("not-a-jwt"))
	require.NoError(t, g.Initialize())

	_, err := g.Claims()
	require.Error(t, err)
	assert.True(t, g.IsAuthenticated(), "an undecodable token still authenticates")

	require.NoError(t, g.Logout())
	_, err = g.Claims()
	require.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestGate_WithFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	g := newGate(t, NewFileStore(path))
	require.NoError(t, g.Initialize())
	require.NoError(t, g.Login("persisted"))

	restarted := newGate(t, NewFileStore(path))
	require.NoError(t, restarted.Initialize())
	assert.True(t, restarted.IsAuthenticated())

	require.NoError(t, restarted.Logout())
	again := newGate(t, NewFileStore(path))
	require.NoError(t, again.Initialize())
	assert.False(t, again.IsAuthenticated())
}
