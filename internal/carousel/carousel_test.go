package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imgs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		images  []string
		wantIdx int
		wantOK  bool
	}{
		{name: "empty has no selection", images: nil, wantOK: false},
		{name: "single image selects first", images: imgs(1), wantIdx: 0, wantOK: true},
		{name: "many images select first", images: imgs(5), wantIdx: 0, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := New(tt.images)
			idx, ok := m.Index()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantIdx, idx)
			}
		})
	}
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var m Model
	_, ok := m.Selected()
	assert.False(t, ok)
	m.Next()
	m.Prev()
	_, ok = m.Index()
	assert.False(t, ok)
}

func TestNextPrev_CyclicLaw(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 6; n++ {
		for start := range n {
			m := New(imgs(n))
			require.True(t, m.SelectIndex(start))

			for range n {
				m.Next()
			}
			idx, _ := m.Index()
			assert.Equal(t, start, idx, "next x%d from %d", n, start)

			for range n {
				m.Prev()
			}
			idx, _ = m.Index()
			assert.Equal(t, start, idx, "prev x%d from %d", n, start)
		}
	}
}

func TestNextPrev_Wrap(t *testing.T) {
	t.Parallel()

	m := New(imgs(3))

	m.Prev()
	idx, _ := m.Index()
	assert.Equal(t, 2, idx, "prev on first wraps to last")

	m.Next()
	idx, _ = m.Index()
	assert.Equal(t, 0, idx, "next on last wraps to first")

	m.Next()
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "b", sel)
}

func TestNextPrev_EmptyIsNoOp(t *testing.T) {
	t.Parallel()

	m := New(nil)
	m.Next()
	m.Prev()
	_, ok := m.Index()
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestSelect(t *testing.T) {
	t.Parallel()

	m := New([]string{"x", "y", "z"})

	assert.True(t, m.Select("z"))
	sel, _ := m.Selected()
	assert.Equal(t, "z", sel)

	assert.False(t, m.Select("missing"))
	sel, _ = m.Selected()
	assert.Equal(t, "z", sel, "unknown image leaves selection unchanged")

	assert.False(t, m.SelectIndex(3))
	assert.False(t, m.SelectIndex(-1))
}

func TestReset_NeverReferencesStaleSequence(t *testing.T) {
	t.Parallel()

	m := New(imgs(5))
	require.True(t, m.SelectIndex(4))

	m.Reset(imgs(2))
	idx, ok := m.Index()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	m.Reset(nil)
	_, ok = m.Selected()
	assert.False(t, ok)
}

func TestSync(t *testing.T) {
	t.Parallel()

	m := New([]string{"a", "b", "c"})
	m.Next()

	assert.False(t, m.Sync([]string{"a", "b", "c"}), "same listing keeps selection")
	idx, _ := m.Index()
	assert.Equal(t, 1, idx)

	assert.True(t, m.Sync([]string{"d", "e"}))
	idx, _ = m.Index()
	assert.Equal(t, 0, idx)
}

func TestImages_ReturnsCopy(t *testing.T) {
	t.Parallel()

	src := []string{"a", "b"}
	m := New(src)
	src[0] = "mutated"
	out := m.Images()
	out[1] = "mutated"

	assert.Equal(t, []string{"a", "b"}, m.Images())
}
