// Package carousel tracks which image of a listing's ordered image sequence
// is selected on the detail view.
package carousel

import "slices"

const none = -1

// Model is a cyclic cursor over an image sequence. The zero value is an empty
// carousel with no selection. A Model is owned by a single view and is not
// safe for concurrent use.
type Model struct {
	images   []string
	selected int
}

// New returns a Model over images with the first image selected.
func New(images []string) *Model {
	m := &Model{}
	m.Reset(images)
	return m
}

// Reset replaces the sequence. Selection moves to index 0, or is cleared when
// images is empty.
func (m *Model) Reset(images []string) {
	m.images = slices.Clone(images)
	if len(m.images) == 0 {
		m.selected = none
		return
	}
	m.selected = 0
}

// Sync resets the model only when images differs from the current sequence,
// so re-rendering the same listing keeps the user's selection.
func (m *Model) Sync(images []string) bool {
	if m.images != nil && slices.Equal(m.images, images) {
		return false
	}
	m.Reset(images)
	return true
}

// Select moves the selection to image. It reports false and leaves the
// selection unchanged when image is not in the current sequence.
func (m *Model) Select(image string) bool {
	i := slices.Index(m.images, image)
	if i < 0 {
		return false
	}
	m.selected = i
	return true
}

// SelectIndex moves the selection to index i if it is in range.
func (m *Model) SelectIndex(i int) bool {
	if i < 0 || i >= len(m.images) {
		return false
	}
	m.selected = i
	return true
}

// Next advances the selection, wrapping from the last image to the first.
func (m *Model) Next() {
	m.step(1)
}

// Prev moves the selection back, wrapping from the first image to the last.
func (m *Model) Prev() {
	m.step(-1)
}

func (m *Model) step(delta int) {
	n := len(m.images)
	if n < 2 {
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n
}

// Index returns the selected position, or false when nothing is selected.
func (m *Model) Index() (int, bool) {
	if m.selected == none || len(m.images) == 0 {
		return 0, false
	}
	return m.selected, true
}

// Selected returns the selected image URL, or false when nothing is selected.
func (m *Model) Selected() (string, bool) {
	i, ok := m.Index()
	if !ok {
		return "", false
	}
	return m.images[i], true
}

// Len returns the number of images.
func (m *Model) Len() int {
	return len(m.images)
}

// Images returns a copy of the current sequence.
func (m *Model) Images() []string {
	return slices.Clone(m.images)
}
