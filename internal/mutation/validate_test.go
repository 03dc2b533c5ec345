package mutation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr string
	}{
		{in: "49.99", want: "49.99"},
		{in: " 10 ", want: "10"},
		{in: "0.01", want: "0.01"},
		{in: "999999", want: "999999"},
		{in: "", wantErr: "price: is required"},
		{in: "abc", wantErr: `price: "abc" is not a number`},
		{in: "12,50", wantErr: "is not a number"},
		{in: "0", wantErr: "must be between 0.01 and 999999"},
		{in: "-3", wantErr: "must be between"},
		{in: "1000000", wantErr: "must be between"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePrice(tt.in)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, domain.ErrValidation)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got))
		})
	}
}

func TestEditInput_Parse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        EditInput
		wantField string
	}{
		{name: "valid", in: EditInput{Title: " Bike ", Price: "5", Description: "d"}},
		{name: "empty title", in: EditInput{Title: "  ", Price: "5"}, wantField: "title"},
		{name: "long title", in: EditInput{Title: strings.Repeat("x", 201), Price: "5"}, wantField: "title"},
		{name: "long description", in: EditInput{Title: "t", Price: "5", Description: strings.Repeat("é", 2001)}, wantField: "description"},
		{name: "bad price", in: EditInput{Title: "t", Price: "five"}, wantField: "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := tt.in.Parse()
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "Bike", f.Title)
				assert.Equal(t, "d", f.Description)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestDraft_Validate(t *testing.T) {
	t.Parallel()

	png := domain.ImageFile{Filename: "a.png", ContentType: "image/png", Data: []byte("x")}
	limits := DefaultUploadLimits()

	tests := []struct {
		name      string
		mutate    func(d *Draft)
		wantField string
		wantText  string
	}{
		{name: "valid", mutate: func(*Draft) {}},
		{name: "missing title", mutate: func(d *Draft) { d.Title = "" }, wantField: "title"},
		{name: "missing description", mutate: func(d *Draft) { d.Description = " " }, wantField: "description"},
		{name: "missing contact", mutate: func(d *Draft) { d.ContactInfo = "" }, wantField: "contact_info"},
		{name: "missing zip", mutate: func(d *Draft) { d.ZipCode = "" }, wantField: "zip_code"},
		{name: "long zip", mutate: func(d *Draft) { d.ZipCode = strings.Repeat("9", 21) }, wantField: "zip_code"},
		{name: "bad price", mutate: func(d *Draft) { d.Price = "free" }, wantField: "price"},
		{name: "no images", mutate: func(d *Draft) { d.Images = nil }, wantField: "images", wantText: "at least 1"},
		{
			name:      "too many images",
			mutate:    func(d *Draft) { d.Images = []domain.ImageFile{png, png, png, png, png, png} },
			wantField: "images",
			wantText:  "at most 5",
		},
		{
			name: "image too large",
			mutate: func(d *Draft) {
				d.Images = []domain.ImageFile{{Filename: "big.png", ContentType: "image/png", Data: make([]byte, 5<<20+1)}}
			},
			wantField: "images",
			wantText:  "smaller than 5 MB",
		},
		{
			name: "not an image",
			mutate: func(d *Draft) {
				d.Images = []domain.ImageFile{{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hi")}}
			},
			wantField: "images",
			wantText:  "not an image",
		},
		{
			name: "sniffed non-image",
			mutate: func(d *Draft) {
				d.Images = []domain.ImageFile{{Filename: "mystery", Data: []byte("plain text")}}
			},
			wantField: "images",
			wantText:  "not an image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := validDraft()
			tt.mutate(d)

			l, err := d.Validate(limits)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "Desk lamp", l.Title)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Contains(t, ve.Reason, tt.wantText)
		})
	}
}

func TestDraft_ValidateSniffsContentType(t *testing.T) {
	t.Parallel()

	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	d := validDraft()
	d.Images = []domain.ImageFile{{Filename: "dot.gif", Data: gif}}

	l, err := d.Validate(DefaultUploadLimits())
	require.NoError(t, err)
	assert.Equal(t, "image/gif", l.Images[0].ContentType)
	assert.Empty(t, d.Images[0].ContentType, "the draft itself is not modified")
}
