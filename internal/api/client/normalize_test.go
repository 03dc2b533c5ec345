package client

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/secondhand-client/pkg/logger"
	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

func TestNormalizeDetail_SchemaDrift(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    string
		wantID     string
		wantPrice  string
		wantStatus domain.Status
		wantImages []string
		wantOwner  string
	}{
		{
			name:       "current backend",
			payload:    `{"id":1,"price":10.5,"status":"active","image_urls":["a","b"],"user":{"username":"u"}}`,
			wantID:     "1",
			wantPrice:  "10.5",
			wantStatus: domain.StatusAvailable,
			wantImages: []string{"a", "b"},
			wantOwner:  "u",
		},
		{
			name:       "images field and string price",
			payload:    `{"id":"abc","price":"49.99","status":"sold","images":["x"]}`,
			wantID:     "abc",
			wantPrice:  "49.99",
			wantStatus: domain.StatusSold,
			wantImages: []string{"x"},
		},
		{
			name:       "camel case images and sold flag",
			payload:    `{"id":2,"price":3,"sold":true,"imageUrls":["p","q"],"owner_name":"o"}`,
			wantID:     "2",
			wantPrice:  "3",
			wantStatus: domain.StatusSold,
			wantImages: []string{"p", "q"},
			wantOwner:  "o",
		},
		{
			name:       "single image url and sold false",
			payload:    `{"id":3,"price":1,"sold":false,"image_url":"only"}`,
			wantID:     "3",
			wantPrice:  "1",
			wantStatus: domain.StatusAvailable,
			wantImages: []string{"only"},
		},
		{
			name:       "no images",
			payload:    `{"id":4,"price":null,"status":"available"}`,
			wantID:     "4",
			wantPrice:  "0",
			wantStatus: domain.StatusAvailable,
			wantImages: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := normalizeDetail(json.RawMessage(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, d.ID)
			assert.True(t, decimal.RequireFromString(tt.wantPrice).Equal(d.Price), "price %s", d.Price)
			assert.Equal(t, tt.wantStatus, d.Status)
			assert.Equal(t, tt.wantImages, d.Images)
			assert.Equal(t, tt.wantOwner, d.OwnerName)
			if len(tt.wantImages) > 0 {
				assert.Equal(t, tt.wantImages[0], d.PrimaryImageURL)
			} else {
				assert.Empty(t, d.PrimaryImageURL)
			}
		})
	}
}

func TestNormalizeDetail_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{name: "missing id", payload: `{"title":"x"}`, wantErr: "missing id"},
		{name: "unknown status", payload: `{"id":1,"status":"archived"}`, wantErr: "unknown listing status"},
		{name: "bad price", payload: `{"id":1,"price":"cheap"}`, wantErr: "price"},
		{name: "not an object", payload: `[1,2]`, wantErr: "decoding listing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := normalizeDetail(json.RawMessage(tt.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizePage_ItemsAlias(t *testing.T) {
	t.Parallel()

	p, err := normalizePage(json.RawMessage(
		`{"items":[{"id":1,"price":1}],"total_count":1,"page":1,"page_size":8,"total_pages":1}`), logger.Discard())
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "1", p.Items[0].ID)
}

func TestNormalizePage_SkipsMalformedPosts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "warn", "text")

	p, err := normalizePage(json.RawMessage(`{"posts":[
		{"id":1,"price":"10","status":"active"},
		{"id":2,"price":"11","status":"archived"},
		{"price":"12"},
		{"id":4,"price":"not money"},
		{"id":5,"price":"13","status":"sold"}
	],"total_count":5,"page":1,"page_size":8,"total_pages":1}`), log)
	require.NoError(t, err)

	require.Len(t, p.Items, 2)
	assert.Equal(t, "1", p.Items[0].ID)
	assert.Equal(t, "5", p.Items[1].ID)
	assert.Equal(t, domain.StatusSold, p.Items[1].Status)
	assert.Equal(t, 5, p.TotalCount)
	assert.Equal(t, 3, strings.Count(buf.String(), "skipping malformed listing"))
}

func TestNormalizePage_BadEnvelope(t *testing.T) {
	t.Parallel()

	_, err := normalizePage(json.RawMessage(`{"posts":"nope"}`), logger.Discard())
	require.Error(t, err)
}

func TestNormalizeAuth(t *testing.T) {
	t.Parallel()

	res, err := normalizeAuth(json.RawMessage(`{"token":"t","user":{"id":"u-1","username":"n","email":"e"}}`))
	require.NoError(t, err)
	assert.Equal(t, "t", res.Token)
	assert.Equal(t, &domain.User{ID: "u-1", Username: "n", Email: "e"}, res.User)
}
