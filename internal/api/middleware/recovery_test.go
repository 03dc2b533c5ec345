package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery_NoPanic(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/items", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Recovery(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, buf.String(), "no panic should produce no log output")
}

func TestRecovery_Panic(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name      string
		method    string
		path      string
		value     any
		wantCause string
		wantLogs  []string
	}{
		{
			name:      "string value",
			method:    http.MethodGet,
			path:      "/item/1",
			value:     "test panic",
			wantCause: "test panic",
			wantLogs:  []string{"handler panicked", "test panic", "path=/item/1"},
		},
		{
			name:      "non-string value",
			method:    http.MethodPost,
			path:      "/upload",
			value:     42,
			wantCause: "42",
			wantLogs:  []string{"error=42", "method=POST"},
		},
		{
			name:      "error value",
			method:    http.MethodDelete,
			path:      "/item/2",
			value:     boom,
			wantCause: "boom",
			wantLogs:  []string{"error=boom", "stack="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			e := echo.New()
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Recovery(logger)(func(_ echo.Context) error {
				panic(tt.value)
			})

			err := handler(c)
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusInternalServerError, he.Code)
			require.Error(t, he.Internal)
			assert.Equal(t, tt.wantCause, he.Internal.Error())
			assert.False(t, c.Response().Committed, "the error handler writes the body")

			for _, want := range tt.wantLogs {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRecovery_ErrorValueUnwraps(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/items", http.NoBody), httptest.NewRecorder())

	err := Recovery(slog.New(slog.NewTextHandler(io.Discard, nil)))(func(_ echo.Context) error {
		panic(sentinel)
	})(c)

	require.ErrorIs(t, err, sentinel)
}
