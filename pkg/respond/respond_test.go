package respond

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"seeksy/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=1,lte=10"`
}

func TestDecodeValid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","count":3}`))
	var s sample
	require.NoError(t, Decode(r, &s))
	assert.Equal(t, "x", s.Name)
	assert.Equal(t, 3, s.Count)
}

func TestDecodeValidationFailure(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":30}`))
	var s sample
	err := Decode(r, &s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	assert.Contains(t, err.Error(), "Name failed required")
	assert.Contains(t, err.Error(), "Count failed lte")
}

func TestDecodeMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	var s sample
	assert.ErrorIs(t, Decode(r, &s), apperr.ErrInvalid)
}

func TestErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")

	w = httptest.NewRecorder()
	Error(w, fmt.Errorf("clip 42: %w", apperr.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "clip 42")
}

func TestMethod(t *testing.T) {
	w := httptest.NewRecorder()
	ok := Method(w, httptest.NewRequest(http.MethodGet, "/", nil), http.MethodPost)
	assert.False(t, ok)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	assert.True(t, Method(w, httptest.NewRequest(http.MethodPost, "/", nil), http.MethodPost))
}
