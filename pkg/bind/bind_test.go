package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/bind"
)

type listing struct {
	Category string `query:"category"`
	Featured *bool  `query:"featured"`
	Page     int    `query:"page" validate:"nullable,gte=1"`
}

func TestQuery(t *testing.T) {
	var q listing
	errs, err := bind.Query(httptest.NewRequest(http.MethodGet, "/?category=rings&featured=false&page=2", nil), &q)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "rings", q.Category)
	require.NotNil(t, q.Featured)
	assert.False(t, *q.Featured)
	assert.Equal(t, 2, q.Page)

	var none listing
	_, err = bind.Query(httptest.NewRequest(http.MethodGet, "/", nil), &none)
	require.NoError(t, err)
	assert.Nil(t, none.Featured, "absent filter stays nil")
}

func TestQueryErrors(t *testing.T) {
	var q listing
	_, err := bind.Query(httptest.NewRequest(http.MethodGet, "/?featured=maybe", nil), &q)
	assert.ErrorContains(t, err, `"featured"`)

	errs, err := bind.Query(httptest.NewRequest(http.MethodGet, "/?page=-1", nil), &q)
	require.NoError(t, err)
	assert.Contains(t, errs, "page")

	_, err = bind.Query(httptest.NewRequest(http.MethodGet, "/", nil), q)
	assert.Error(t, err, "destination must be a pointer")
}

func TestJSON(t *testing.T) {
	type signup struct {
		Email string `json:"email" validate:"required,email"`
	}

	var in signup
	errs, err := bind.JSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"amina@example.com"}`)), &in)
	require.NoError(t, err)
	assert.Nil(t, errs)

	errs, err = bind.JSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"amina"}`)), &in)
	require.NoError(t, err)
	assert.Contains(t, errs, "email")

	_, err = bind.JSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &in)
	assert.ErrorContains(t, err, "empty")
}

func TestJSONBodyLimit(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "16")
	t.Cleanup(func() { config.Set("MAX_BODY_BYTES", "") })

	var in map[string]string
	_, err := bind.JSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"message":"`+strings.Repeat("x", 64)+`"}`)), &in)
	assert.ErrorContains(t, err, "too large")
}
