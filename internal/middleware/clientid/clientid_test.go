package clientid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, setup func(*http.Request)) (string, *httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got string
	err := Middleware(func(c echo.Context) error {
		got = FromContext(c)
		return nil
	})(c)
	return got, rec, err
}

func TestMiddleware_HeaderWins(t *testing.T) {
	id, rec, err := resolve(t, func(r *http.Request) {
		r.Header.Set(Header, "tablet-7")
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})
	})
	require.NoError(t, err)
	assert.Equal(t, "tablet-7", id)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestMiddleware_Cookie(t *testing.T) {
	id, _, err := resolve(t, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})
	})
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", id)
}

func TestMiddleware_IssuesFreshID(t *testing.T) {
	id, rec, err := resolve(t, nil)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), CookieName+"="+id)
}

func TestMiddleware_RejectsOversizedID(t *testing.T) {
	_, _, err := resolve(t, func(r *http.Request) {
		r.Header.Set(Header, strings.Repeat("x", maxLen+1))
	})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
