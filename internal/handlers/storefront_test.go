package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweethome/internal/events"
	"github.com/Skotchmaster/sweethome/internal/store"
	"github.com/Skotchmaster/sweethome/internal/tokens"
)

func newStorefront() *StorefrontHandler {
	return &StorefrontHandler{Store: store.NewMemoryStore(), Bus: events.NewBus()}
}

// call runs fn as client id with the given route params.
func call(t *testing.T, id string, fn echo.HandlerFunc, method, target, body string, params ...string) map[string]any {
	t.Helper()
	c, rec := newContext(method, target, body)
	c.Set("client_id", id)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(append(c.ParamNames(), params[i])...)
		c.SetParamValues(append(c.ParamValues(), params[i+1])...)
	}
	require.NoError(t, fn(c))
	out := decode(t, rec)
	out["_status"] = rec.Code
	return out
}

func TestCart_AddTwiceMergesQuantity(t *testing.T) {
	h := newStorefront()
	item := `{"id":"p1","name":"Honey Cake","price":4.5,"desc":"slice","img":"cake.png"}`

	out := call(t, "c1", h.AddToCart, http.MethodPost, "/api/cart", item)
	assert.EqualValues(t, 1, out["count"])
	assert.Equal(t, "Honey Cake added to cart!", out["notice"])

	out = call(t, "c1", h.AddToCart, http.MethodPost, "/api/cart", item)
	assert.EqualValues(t, 2, out["count"])

	out = call(t, "c1", h.GetCart, http.MethodGet, "/api/cart", "")
	data := out["data"].([]any)
	require.Len(t, data, 1)
	assert.EqualValues(t, 2, data[0].(map[string]any)["qty"])

	out = call(t, "c2", h.GetCart, http.MethodGet, "/api/cart", "")
	assert.Empty(t, out["data"])
	assert.EqualValues(t, 0, out["count"])
}

func TestCart_Removal(t *testing.T) {
	h := newStorefront()
	item := `{"id":"p1","name":"Tea","price":2}`
	call(t, "c1", h.AddToCart, http.MethodPost, "/api/cart", item)
	call(t, "c1", h.AddToCart, http.MethodPost, "/api/cart", item)

	out := call(t, "c1", h.DeleteOneFromCart, http.MethodDelete, "/api/cart/p1", "", "id", "p1")
	assert.EqualValues(t, 1, out["count"])

	out = call(t, "c1", h.DeleteAllFromCart, http.MethodDelete, "/api/cart/p1/all", "", "id", "p1")
	assert.EqualValues(t, 0, out["count"])

	out = call(t, "c1", h.DeleteAllFromCart, http.MethodDelete, "/api/cart/p1/all", "", "id", "p1")
	assert.Equal(t, http.StatusNotFound, out["_status"])

	out = call(t, "c1", h.ClearCart, http.MethodDelete, "/api/cart", "")
	assert.Equal(t, true, out["success"])
}

func TestCart_MissingID(t *testing.T) {
	h := newStorefront()
	out := call(t, "c1", h.AddToCart, http.MethodPost, "/api/cart", `{"name":"nameless"}`)
	assert.Equal(t, http.StatusBadRequest, out["_status"])
}

func TestWishlist_ToggleTwiceRestores(t *testing.T) {
	h := newStorefront()
	item := `{"id":"w1","name":"Latte"}`

	out := call(t, "c1", h.ToggleWishlist, http.MethodPost, "/api/wishlist/toggle", item)
	assert.Equal(t, true, out["present"])
	assert.EqualValues(t, 1, out["count"])
	assert.Equal(t, "Latte added to wishlist", out["notice"])

	out = call(t, "c1", h.WishlistPresence, http.MethodGet, "/api/wishlist/w1", "", "id", "w1")
	assert.Equal(t, true, out["present"])

	out = call(t, "c1", h.ToggleWishlist, http.MethodPost, "/api/wishlist/toggle", item)
	assert.Equal(t, false, out["present"])
	assert.Equal(t, "Latte removed from wishlist", out["notice"])

	out = call(t, "c1", h.GetWishlist, http.MethodGet, "/api/wishlist", "")
	assert.EqualValues(t, 0, out["count"])
}

func TestSession_LoginLogout(t *testing.T) {
	h := newStorefront()

	out := call(t, "c1", h.Login, http.MethodPost, "/api/session", `{"username":"admin"}`)
	require.Equal(t, http.StatusOK, out["_status"])
	assert.Nil(t, out["token"])
	user := out["data"].(map[string]any)
	assert.Equal(t, true, user["isAdmin"])

	out = call(t, "c1", h.CurrentSession, http.MethodGet, "/api/session", "")
	assert.Equal(t, true, out["loggedIn"])
	assert.Equal(t, true, out["isAdmin"])

	out = call(t, "c1", h.Logout, http.MethodDelete, "/api/session", "")
	assert.Equal(t, "login.html", out["redirect"])

	out = call(t, "c1", h.CurrentSession, http.MethodGet, "/api/session", "")
	assert.Nil(t, out["data"])
	assert.Equal(t, false, out["loggedIn"])
	assert.Equal(t, false, out["isAdmin"])
}

func TestSession_LoginIssuesToken(t *testing.T) {
	secret := []byte("test-secret")
	h := newStorefront()
	h.JWTSecret = secret
	h.TokenTTL = time.Minute

	out := call(t, "c1", h.Login, http.MethodPost, "/api/session", `{"username":"baker","isAdmin":true}`)
	raw, ok := out["token"].(string)
	require.True(t, ok)
	claims, err := tokens.AccessClaimsFromToken(raw, secret)
	require.NoError(t, err)
	assert.Equal(t, tokens.RoleAdmin, claims.Role)
	assert.Equal(t, "baker", claims.Subject)

	out = call(t, "c2", h.Login, http.MethodPost, "/api/session", `{"username":"guest"}`)
	claims, err = tokens.AccessClaimsFromToken(out["token"].(string), secret)
	require.NoError(t, err)
	assert.Equal(t, tokens.RoleUser, claims.Role)
}

func TestSession_LoginRequiresUsername(t *testing.T) {
	h := newStorefront()
	out := call(t, "c1", h.Login, http.MethodPost, "/api/session", `{"username":""}`)
	assert.Equal(t, http.StatusBadRequest, out["_status"])
}

func TestAdminUsers(t *testing.T) {
	h := newStorefront()

	out := call(t, "c1", h.ListAdminUsers, http.MethodGet, "/api/admin-users", "")
	admins := out["data"].([]any)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin", admins[0].(map[string]any)["username"])
	assert.NotContains(t, admins[0].(map[string]any), "loginTime")

	out = call(t, "c1", h.AddAdminUser, http.MethodPost, "/api/admin-users", `{"username":"manager"}`)
	require.Equal(t, http.StatusOK, out["_status"])
	assert.Len(t, out["data"], 2)
}
