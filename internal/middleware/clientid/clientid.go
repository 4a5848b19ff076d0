// Package clientid tells storefront clients apart so each one gets its own
// cart, wishlist and session.
package clientid

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweethome/internal/logging"
)

const (
	Header     = "X-Client-ID"
	CookieName = "client_id"

	contextKey = "client_id"
	maxLen     = 128
	cookieTTL  = 365 * 24 * time.Hour
)

// Middleware resolves the client id from the X-Client-ID header or the
// client_id cookie. A client presenting neither is issued a fresh id.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(Header)
		if id == "" {
			if ck, err := c.Cookie(CookieName); err == nil {
				id = ck.Value
			}
		}

		if len(id) > maxLen {
			logging.FromContext(c.Request().Context()).Warn("client_id_rejected", "status", 400, "reason", "too long")
			return echo.NewHTTPError(http.StatusBadRequest, "invalid client id")
		}
		if id == "" {
			id = uuid.NewString()
			c.SetCookie(&http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(cookieTTL),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Set(contextKey, id)
		l := logging.FromContext(c.Request().Context()).With("client_id", id)
		c.SetRequest(c.Request().WithContext(logging.IntoContext(c.Request().Context(), l)))
		return next(c)
	}
}

func FromContext(c echo.Context) string {
	id, _ := c.Get(contextKey).(string)
	return id
}
