package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweethome/internal/cart"
	"github.com/Skotchmaster/sweethome/internal/service"
	"github.com/Skotchmaster/sweethome/internal/session"
	"github.com/Skotchmaster/sweethome/internal/wishlist"
)

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// statusFor maps domain sentinels onto HTTP codes; anything unknown is a
// failed write.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, cart.ErrValidation),
		errors.Is(err, wishlist.ErrValidation),
		errors.Is(err, session.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound), errors.Is(err, cart.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSearchUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON body keeping numbers as written, so free-form
// records round-trip without float conversion.
func decodeBody(c echo.Context, v any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func CreateCookie(name, value, path string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
