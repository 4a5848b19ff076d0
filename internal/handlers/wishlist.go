package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/models"
)

func (h *StorefrontHandler) GetWishlist(c echo.Context) error {
	items := h.wishlist(c).Items(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "count": len(items)})
}

func (h *StorefrontHandler) ToggleWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "toggle_wishlist")

	var p models.Product
	if err := c.Bind(&p); err != nil {
		l.Warn("toggle_wishlist_failed", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	e, err := h.wishlist(c).Toggle(ctx, p)
	if err != nil {
		status := statusFor(err)
		l.Warn("toggle_wishlist_failed", "status", status, "error", err)
		return fail(c, status, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"present": e.Present,
		"count":   e.Count,
		"notice":  e.Notice,
	})
}

func (h *StorefrontHandler) WishlistPresence(c echo.Context) error {
	present := h.wishlist(c).IsPresent(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "present": present})
}
