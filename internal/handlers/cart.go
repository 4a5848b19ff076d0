package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweethome/internal/events"
	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/models"
)

func (h *StorefrontHandler) GetCart(c echo.Context) error {
	m := h.cart(c)
	items := m.Items(c.Request().Context())
	count := 0
	for _, it := range items {
		count += it.Qty
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "count": count})
}

func (h *StorefrontHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add_to_cart")

	var p models.Product
	if err := c.Bind(&p); err != nil {
		l.Warn("add_to_cart_failed", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	e, err := h.cart(c).AddItem(ctx, p)
	return h.cartResult(c, l, "add_to_cart_failed", e, err)
}

func (h *StorefrontHandler) DeleteOneFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_one_from_cart")
	e, err := h.cart(c).RemoveOne(ctx, c.Param("id"))
	return h.cartResult(c, l, "delete_from_cart_failed", e, err)
}

func (h *StorefrontHandler) DeleteAllFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_all_from_cart")
	e, err := h.cart(c).Remove(ctx, c.Param("id"))
	return h.cartResult(c, l, "delete_from_cart_failed", e, err)
}

func (h *StorefrontHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clear_cart")
	e, err := h.cart(c).Clear(ctx)
	return h.cartResult(c, l, "clear_cart_failed", e, err)
}

func (h *StorefrontHandler) cartResult(c echo.Context, l *slog.Logger, event string, e events.Event, err error) error {
	if err != nil {
		status := statusFor(err)
		l.Warn(event, "status", status, "error", err)
		return fail(c, status, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": e.Count, "notice": e.Notice})
}
