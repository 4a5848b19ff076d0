package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/models"
	"github.com/Skotchmaster/sweethome/internal/service"
	"github.com/Skotchmaster/sweethome/internal/util"
)

type OrderHandler struct {
	Svc *service.OrderService
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders := h.Svc.ListOrders(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": orders})
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_order")

	var order models.Order
	if err := decodeBody(c, &order); err != nil {
		l.Warn("create_order_failed", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	id, err := h.Svc.CreateOrder(ctx, order)
	if err != nil {
		status := statusFor(err)
		l.Error("create_order_failed", "status", status, "error", err)
		return fail(c, status, err.Error())
	}

	l.Info("order_created", "orderID", id)
	// echo the id as submitted so numeric ids stay numeric
	return c.JSON(http.StatusOK, echo.Map{"success": true, "orderId": order["orderID"]})
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("orderId")
	l := logging.FromContext(ctx).With("handler", "update_order_status", "orderID", orderID)

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_failed", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.Svc.UpdateStatus(ctx, orderID, req.Status); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("update_status_failed", "status", 404, "reason", "order not found")
			return fail(c, http.StatusNotFound, "Order not found")
		}
		status := statusFor(err)
		l.Error("update_status_failed", "status", status, "error", err)
		return fail(c, status, err.Error())
	}

	l.Info("order_status_updated", "new_status", req.Status)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *OrderHandler) SearchOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search_orders")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, orders, err := h.Svc.SearchOrders(ctx, c.QueryParam("q"), from, size)
	if err != nil {
		status := statusFor(err)
		l.Warn("search_orders_failed", "status", status, "error", err)
		return fail(c, status, err.Error())
	}
	if orders == nil {
		orders = []map[string]any{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    orders,
		"total":   total,
		"page":    from/size + 1,
		"size":    size,
	})
}
