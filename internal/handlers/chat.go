package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/models"
	"github.com/Skotchmaster/sweethome/internal/service"
)

type ChatHandler struct {
	Svc *service.ChatService
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	msgs := h.Svc.ListMessages(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": msgs})
}

func (h *ChatHandler) PostMessage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "post_chat_message")

	var msg models.ChatMessage
	if err := decodeBody(c, &msg); err != nil {
		l.Warn("post_message_failed", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	if _, err := h.Svc.PostMessage(ctx, msg); err != nil {
		status := statusFor(err)
		l.Error("post_message_failed", "status", status, "error", err)
		return fail(c, status, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "messageId": msg["id"]})
}
