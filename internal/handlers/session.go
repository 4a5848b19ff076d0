package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/middleware/auth"
	"github.com/Skotchmaster/sweethome/internal/tokens"
)

func (h *StorefrontHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "login")

	var req struct {
		Username string `json:"username"`
		IsAdmin  bool   `json:"isAdmin"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	user, err := h.session(c).SetCurrentUser(ctx, req.Username, req.IsAdmin)
	if err != nil {
		status := statusFor(err)
		l.Warn("login_failed", "status", status, "error", err)
		return fail(c, status, err.Error())
	}

	resp := echo.Map{"success": true, "data": user}
	if len(h.JWTSecret) > 0 {
		role := tokens.RoleUser
		if user.IsAdmin {
			role = tokens.RoleAdmin
		}
		exp := h.now().Add(h.tokenTTL())
		token, err := tokens.CreateAccessToken(h.JWTSecret, user.Username, role, exp)
		if err != nil {
			l.Error("login_failed", "status", 500, "reason", "token", "error", err)
			return fail(c, http.StatusInternalServerError, "could not issue token")
		}
		c.SetCookie(CreateCookie(auth.AccessCookie, token, "/", exp))
		resp["token"] = token
	}

	l.Info("login_succeeded", "user", user.Username, "is_admin", user.IsAdmin)
	return c.JSON(http.StatusOK, resp)
}

func (h *StorefrontHandler) CurrentSession(c echo.Context) error {
	ctx := c.Request().Context()
	m := h.session(c)
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"data":     m.CurrentUser(ctx),
		"loggedIn": m.IsLoggedIn(ctx),
		"isAdmin":  m.IsAdmin(ctx),
	})
}

func (h *StorefrontHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "logout")

	redirect, err := h.session(c).Logout(ctx)
	if err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	if len(h.JWTSecret) > 0 {
		c.SetCookie(CreateCookie(auth.AccessCookie, "", "/", time.Unix(0, 0)))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "redirect": redirect})
}

func (h *StorefrontHandler) ListAdminUsers(c echo.Context) error {
	admins := h.session(c).AdminUsers(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": admins})
}

func (h *StorefrontHandler) AddAdminUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add_admin_user")

	var req struct {
		Username string `json:"username"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_admin_failed", "status", 400, "reason", "invalid body", "error", err)
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	m := h.session(c)
	if err := m.AddAdminUser(ctx, req.Username); err != nil {
		status := statusFor(err)
		l.Warn("add_admin_failed", "status", status, "error", err)
		return fail(c, status, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": m.AdminUsers(ctx)})
}
