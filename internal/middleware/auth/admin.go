package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/tokens"
)

const AccessCookie = "accessToken"

type AdminMiddleware struct {
	JWTSecret []byte
}

// RequireAdmin lets a request through only with an admin access token,
// read from the accessToken cookie or a Bearer header. Without a configured
// secret every request passes.
func (m *AdminMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if len(m.JWTSecret) == 0 {
			return next(c)
		}
		l := logging.FromContext(c.Request().Context()).With("middleware", "require_admin")

		raw := bearer(c)
		if raw == "" {
			l.Warn("admin_rejected", "status", 401, "reason", "missing access token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			l.Warn("admin_rejected", "status", 401, "reason", "invalid access token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		if claims.Role != tokens.RoleAdmin {
			l.Warn("admin_rejected", "status", 403, "user", claims.Subject)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}

		c.Set("username", claims.Subject)
		c.Set("role", claims.Role)
		return next(c)
	}
}

func bearer(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}
