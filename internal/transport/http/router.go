package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweethome/internal/handlers"
	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/metrics"
	"github.com/Skotchmaster/sweethome/internal/middleware/auth"
	"github.com/Skotchmaster/sweethome/internal/middleware/clientid"
	"github.com/Skotchmaster/sweethome/internal/realtime"
)

type Deps struct {
	DB                *gorm.DB
	OrderHandler      *handlers.OrderHandler
	ChatHandler       *handlers.ChatHandler
	StorefrontHandler *handlers.StorefrontHandler
	Admin             *auth.AdminMiddleware
	// CSRF guards the cookie-authenticated routes when set.
	CSRF echo.MiddlewareFunc
	Live *realtime.Hub
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	guard := []echo.MiddlewareFunc{}
	if d.CSRF != nil {
		guard = append(guard, d.CSRF)
	}

	api := e.Group("/api")

	api.GET("/orders", d.OrderHandler.ListOrders)
	api.POST("/orders", d.OrderHandler.CreateOrder)
	api.GET("/orders/search", d.OrderHandler.SearchOrders)
	api.PUT("/orders/:orderId/status", d.OrderHandler.UpdateStatus, append(guard, d.Admin.RequireAdmin)...)

	api.GET("/chat-messages", d.ChatHandler.ListMessages)
	api.POST("/chat-messages", d.ChatHandler.PostMessage)

	if d.Live != nil {
		api.GET("/live", d.Live.Serve)
	}

	sf := d.StorefrontHandler

	cart := api.Group("/cart", clientid.Middleware)
	cart.GET("", sf.GetCart)
	cart.POST("", sf.AddToCart)
	cart.DELETE("", sf.ClearCart)
	cart.DELETE("/:id", sf.DeleteOneFromCart)
	cart.DELETE("/:id/all", sf.DeleteAllFromCart)

	wishlist := api.Group("/wishlist", clientid.Middleware)
	wishlist.GET("", sf.GetWishlist)
	wishlist.POST("/toggle", sf.ToggleWishlist)
	wishlist.GET("/:id", sf.WishlistPresence)

	sess := api.Group("/session", append(guard, clientid.Middleware)...)
	sess.GET("", sf.CurrentSession)
	sess.POST("", sf.Login)
	sess.DELETE("", sf.Logout)

	admins := api.Group("/admin-users", clientid.Middleware)
	admins.GET("", sf.ListAdminUsers)
	admins.POST("", sf.AddAdminUser)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := d.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		logging.FromContext(c.Request().Context()).Warn("readiness_failed", "error", err)
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}

// ErrorHandler answers every unhandled error with the {success, error}
// envelope used by the API handlers.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"success": false, "error": msg})
}
