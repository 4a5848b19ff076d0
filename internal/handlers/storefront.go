package handlers

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweethome/internal/cart"
	"github.com/Skotchmaster/sweethome/internal/events"
	"github.com/Skotchmaster/sweethome/internal/middleware/clientid"
	"github.com/Skotchmaster/sweethome/internal/session"
	"github.com/Skotchmaster/sweethome/internal/store"
	"github.com/Skotchmaster/sweethome/internal/wishlist"
)

const defaultTokenTTL = time.Hour

// StorefrontHandler serves the per-client collections: cart, wishlist and
// session. Every request works on a store view scoped to its client id.
type StorefrontHandler struct {
	Store store.Store
	Bus   *events.Bus
	// JWTSecret enables admin access tokens on login when non-empty.
	JWTSecret []byte
	TokenTTL  time.Duration
	Now       func() time.Time
	// Locks serializes read-modify-write per client collection.
	Locks *store.Locks
}

func (h *StorefrontHandler) scoped(c echo.Context) (store.Store, string) {
	id := clientid.FromContext(c)
	return store.Scoped(h.Store, id), id
}

func (h *StorefrontHandler) cart(c echo.Context) *cart.Manager {
	s, id := h.scoped(c)
	return &cart.Manager{Store: s, Bus: h.Bus, Scope: id, Locks: h.Locks}
}

func (h *StorefrontHandler) wishlist(c echo.Context) *wishlist.Manager {
	s, id := h.scoped(c)
	return &wishlist.Manager{Store: s, Bus: h.Bus, Scope: id, Locks: h.Locks}
}

func (h *StorefrontHandler) session(c echo.Context) *session.Manager {
	s, id := h.scoped(c)
	return &session.Manager{Store: s, Bus: h.Bus, Scope: id, Now: h.Now, Locks: h.Locks}
}

func (h *StorefrontHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *StorefrontHandler) tokenTTL() time.Duration {
	if h.TokenTTL > 0 {
		return h.TokenTTL
	}
	return defaultTokenTTL
}
