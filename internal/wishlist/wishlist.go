// Package wishlist keeps one shopper's wishlist as a set keyed by product id.
package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/sweethome/internal/events"
	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/models"
	"github.com/Skotchmaster/sweethome/internal/store"
)

var ErrValidation = errors.New("validation")

type Manager struct {
	Store store.Store
	Bus   *events.Bus
	Scope string
	Locks *store.Locks
}

func (m *Manager) Items(ctx context.Context) []models.WishlistItem {
	var raw []models.WishlistItem
	if _, err := store.LoadJSON(ctx, m.Store, store.KeyWishlist, &raw); err != nil {
		logging.FromContext(ctx).Warn("wishlist_load_failed", "scope", m.Scope, "error", err)
		return []models.WishlistItem{}
	}

	// Collapse duplicates left by older writers so membership stays a set.
	seen := make(map[string]struct{}, len(raw))
	items := make([]models.WishlistItem, 0, len(raw))
	for _, it := range raw {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}
	return items
}

func (m *Manager) IsPresent(ctx context.Context, id string) bool {
	return indexOf(m.Items(ctx), id) >= 0
}

func (m *Manager) Count(ctx context.Context) int {
	return len(m.Items(ctx))
}

// Toggle removes p when it is in the wishlist and adds it otherwise.
// The published event names the id and its new membership so every view
// bound to that id can re-render.
func (m *Manager) Toggle(ctx context.Context, p models.Product) (events.Event, error) {
	if p.ID == "" {
		return events.Event{}, fmt.Errorf("product id required: %w", ErrValidation)
	}

	defer m.Locks.Lock(store.ScopedKey(m.Scope, store.KeyWishlist))()

	items := m.Items(ctx)
	var notice string
	present := false
	if idx := indexOf(items, p.ID); idx >= 0 {
		items = append(items[:idx], items[idx+1:]...)
		notice = fmt.Sprintf("%s removed from wishlist", p.Name)
	} else {
		items = append(items, models.WishlistItem(p))
		notice = fmt.Sprintf("%s added to wishlist", p.Name)
		present = true
	}

	if err := store.SaveJSON(ctx, m.Store, store.KeyWishlist, items); err != nil {
		return events.Event{}, err
	}

	e := events.Event{
		Kind:    events.WishlistToggled,
		Scope:   m.Scope,
		ItemID:  p.ID,
		Present: present,
		Count:   len(items),
		Notice:  notice,
	}
	m.Bus.Publish(e)
	return e, nil
}

func indexOf(items []models.WishlistItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
