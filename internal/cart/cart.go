// Package cart keeps one shopper's cart in a local store.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/sweethome/internal/events"
	"github.com/Skotchmaster/sweethome/internal/logging"
	"github.com/Skotchmaster/sweethome/internal/models"
	"github.com/Skotchmaster/sweethome/internal/store"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

type Manager struct {
	Store store.Store
	Bus   *events.Bus
	Scope string
	// Locks serializes changes per client; nil uses the process-wide set.
	Locks *store.Locks
}

// Items returns the stored cart. Unreadable or malformed data reads as an
// empty cart, and entries with a quantity below one are skipped.
func (m *Manager) Items(ctx context.Context) []models.CartItem {
	var raw []models.CartItem
	if _, err := store.LoadJSON(ctx, m.Store, store.KeyCart, &raw); err != nil {
		logging.FromContext(ctx).Warn("cart_load_failed", "scope", m.Scope, "error", err)
		return []models.CartItem{}
	}

	items := make([]models.CartItem, 0, len(raw))
	for _, it := range raw {
		if it.Qty >= 1 {
			items = append(items, it)
		}
	}
	return items
}

func (m *Manager) Count(ctx context.Context) int {
	return countOf(m.Items(ctx))
}

// AddItem merges p into the cart: a repeat add bumps the quantity of the
// existing line instead of creating a second one.
func (m *Manager) AddItem(ctx context.Context, p models.Product) (events.Event, error) {
	if p.ID == "" {
		return events.Event{}, fmt.Errorf("product id required: %w", ErrValidation)
	}

	defer m.Locks.Lock(store.ScopedKey(m.Scope, store.KeyCart))()

	items := m.Items(ctx)
	merged := false
	for i := range items {
		if items[i].ID == p.ID {
			items[i].Qty++
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, models.CartItem{Product: p, Qty: 1})
	}

	if err := store.SaveJSON(ctx, m.Store, store.KeyCart, items); err != nil {
		return events.Event{}, err
	}

	e := events.Event{
		Kind:   events.CartItemAdded,
		Scope:  m.Scope,
		ItemID: p.ID,
		Count:  countOf(items),
		Notice: fmt.Sprintf("%s added to cart!", p.Name),
	}
	m.Bus.Publish(e)
	return e, nil
}

// RemoveOne decrements the line for id and drops it when it reaches zero.
func (m *Manager) RemoveOne(ctx context.Context, id string) (events.Event, error) {
	defer m.Locks.Lock(store.ScopedKey(m.Scope, store.KeyCart))()

	items := m.Items(ctx)
	idx := indexOf(items, id)
	if idx < 0 {
		return events.Event{}, fmt.Errorf("cart item %q: %w", id, ErrNotFound)
	}

	name := items[idx].Name
	if items[idx].Qty > 1 {
		items[idx].Qty--
	} else {
		items = append(items[:idx], items[idx+1:]...)
	}
	return m.saveRemoval(ctx, items, id, name)
}

// Remove drops the whole line for id.
func (m *Manager) Remove(ctx context.Context, id string) (events.Event, error) {
	defer m.Locks.Lock(store.ScopedKey(m.Scope, store.KeyCart))()

	items := m.Items(ctx)
	idx := indexOf(items, id)
	if idx < 0 {
		return events.Event{}, fmt.Errorf("cart item %q: %w", id, ErrNotFound)
	}

	name := items[idx].Name
	items = append(items[:idx], items[idx+1:]...)
	return m.saveRemoval(ctx, items, id, name)
}

func (m *Manager) Clear(ctx context.Context) (events.Event, error) {
	defer m.Locks.Lock(store.ScopedKey(m.Scope, store.KeyCart))()

	if err := m.Store.Delete(ctx, store.KeyCart); err != nil {
		return events.Event{}, err
	}
	e := events.Event{Kind: events.CartCleared, Scope: m.Scope, Notice: "Cart cleared"}
	m.Bus.Publish(e)
	return e, nil
}

func (m *Manager) saveRemoval(ctx context.Context, items []models.CartItem, id, name string) (events.Event, error) {
	if err := store.SaveJSON(ctx, m.Store, store.KeyCart, items); err != nil {
		return events.Event{}, err
	}
	e := events.Event{
		Kind:   events.CartItemRemoved,
		Scope:  m.Scope,
		ItemID: id,
		Count:  countOf(items),
		Notice: fmt.Sprintf("%s removed from cart", name),
	}
	m.Bus.Publish(e)
	return e, nil
}

func indexOf(items []models.CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func countOf(items []models.CartItem) int {
	total := 0
	for _, it := range items {
		total += it.Qty
	}
	return total
}
