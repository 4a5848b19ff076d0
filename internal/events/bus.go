// Package events carries typed change notifications from the storefront
// managers to whoever renders counts and notices.
package events

import (
	"fmt"

	"github.com/asaskevich/EventBus"
)

type Kind string

const (
	CartItemAdded   Kind = "cart.item_added"
	CartItemRemoved Kind = "cart.item_removed"
	CartCleared     Kind = "cart.cleared"
	WishlistToggled Kind = "wishlist.toggled"
	SessionStarted  Kind = "session.started"
	SessionEnded    Kind = "session.ended"
)

var Kinds = []Kind{CartItemAdded, CartItemRemoved, CartCleared, WishlistToggled, SessionStarted, SessionEnded}

type Event struct {
	Kind   Kind   `json:"kind"`
	Scope  string `json:"scope,omitempty"`
	ItemID string `json:"item_id,omitempty"`
	// Present is the wishlist membership of ItemID after a toggle.
	Present bool   `json:"present"`
	Count   int    `json:"count"`
	Notice  string `json:"notice,omitempty"`
}

type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) Subscribe(kind Kind, fn func(Event)) error {
	if err := b.bus.Subscribe(string(kind), fn); err != nil {
		return fmt.Errorf("subscribe %s: %w", kind, err)
	}
	return nil
}

// Publish delivers e synchronously to every subscriber of e.Kind.
// A nil bus drops the event.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.bus.Publish(string(e.Kind), e)
}
