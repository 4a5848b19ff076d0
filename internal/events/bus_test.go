package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToKindSubscribers(t *testing.T) {
	b := NewBus()

	var cart, wish []Event
	require.NoError(t, b.Subscribe(CartItemAdded, func(e Event) { cart = append(cart, e) }))
	require.NoError(t, b.Subscribe(WishlistToggled, func(e Event) { wish = append(wish, e) }))

	b.Publish(Event{Kind: CartItemAdded, ItemID: "p1", Count: 1})
	b.Publish(Event{Kind: CartItemAdded, ItemID: "p1", Count: 2})

	require.Len(t, cart, 2)
	assert.Equal(t, 2, cart[1].Count)
	assert.Empty(t, wish)
}

func TestBus_NilPublishIsNoop(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() { b.Publish(Event{Kind: SessionEnded}) })
}
