package wishlist

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweethome/internal/events"
	"github.com/Skotchmaster/sweethome/internal/models"
	"github.com/Skotchmaster/sweethome/internal/store"
)

var pie = models.Product{ID: "pie-7", Name: "Apple Pie", Price: 8, Desc: "warm", Img: "pie.jpg"}

func newManager(t *testing.T) (*Manager, *[]events.Event) {
	t.Helper()
	bus := events.NewBus()
	var seen []events.Event
	require.NoError(t, bus.Subscribe(events.WishlistToggled, func(e events.Event) { seen = append(seen, e) }))
	return &Manager{Store: store.NewMemoryStore(), Bus: bus}, &seen
}

func TestToggle_TwiceRestoresMembership(t *testing.T) {
	ctx := context.Background()
	m, seen := newManager(t)
	other := models.Product{ID: "tea", Name: "Tea"}
	_, err := m.Toggle(ctx, other)
	require.NoError(t, err)
	before := m.Items(ctx)

	e, err := m.Toggle(ctx, pie)
	require.NoError(t, err)
	assert.True(t, e.Present)
	assert.Equal(t, "Apple Pie added to wishlist", e.Notice)
	assert.True(t, m.IsPresent(ctx, pie.ID))
	assert.Equal(t, 2, m.Count(ctx))

	e, err = m.Toggle(ctx, pie)
	require.NoError(t, err)
	assert.False(t, e.Present)
	assert.Equal(t, "Apple Pie removed from wishlist", e.Notice)
	assert.False(t, m.IsPresent(ctx, pie.ID))

	assert.Equal(t, before, m.Items(ctx))
	require.Len(t, *seen, 3)
	assert.Equal(t, pie.ID, (*seen)[2].ItemID)
}

func TestToggle_StoresFullRecord(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, err := m.Toggle(ctx, pie)
	require.NoError(t, err)

	items := m.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, models.WishlistItem(pie), items[0])
}

func TestItems_MalformedAndDuplicates(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	require.NoError(t, m.Store.Set(ctx, store.KeyWishlist, "nope"))
	assert.Empty(t, m.Items(ctx))
	assert.False(t, m.IsPresent(ctx, "x"))

	require.NoError(t, m.Store.Set(ctx, store.KeyWishlist, `[{"id":"a"},{"id":"a"},{"id":"b"}]`))
	assert.Equal(t, 2, m.Count(ctx))
}

func TestToggle_RequiresID(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Toggle(context.Background(), models.Product{Name: "x"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestToggle_ConcurrentTogglesAreAllKept(t *testing.T) {
	ctx := context.Background()
	scoped := store.Scoped(store.NewMemoryStore(), "c1")
	locks := &store.Locks{}

	const toggles = 24
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := &Manager{Store: scoped, Scope: "c1", Locks: locks}
			_, err := m.Toggle(ctx, models.Product{ID: fmt.Sprintf("w%d", i), Name: "Scone"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	m := &Manager{Store: scoped, Scope: "c1", Locks: locks}
	assert.Equal(t, toggles, m.Count(ctx))
}
