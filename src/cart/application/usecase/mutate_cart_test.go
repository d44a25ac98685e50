package usecase

import (
	"context"
	"sync"
	"testing"

	"carrito/src/cart/domain/entity"
	"carrito/src/cart/infrastructure/auth"
	"carrito/src/cart/infrastructure/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMutateFixture() (*MutateCartUseCase, *store.CartStore, *fakeGateway) {
	gateway := newFakeGateway()
	creds := auth.StaticCredentialProvider{Bearer: "tok", Authenticated: true}
	cartStore := store.NewCartStore(nil, creds)
	uc := NewMutateCartUseCase(cartStore, gateway, creds)
	return uc, cartStore, gateway
}

func TestMutateCartAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("adding twice merges into one line", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()
		item := gateway.seedProduct("a", 100, 3)

		require.NoError(t, uc.Add(ctx, item, 1))
		require.NoError(t, uc.Add(ctx, item, 1))

		cart := cartStore.Get()
		require.Equal(t, 1, cart.TotalItems())
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.Equal(t, 2, gateway.serverCart().Items[0].Quantity)
	})

	t.Run("optimistic change is visible while the call is in flight", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()
		item := gateway.seedProduct("a", 100, 3)

		release := make(chan struct{})
		started := make(chan struct{})
		gateway.blockOn = release
		gateway.started = started

		done := make(chan error, 1)
		go func() { done <- uc.Add(ctx, item, 2) }()

		<-started
		cart := cartStore.Get()
		require.Equal(t, 1, cart.TotalItems(), "local view must update before the network resolves")
		assert.Equal(t, 2, cart.Items[0].Quantity)

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, entity.CartStatusIdle, cartStore.Get().Status)
	})

	t.Run("increment beyond stock is rejected locally without a network call", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()
		item := gateway.seedProduct("a", 100, 3)
		require.NoError(t, uc.Add(ctx, item, 3))
		callsBefore := len(gateway.callLog())
		before := cartStore.Get()

		err := uc.Add(ctx, item, 1)
		assert.ErrorIs(t, err, entity.ErrInsufficientStock)
		assert.Equal(t, before.Items, cartStore.Get().Items, "cart must be unchanged")
		assert.Len(t, gateway.callLog(), callsBefore, "no gateway call must be issued")
	})
}

func TestMutateCartRollback(t *testing.T) {
	ctx := context.Background()

	t.Run("failed mutation restores the exact prior cart", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()
		itemA := gateway.seedProduct("a", 100, 5)
		itemB := gateway.seedProduct("b", 50, 5)
		require.NoError(t, uc.Add(ctx, itemA, 2))
		before := cartStore.Get()

		gateway.failNext = entity.ErrNetwork
		err := uc.Add(ctx, itemB, 1)

		assert.ErrorIs(t, err, entity.ErrNetwork)
		after := cartStore.Get()
		assert.Equal(t, before.Items, after.Items, "rollback must restore the snapshot before the mutation")
		assert.Equal(t, entity.CartStatusError, after.Status)
	})

	t.Run("add then remove restores the prior snapshot exactly", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()
		itemA := gateway.seedProduct("a", 100, 5)
		itemB := gateway.seedProduct("b", 50, 5)
		require.NoError(t, uc.Add(ctx, itemA, 2))
		before := cartStore.Get()

		require.NoError(t, uc.Add(ctx, itemB, 1))
		require.NoError(t, uc.Remove(ctx, "b"))

		assert.Equal(t, before.Items, cartStore.Get().Items)
	})

	t.Run("server side stock conflict rolls back and forces a fresh replica", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()
		item := gateway.seedProduct("a", 100, 5)
		require.NoError(t, uc.Add(ctx, item, 2))

		// El stock bajó del lado del servidor mientras el usuario navegaba
		gateway.setServerStock("a", 2)
		gateway.failNext = entity.ErrInsufficientStock

		err := uc.Increment(ctx, "a")
		assert.ErrorIs(t, err, entity.ErrInsufficientStock)

		// La vista local refleja el stock real del servidor
		cart := cartStore.Get()
		require.Equal(t, 1, cart.TotalItems())
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.Equal(t, 2, cart.Items[0].AvailableStock)
		assert.Contains(t, gateway.callLog(), "fetch")
	})
}

func TestMutateCartNoOps(t *testing.T) {
	ctx := context.Background()

	t.Run("removing a missing product completes without error or network call", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()

		require.NoError(t, uc.Remove(ctx, "zzz"))
		assert.True(t, cartStore.Get().IsEmpty())
		assert.Empty(t, gateway.callLog())
	})

	t.Run("incrementing a missing product is a no-op", func(t *testing.T) {
		uc, _, gateway := newMutateFixture()
		require.NoError(t, uc.Increment(ctx, "zzz"))
		assert.Empty(t, gateway.callLog())
	})
}

func TestMutateCartSerialization(t *testing.T) {
	ctx := context.Background()

	t.Run("rapid increments never overwrite each other", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()
		item := gateway.seedProduct("a", 100, 5)
		require.NoError(t, uc.Add(ctx, item, 1))

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, uc.Increment(ctx, "a"))
			}()
		}
		wg.Wait()

		// Dos +1 serializados: efecto neto +2, nunca uno pisando al otro
		assert.Equal(t, 3, cartStore.Get().Items[0].Quantity)
		assert.Equal(t, 3, gateway.serverCart().Items[0].Quantity)
	})

	t.Run("decrement to zero removes locally and remotely", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()
		item := gateway.seedProduct("a", 100, 5)
		require.NoError(t, uc.Add(ctx, item, 1))

		require.NoError(t, uc.Decrement(ctx, "a"))

		assert.True(t, cartStore.Get().IsEmpty())
		assert.True(t, gateway.serverCart().IsEmpty())
		assert.Contains(t, gateway.callLog(), "remove a")
	})
}

func TestMutateCartAnonymousFallback(t *testing.T) {
	ctx := context.Background()

	newAnonymousFixture := func() (*MutateCartUseCase, *store.CartStore, *memorySlot, *fakeGateway) {
		gateway := newFakeGateway()
		creds := auth.StaticCredentialProvider{}
		slot := &memorySlot{}
		cartStore := store.NewCartStore(slot, creds)
		uc := NewMutateCartUseCase(cartStore, gateway, creds)
		return uc, cartStore, slot, gateway
	}

	t.Run("add without session keeps the item locally and persists it", func(t *testing.T) {
		uc, cartStore, slot, gateway := newAnonymousFixture()
		item := gateway.seedProduct("a", 100, 5)

		require.NoError(t, uc.Add(ctx, item, 2))

		cart := cartStore.Get()
		require.Equal(t, 1, cart.TotalItems(), "fallback mode must keep the optimistic change")
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.Equal(t, entity.CartStatusIdle, cart.Status)
		assert.Empty(t, gateway.callLog(), "no remote dispatch without a session")

		persisted, err := slot.Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, persisted, "write-through must persist the visitor's cart")
		assert.Equal(t, 2, persisted.Items[0].Quantity)
	})

	t.Run("visitor cart survives a reload via the slot", func(t *testing.T) {
		uc, _, slot, gateway := newAnonymousFixture()
		item := gateway.seedProduct("a", 100, 5)
		require.NoError(t, uc.Add(ctx, item, 1))
		require.NoError(t, uc.Increment(ctx, "a"))

		// Proceso nuevo, mismo slot
		reloaded := store.NewCartStore(slot, auth.StaticCredentialProvider{})
		require.NoError(t, reloaded.HydrateFromSlot(ctx))
		assert.Equal(t, 2, reloaded.Get().Items[0].Quantity)
	})

	t.Run("local stock limit still applies without session", func(t *testing.T) {
		uc, _, _, gateway := newAnonymousFixture()
		item := gateway.seedProduct("a", 100, 2)
		require.NoError(t, uc.Add(ctx, item, 2))

		err := uc.Add(ctx, item, 1)
		assert.ErrorIs(t, err, entity.ErrInsufficientStock)
	})

	t.Run("cancel without session empties cart and slot locally", func(t *testing.T) {
		uc, cartStore, slot, gateway := newAnonymousFixture()
		cancelUC := NewCancelCartUseCase(cartStore, gateway, auth.StaticCredentialProvider{})
		item := gateway.seedProduct("a", 100, 5)
		require.NoError(t, uc.Add(ctx, item, 2))

		require.NoError(t, cancelUC.Execute(ctx))

		assert.True(t, cartStore.Get().IsEmpty())
		assert.Empty(t, gateway.callLog(), "no remote cancel without a session")
		persisted, err := slot.Load(ctx)
		require.NoError(t, err)
		assert.Nil(t, persisted)
	})
}

func TestMutateCartReconciliation(t *testing.T) {
	ctx := context.Background()

	t.Run("server truth wins over the optimistic guess", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()
		item := gateway.seedProduct("a", 100, 5)
		require.NoError(t, uc.Add(ctx, item, 1))

		// El precio cambió del lado del servidor
		gateway.mu.Lock()
		gateway.server.Items[0].UnitPrice = gateway.server.Items[0].UnitPrice.Add(gateway.server.Items[0].UnitPrice)
		gateway.mu.Unlock()

		require.NoError(t, uc.Increment(ctx, "a"))
		assert.Equal(t, "200", cartStore.Get().Items[0].UnitPrice.String())
	})

	t.Run("plain ack triggers a reconciling fetch", func(t *testing.T) {
		uc, cartStore, gateway := newMutateFixture()
		gateway.inline = false
		item := gateway.seedProduct("a", 100, 5)

		require.NoError(t, uc.Add(ctx, item, 2))

		assert.Contains(t, gateway.callLog(), "fetch")
		assert.Equal(t, 2, cartStore.Get().Items[0].Quantity)
	})
}
