package usecase

import (
	"context"
	"testing"

	"carrito/src/cart/domain/entity"
	"carrito/src/cart/domain/port"
	"carrito/src/cart/domain/pricing"
	"carrito/src/cart/infrastructure/auth"
	"carrito/src/cart/infrastructure/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutFixture(repo *fakeReceiptRepo) (*CheckoutUseCase, *MutateCartUseCase, *store.CartStore, *fakeGateway) {
	gateway := newFakeGateway()
	creds := auth.StaticCredentialProvider{Bearer: "tok", Authenticated: true}
	cartStore := store.NewCartStore(nil, creds)
	mutateUC := NewMutateCartUseCase(cartStore, gateway, creds)

	// Evitar el nil tipado dentro de la interfaz
	var receiptRepo port.ReceiptRepository
	if repo != nil {
		receiptRepo = repo
	}
	checkoutUC := NewCheckoutUseCase(cartStore, gateway, receiptRepo, pricing.DefaultConfig())
	return checkoutUC, mutateUC, cartStore, gateway
}

func validRequest() entity.CheckoutRequest {
	return entity.CheckoutRequest{Address: "Av. Siempre Viva 742", PaymentToken: "tok_123"}
}

func TestCheckoutValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart fails fast without calling finalize", func(t *testing.T) {
		checkoutUC, _, _, gateway := newCheckoutFixture(nil)

		_, err := checkoutUC.Execute(ctx, validRequest())
		assert.ErrorIs(t, err, entity.ErrEmptyCart)
		assert.NotContains(t, gateway.callLog(), "finalize")
	})

	t.Run("blank address or token fails fast", func(t *testing.T) {
		checkoutUC, mutateUC, _, gateway := newCheckoutFixture(nil)
		item := gateway.seedProduct("a", 100, 5)
		require.NoError(t, mutateUC.Add(ctx, item, 1))

		_, err := checkoutUC.Execute(ctx, entity.CheckoutRequest{Address: "  ", PaymentToken: "tok"})
		assert.ErrorIs(t, err, entity.ErrValidation)

		_, err = checkoutUC.Execute(ctx, entity.CheckoutRequest{Address: "Calle 1", PaymentToken: ""})
		assert.ErrorIs(t, err, entity.ErrValidation)

		assert.NotContains(t, gateway.callLog(), "finalize")
	})
}

func TestCheckoutExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("success clears the cart and returns the receipt", func(t *testing.T) {
		repo := &fakeReceiptRepo{}
		checkoutUC, mutateUC, cartStore, gateway := newCheckoutFixture(repo)
		item := gateway.seedProduct("a", 100, 5)
		require.NoError(t, mutateUC.Add(ctx, item, 2))

		receipt, err := checkoutUC.Execute(ctx, validRequest())
		require.NoError(t, err)

		assert.Equal(t, "compra-1", receipt.ID)
		// 200 + 42 de IVA + 50 de envío
		assert.Equal(t, "292.00", receipt.Breakdown.Total.StringFixed(2))
		require.Len(t, receipt.Items, 1)
		assert.Equal(t, 2, receipt.Items[0].Quantity)

		assert.True(t, cartStore.Get().IsEmpty(), "cart must be cleared on success")

		// Registro durable local del comprobante
		stored, err := repo.FindByID(ctx, "compra-1")
		require.NoError(t, err)
		assert.True(t, stored.Breakdown.Total.Equal(receipt.Breakdown.Total))
	})

	t.Run("remote failure leaves the cart untouched", func(t *testing.T) {
		checkoutUC, mutateUC, cartStore, gateway := newCheckoutFixture(nil)
		item := gateway.seedProduct("a", 100, 5)
		require.NoError(t, mutateUC.Add(ctx, item, 2))
		before := cartStore.Get()

		gateway.finalizeErr = entity.ErrNetwork
		_, err := checkoutUC.Execute(ctx, validRequest())

		assert.ErrorIs(t, err, entity.ErrNetwork)
		assert.Equal(t, before.Items, cartStore.Get().Items, "cart must survive a failed checkout")
	})

	t.Run("works without a receipt repository", func(t *testing.T) {
		checkoutUC, mutateUC, cartStore, gateway := newCheckoutFixture(nil)
		item := gateway.seedProduct("a", 100, 5)
		require.NoError(t, mutateUC.Add(ctx, item, 1))

		receipt, err := checkoutUC.Execute(ctx, validRequest())
		require.NoError(t, err)
		assert.NotEmpty(t, receipt.ID)
		assert.True(t, cartStore.Get().IsEmpty())
	})
}
