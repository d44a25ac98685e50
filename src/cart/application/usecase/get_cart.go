package usecase

import (
	"carrito/src/cart/domain/entity"
	"carrito/src/cart/domain/pricing"
	"carrito/src/cart/infrastructure/store"
)

// GetCartUseCase retorna el snapshot del carrito con su desglose derivado.
// Lectura pura: el desglose se recalcula en cada llamada, nunca se persiste.
type GetCartUseCase struct {
	cartStore  *store.CartStore
	pricingCfg pricing.Config
}

// NewGetCartUseCase crea una nueva instancia del caso de uso
func NewGetCartUseCase(cartStore *store.CartStore, pricingCfg pricing.Config) *GetCartUseCase {
	return &GetCartUseCase{
		cartStore:  cartStore,
		pricingCfg: pricingCfg,
	}
}

// Execute retorna el carrito actual y su desglose de precios
func (uc *GetCartUseCase) Execute() (entity.Cart, entity.PricingBreakdown) {
	cart := uc.cartStore.Get()
	return cart, pricing.Compute(cart.Items, uc.pricingCfg)
}
