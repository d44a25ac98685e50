package usecase

import (
	"context"
	"fmt"

	"carrito/src/cart/domain/port"
	"carrito/src/cart/infrastructure/store"
)

// CancelCartUseCase vacía el carrito remoto (liberando stock reservado)
// y recién entonces el local. Si el servidor falla, el carrito local
// queda intacto y el error se propaga. Sin sesión autenticada no hay
// carrito remoto: solo se vacían la vista local y su slot persistido.
type CancelCartUseCase struct {
	cartStore *store.CartStore
	gateway   port.RemoteCartGateway
	creds     port.CredentialProvider
}

// NewCancelCartUseCase crea una nueva instancia del caso de uso
func NewCancelCartUseCase(cartStore *store.CartStore, gateway port.RemoteCartGateway, creds port.CredentialProvider) *CancelCartUseCase {
	return &CancelCartUseCase{
		cartStore: cartStore,
		gateway:   gateway,
		creds:     creds,
	}
}

// Execute cancela el carrito completo
func (uc *CancelCartUseCase) Execute(ctx context.Context) error {
	if _, authenticated := uc.creds.Token(); authenticated {
		if err := uc.gateway.Cancel(ctx); err != nil {
			return fmt.Errorf("error canceling cart: %w", err)
		}
	}
	uc.cartStore.Clear(ctx)
	return nil
}
