package usecase

import (
	"context"
	"fmt"
	"log"

	"carrito/src/cart/domain/port"
	"carrito/src/cart/infrastructure/store"
)

// SyncCartUseCase hidrata el carrito al inicio de sesión.
//
// Con sesión autenticada el carrito remoto es autoritativo: se replica
// y la copia local persistida de la etapa anónima se descarta. Sin
// sesión, se rehidrata desde el slot durable para que una recarga no
// pierda el carrito del visitante.
type SyncCartUseCase struct {
	cartStore *store.CartStore
	gateway   port.RemoteCartGateway
	creds     port.CredentialProvider
}

// NewSyncCartUseCase crea una nueva instancia del caso de uso
func NewSyncCartUseCase(cartStore *store.CartStore, gateway port.RemoteCartGateway, creds port.CredentialProvider) *SyncCartUseCase {
	return &SyncCartUseCase{
		cartStore: cartStore,
		gateway:   gateway,
		creds:     creds,
	}
}

// Execute sincroniza la vista local con la fuente que corresponda
func (uc *SyncCartUseCase) Execute(ctx context.Context) error {
	if _, authenticated := uc.creds.Token(); !authenticated {
		return uc.cartStore.HydrateFromSlot(ctx)
	}

	seq := uc.cartStore.BeginFetch()
	serverCart, err := uc.gateway.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("error fetching remote cart: %w", err)
	}
	uc.cartStore.CompleteFetch(ctx, seq, *serverCart)

	if err := uc.cartStore.DiscardSlot(ctx); err != nil {
		// El remoto ya es autoritativo; un slot viejo solo se loguea
		log.Printf("⚠️  Error discarding local cart slot: %v", err)
	}
	return nil
}
