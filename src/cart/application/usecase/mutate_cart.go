package usecase

import (
	"context"
	"errors"
	"log"
	"sync"

	"carrito/src/cart/domain/entity"
	"carrito/src/cart/domain/port"
	"carrito/src/cart/infrastructure/store"
)

// MutateCartUseCase coordina las mutaciones optimistas del carrito.
//
// Estados: Idle → Mutating → (Reconciling | RollingBack) → Idle.
//
// Flujo para una mutación m:
//  1. Precondición contra el carrito local: un incremento que supere el
//     stock se rechaza sin llamada de red
//  2. Aplicación optimista en el CartStore, visible antes de que la red
//     resuelva
//  3. Despacho de la operación remota correspondiente
//  4. Éxito: réplica con la verdad del servidor (la respuesta de la
//     mutación si ya trae el carrito, o un Fetch); el servidor siempre
//     gana porque precio y stock pueden cambiar concurrentemente
//  5. Falla: se invierte el delta exacto aplicado en 2 (no un refetch,
//     para no pisar estado concurrente no relacionado) y el error tipado
//     se propaga al caller; sin reintentos automáticos
//
// Las mutaciones se serializan por carrito: una segunda mutación espera
// a que termine la anterior, nunca se intercalan. Incrementos rápidos
// sobre el mismo producto resuelven su delta bajo ese lock, así el
// segundo ve el efecto local del primero en lugar de pisarlo.
//
// Sin sesión autenticada no hay carrito remoto que sincronizar: la
// mutación aplica solo localmente (modo fallback) y el write-through
// del CartStore la persiste en el slot del visitante.
type MutateCartUseCase struct {
	cartStore *store.CartStore
	gateway   port.RemoteCartGateway
	creds     port.CredentialProvider
	mu        sync.Mutex // serializa mutaciones sobre el mismo carrito
}

// NewMutateCartUseCase crea una nueva instancia del caso de uso
func NewMutateCartUseCase(cartStore *store.CartStore, gateway port.RemoteCartGateway, creds port.CredentialProvider) *MutateCartUseCase {
	return &MutateCartUseCase{
		cartStore: cartStore,
		gateway:   gateway,
		creds:     creds,
	}
}

// Add agrega un producto al carrito (o incrementa su cantidad si ya está).
// El item trae el snapshot del producto que la UI ya tiene a mano.
func (uc *MutateCartUseCase) Add(ctx context.Context, item entity.LineItem, quantity int) error {
	m := entity.Mutation{Kind: entity.MutationUpsert, Quantity: quantity, Item: &item}
	return uc.execute(ctx, m, func(ctx context.Context, after entity.Cart) (*entity.Cart, error) {
		return uc.gateway.Add(ctx, item.ProductID, quantity)
	})
}

// Increment suma 1 a la cantidad de un producto ya presente.
// Sobre un producto ausente es un no-op sin error.
func (uc *MutateCartUseCase) Increment(ctx context.Context, productID string) error {
	return uc.adjust(ctx, productID, +1)
}

// Decrement resta 1; llegar a 0 quita el item en lugar de dejarlo en 0.
// Bajar cantidad nunca re-chequea stock.
func (uc *MutateCartUseCase) Decrement(ctx context.Context, productID string) error {
	return uc.adjust(ctx, productID, -1)
}

// SetQuantity fija la cantidad de un producto; 0 equivale a quitarlo
func (uc *MutateCartUseCase) SetQuantity(ctx context.Context, productID string, quantity int) error {
	m := entity.Mutation{Kind: entity.MutationSetQuantity, ProductID: productID, Quantity: quantity}
	return uc.execute(ctx, m, func(ctx context.Context, after entity.Cart) (*entity.Cart, error) {
		if quantity <= 0 {
			return uc.gateway.Remove(ctx, productID)
		}
		return uc.gateway.SetQuantity(ctx, productID, quantity)
	})
}

// Remove quita un producto del carrito
func (uc *MutateCartUseCase) Remove(ctx context.Context, productID string) error {
	m := entity.Mutation{Kind: entity.MutationRemove, ProductID: productID}
	return uc.execute(ctx, m, func(ctx context.Context, after entity.Cart) (*entity.Cart, error) {
		return uc.gateway.Remove(ctx, productID)
	})
}

// adjust aplica un delta ±1. La cantidad objetivo para el servidor se
// lee del snapshot post-aplicación, ya bajo el lock de serialización.
func (uc *MutateCartUseCase) adjust(ctx context.Context, productID string, delta int) error {
	m := entity.Mutation{Kind: entity.MutationAdjust, ProductID: productID, Quantity: delta}
	return uc.execute(ctx, m, func(ctx context.Context, after entity.Cart) (*entity.Cart, error) {
		idx := after.Find(productID)
		if idx < 0 {
			// El decremento llegó a 0: el item ya no está
			return uc.gateway.Remove(ctx, productID)
		}
		return uc.gateway.SetQuantity(ctx, productID, after.Items[idx].Quantity)
	})
}

// execute corre el ciclo completo de una mutación optimista
func (uc *MutateCartUseCase) execute(ctx context.Context, m entity.Mutation, remote func(context.Context, entity.Cart) (*entity.Cart, error)) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	// 1-2. Precondición + aplicación optimista local
	inverse, err := uc.cartStore.Apply(ctx, m)
	if err != nil {
		// Rechazo local (stock insuficiente): sin llamada de red
		return err
	}
	if inverse.Kind == entity.MutationNone {
		// Mutación sobre producto ausente: no-op que completa sin error
		return nil
	}

	if _, authenticated := uc.creds.Token(); !authenticated {
		// Modo fallback: el cambio ya quedó aplicado y persistido en el
		// slot local; se sincroniza recién al iniciar sesión
		return nil
	}

	// 3. Despacho remoto
	uc.cartStore.SetStatus(entity.CartStatusLoading)
	seq := uc.cartStore.BeginFetch()
	serverCart, err := remote(ctx, uc.cartStore.Get())

	if err != nil {
		// 5. Rollback del delta exacto
		if _, rerr := uc.cartStore.Apply(ctx, inverse); rerr != nil {
			log.Printf("⚠️  Error rolling back cart mutation: %v", rerr)
		}

		if errors.Is(err, entity.ErrInsufficientStock) {
			// El stock cambió del lado del servidor: forzar una réplica
			// fresca para que la vista local refleje el stock real
			uc.refresh(ctx, uc.cartStore.BeginFetch())
		}
		uc.cartStore.SetStatus(entity.CartStatusError)
		return err
	}

	// 4. Reconciliación: la verdad del servidor siempre gana
	if serverCart != nil {
		uc.cartStore.CompleteFetch(ctx, seq, *serverCart)
	} else {
		uc.refresh(ctx, seq)
	}
	uc.cartStore.SetStatus(entity.CartStatusIdle)
	return nil
}

// refresh trae el carrito autoritativo y lo replica si ninguna réplica
// más nueva llegó antes. Best effort: la mutación remota ya fue aceptada,
// así que una falla acá deja la vista optimista (consistente con la
// intención del usuario) y se loguea.
func (uc *MutateCartUseCase) refresh(ctx context.Context, seq uint64) {
	serverCart, err := uc.gateway.Fetch(ctx)
	if err != nil {
		log.Printf("⚠️  Error refreshing cart after mutation: %v", err)
		return
	}
	uc.cartStore.CompleteFetch(ctx, seq, *serverCart)
}
