package port

import (
	"context"

	"carrito/src/cart/domain/entity"
)

// RemoteCartGateway define el contrato con el servicio remoto de carrito.
// El núcleo depende solo de estas firmas, no del transporte.
//
// Las mutaciones pueden retornar el carrito autoritativo si la respuesta
// del servidor ya lo trae; un carrito nil es un ack simple y el llamador
// debe hacer Fetch para reconciliar.
//
// Errores: ErrUnauthenticated si no hay credencial, ErrInsufficientStock
// en conflictos de stock, ErrNetwork para fallas de transporte o timeout.
type RemoteCartGateway interface {
	Fetch(ctx context.Context) (*entity.Cart, error)
	Add(ctx context.Context, productID string, quantity int) (*entity.Cart, error)
	// SetQuantity con cantidad 0 equivale a Remove
	SetQuantity(ctx context.Context, productID string, quantity int) (*entity.Cart, error)
	Remove(ctx context.Context, productID string) (*entity.Cart, error)
	// Cancel vacía el carrito remoto y libera el stock reservado
	Cancel(ctx context.Context) error
	// Finalize cierra la compra; falla con ErrEmptyCart, ErrValidation o ErrNetwork
	Finalize(ctx context.Context, req entity.CheckoutRequest) (*entity.Receipt, error)
}
