package port

import (
	"context"

	"carrito/src/cart/domain/entity"
)

// CartSlot define el slot durable donde se persiste el carrito de un
// visitante sin sesión, para que una recarga de página no lo pierda.
// El CartStore es el único escritor (write-through en cada cambio local).
type CartSlot interface {
	// Load retorna el carrito persistido, o (nil, nil) si el slot está vacío
	Load(ctx context.Context) (*entity.Cart, error)
	Save(ctx context.Context, cart *entity.Cart) error
	Clear(ctx context.Context) error
}
