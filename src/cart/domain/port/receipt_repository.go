package port

import (
	"context"

	"carrito/src/cart/domain/entity"
)

// ReceiptRepository define el contrato para registrar comprobantes.
// Solo Create y FindByID: los comprobantes son inmutables.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	FindByID(ctx context.Context, receiptID string) (*entity.Receipt, error)
}
