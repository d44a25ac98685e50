package entity

import (
	"fmt"
	"strings"
	"time"
)

// CheckoutRequest representa los datos necesarios para finalizar la compra
type CheckoutRequest struct {
	Address      string `json:"direccion"`
	PaymentToken string `json:"tarjeta"`
}

// Validate verifica que dirección y medio de pago no estén vacíos
func (r CheckoutRequest) Validate() error {
	if strings.TrimSpace(r.Address) == "" {
		return fmt.Errorf("direccion is required: %w", ErrValidation)
	}
	if strings.TrimSpace(r.PaymentToken) == "" {
		return fmt.Errorf("tarjeta is required: %w", ErrValidation)
	}
	return nil
}

// Receipt representa el comprobante de una compra finalizada.
// Inmutable una vez creado: items y desglose son snapshots del carrito
// al momento del checkout.
type Receipt struct {
	ID        string           `json:"compra_id"`
	CreatedAt time.Time        `json:"created_at"`
	Breakdown PricingBreakdown `json:"desglose"`
	Items     []LineItem       `json:"items"`
}
