package entity

import "github.com/shopspring/decimal"

// PricingBreakdown representa el desglose monetario derivado del carrito.
// Nunca se persiste: se recalcula a partir del carrito en cada lectura.
type PricingBreakdown struct {
	Subtotal      decimal.Decimal            `json:"subtotal"`
	TaxByCategory map[string]decimal.Decimal `json:"iva_por_categoria"`
	Shipping      decimal.Decimal            `json:"envio"`
	Total         decimal.Decimal            `json:"total"`
}

// ZeroBreakdown retorna el desglose de un carrito vacío
func ZeroBreakdown() PricingBreakdown {
	return PricingBreakdown{
		Subtotal:      decimal.Zero,
		TaxByCategory: map[string]decimal.Decimal{},
		Shipping:      decimal.Zero,
		Total:         decimal.Zero,
	}
}

// TaxTotal retorna la suma del IVA de todas las categorías
func (b PricingBreakdown) TaxTotal() decimal.Decimal {
	total := decimal.Zero
	for _, tax := range b.TaxByCategory {
		total = total.Add(tax)
	}
	return total
}
