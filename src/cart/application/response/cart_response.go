package response

import (
	"carrito/src/cart/domain/entity"

	"github.com/shopspring/decimal"
)

// CartItemResponse representa una línea del carrito en la respuesta
type CartItemResponse struct {
	ProductoID string          `json:"producto_id"`
	Titulo     string          `json:"titulo"`
	Precio     decimal.Decimal `json:"precio"`
	Categoria  string          `json:"categoria"`
	Cantidad   int             `json:"cantidad"`
	Stock      int             `json:"stock"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// CartResponse representa la respuesta de GET /carrito: items más el
// desglose derivado, con montos redondeados a 2 decimales
type CartResponse struct {
	Items    []CartItemResponse         `json:"items"`
	Status   string                     `json:"status"`
	Subtotal decimal.Decimal            `json:"subtotal"`
	IVA      map[string]decimal.Decimal `json:"iva"`
	Envio    decimal.Decimal            `json:"envio"`
	Total    decimal.Decimal            `json:"total"`
}

// NewCartResponse arma la respuesta a partir del carrito y su desglose
func NewCartResponse(cart entity.Cart, breakdown entity.PricingBreakdown) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemResponse{
			ProductoID: item.ProductID,
			Titulo:     item.Title,
			Precio:     item.UnitPrice,
			Categoria:  item.Category,
			Cantidad:   item.Quantity,
			Stock:      item.AvailableStock,
			Subtotal:   item.Subtotal().Round(2),
		})
	}
	return CartResponse{
		Items:    items,
		Status:   string(cart.Status),
		Subtotal: breakdown.Subtotal,
		IVA:      breakdown.TaxByCategory,
		Envio:    breakdown.Shipping,
		Total:    breakdown.Total,
	}
}

// ReceiptResponse representa la respuesta de POST /carrito/finalizar
type ReceiptResponse struct {
	CompraID string          `json:"compra_id"`
	Total    decimal.Decimal `json:"total"`
	Items    int             `json:"items"`
}

// NewReceiptResponse arma la respuesta a partir del comprobante
func NewReceiptResponse(receipt *entity.Receipt) ReceiptResponse {
	return ReceiptResponse{
		CompraID: receipt.ID,
		Total:    receipt.Breakdown.Total,
		Items:    len(receipt.Items),
	}
}
