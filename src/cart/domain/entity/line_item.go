package entity

import (
	"github.com/shopspring/decimal"
)

// LineItem representa un producto dentro del carrito (Entity dentro del Aggregate)
// Es un snapshot del producto al momento de agregarlo: precio y stock pueden
// cambiar del lado del servidor y se reconcilian vía Replace.
type LineItem struct {
	ProductID      string          `json:"producto_id"`
	Title          string          `json:"titulo"`
	UnitPrice      decimal.Decimal `json:"precio"`
	Category       string          `json:"categoria"`
	Quantity       int             `json:"cantidad"`
	AvailableStock int             `json:"stock"`
}

// NewLineItem crea un nuevo item de carrito
func NewLineItem(productID, title string, unitPrice decimal.Decimal, category string, quantity, availableStock int) (*LineItem, error) {
	// Validaciones básicas
	if productID == "" {
		return nil, ErrProductIDRequired
	}
	if title == "" {
		return nil, ErrTitleRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if unitPrice.LessThan(decimal.Zero) {
		return nil, ErrInvalidPrice
	}
	if availableStock < 0 {
		return nil, ErrInvalidStock
	}
	if quantity > availableStock {
		return nil, ErrInsufficientStock
	}

	return &LineItem{
		ProductID:      productID,
		Title:          title,
		UnitPrice:      unitPrice,
		Category:       category,
		Quantity:       quantity,
		AvailableStock: availableStock,
	}, nil
}

// Subtotal retorna precio unitario por cantidad, sin redondear
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
