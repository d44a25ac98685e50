package entity

import "errors"

var (
	// Taxonomía de errores del subsistema de carrito
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrNetwork           = errors.New("network error")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation error")
	ErrEmptyCart         = errors.New("cart is empty")

	// Errores de construcción de entidades
	ErrProductIDRequired = errors.New("product_id is required")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
	ErrInvalidPrice      = errors.New("unit_price must be greater than or equal to 0")
	ErrInvalidStock      = errors.New("available_stock must be greater than or equal to 0")
)
