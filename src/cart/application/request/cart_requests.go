package request

import "github.com/shopspring/decimal"

// AddItemRequest representa el body de POST /carrito.
// Además del producto_id y la cantidad trae el snapshot del producto
// que la UI ya tiene a mano, para la línea optimista local.
type AddItemRequest struct {
	ProductoID string          `json:"producto_id" binding:"required"`
	Cantidad   int             `json:"cantidad" binding:"required"`
	Titulo     string          `json:"titulo"`
	Precio     decimal.Decimal `json:"precio"`
	Categoria  string          `json:"categoria"`
	Stock      int             `json:"stock"`
}

// SetQuantityRequest representa el body de PUT /carrito/{producto_id}
type SetQuantityRequest struct {
	Cantidad int `json:"cantidad"`
}

// FinalizeRequest representa el body de POST /carrito/finalizar
type FinalizeRequest struct {
	Direccion string `json:"direccion"`
	Tarjeta   string `json:"tarjeta"`
}
