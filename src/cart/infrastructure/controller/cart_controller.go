package controller

import (
	"errors"
	"log"
	"net/http"

	"carrito/src/cart/application/request"
	"carrito/src/cart/application/response"
	"carrito/src/cart/application/usecase"
	"carrito/src/cart/domain/entity"

	"github.com/gin-gonic/gin"
)

// CartController maneja las peticiones HTTP del carrito.
// Es la superficie consolidada que reemplaza la lógica duplicada en
// cada frontend: todas las mutaciones pasan por el coordinador optimista.
type CartController struct {
	getCartUC    *usecase.GetCartUseCase
	mutateCartUC *usecase.MutateCartUseCase
	cancelCartUC *usecase.CancelCartUseCase
	checkoutUC   *usecase.CheckoutUseCase
}

// NewCartController crea una nueva instancia del controlador
func NewCartController(
	getCartUC *usecase.GetCartUseCase,
	mutateCartUC *usecase.MutateCartUseCase,
	cancelCartUC *usecase.CancelCartUseCase,
	checkoutUC *usecase.CheckoutUseCase,
) *CartController {
	return &CartController{
		getCartUC:    getCartUC,
		mutateCartUC: mutateCartUC,
		cancelCartUC: cancelCartUC,
		checkoutUC:   checkoutUC,
	}
}

// RegisterRoutes registra las rutas del controlador
func (c *CartController) RegisterRoutes(router *gin.RouterGroup) {
	cart := router.Group("/carrito")
	{
		cart.GET("", c.GetCart)
		cart.POST("", c.AddItem)
		cart.PUT("/:producto_id", c.SetQuantity)
		cart.DELETE("/:producto_id", c.RemoveItem)
		cart.POST("/cancelar", c.Cancel)
		cart.POST("/finalizar", c.Finalize)
	}

	log.Println("Rutas Carrito disponibles:")
	log.Println("  GET    /api/v1/carrito")
	log.Println("  POST   /api/v1/carrito")
	log.Println("  PUT    /api/v1/carrito/:producto_id")
	log.Println("  DELETE /api/v1/carrito/:producto_id")
	log.Println("  POST   /api/v1/carrito/cancelar")
	log.Println("  POST   /api/v1/carrito/finalizar")
}

// GetCart retorna el carrito con su desglose derivado
func (c *CartController) GetCart(ctx *gin.Context) {
	cart, breakdown := c.getCartUC.Execute()
	ctx.JSON(http.StatusOK, response.NewCartResponse(cart, breakdown))
}

// AddItem agrega un producto al carrito
func (c *CartController) AddItem(ctx *gin.Context) {
	var req request.AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "producto_id and cantidad are required"})
		return
	}

	item := entity.LineItem{
		ProductID:      req.ProductoID,
		Title:          req.Titulo,
		UnitPrice:      req.Precio,
		Category:       req.Categoria,
		AvailableStock: req.Stock,
	}

	if err := c.mutateCartUC.Add(ctx.Request.Context(), item, req.Cantidad); err != nil {
		respondError(ctx, err)
		return
	}
	c.GetCart(ctx)
}

// SetQuantity fija la cantidad de un producto (0 lo quita)
func (c *CartController) SetQuantity(ctx *gin.Context) {
	productID := ctx.Param("producto_id")

	var req request.SetQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "cantidad is required"})
		return
	}

	if err := c.mutateCartUC.SetQuantity(ctx.Request.Context(), productID, req.Cantidad); err != nil {
		respondError(ctx, err)
		return
	}
	c.GetCart(ctx)
}

// RemoveItem quita un producto del carrito
func (c *CartController) RemoveItem(ctx *gin.Context) {
	productID := ctx.Param("producto_id")

	if err := c.mutateCartUC.Remove(ctx.Request.Context(), productID); err != nil {
		respondError(ctx, err)
		return
	}
	c.GetCart(ctx)
}

// Cancel vacía el carrito y libera el stock reservado
func (c *CartController) Cancel(ctx *gin.Context) {
	if err := c.cancelCartUC.Execute(ctx.Request.Context()); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "cart canceled"})
}

// Finalize cierra la compra y retorna el comprobante
func (c *CartController) Finalize(ctx *gin.Context) {
	var req request.FinalizeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "direccion and tarjeta are required"})
		return
	}

	receipt, err := c.checkoutUC.Execute(ctx.Request.Context(), entity.CheckoutRequest{
		Address:      req.Direccion,
		PaymentToken: req.Tarjeta,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, response.NewReceiptResponse(receipt))
}

// respondError mapea la taxonomía de errores del dominio a status HTTP.
// La UI necesita el tipo específico para decidir (rutear a login,
// mostrar stock insuficiente, reintentar), nunca un error genérico.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrUnauthenticated):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "detail": err.Error()})
	case errors.Is(err, entity.ErrInsufficientStock):
		ctx.JSON(http.StatusConflict, gin.H{"error": "insufficient_stock", "detail": err.Error()})
	case errors.Is(err, entity.ErrEmptyCart):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "empty_cart", "detail": err.Error()})
	case errors.Is(err, entity.ErrValidation), errors.Is(err, entity.ErrInvalidQuantity):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "detail": err.Error()})
	case errors.Is(err, entity.ErrNetwork):
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "network_error", "detail": err.Error()})
	default:
		log.Printf("Error handling cart request: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
