package pricing

import (
	"carrito/src/cart/domain/entity"

	"github.com/shopspring/decimal"
)

// ShippingBasis define contra qué monto se compara el umbral de envío gratis
type ShippingBasis string

const (
	// BasisSubtotal compara el umbral contra el subtotal solo
	BasisSubtotal ShippingBasis = "subtotal"
	// BasisSubtotalPlusTax compara el umbral contra subtotal + IVA
	BasisSubtotalPlusTax ShippingBasis = "subtotal_plus_tax"
)

// Config contiene la política de precios: tasas de IVA por categoría,
// umbral de envío gratis y tarifa plana. Es configuración explícita,
// no constantes: las variantes históricas diferían en tasa reducida y
// en la base del umbral.
type Config struct {
	TaxRateDefault        decimal.Decimal
	TaxRateByCategory     map[string]decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	ShippingBasis         ShippingBasis
}

// DefaultConfig retorna la política por defecto: IVA 21%, electrónica 10%,
// envío gratis desde 1000 comparado contra subtotal, tarifa plana 50.
func DefaultConfig() Config {
	return Config{
		TaxRateDefault: decimal.NewFromFloat(0.21),
		TaxRateByCategory: map[string]decimal.Decimal{
			"electronics": decimal.NewFromFloat(0.10),
		},
		FreeShippingThreshold: decimal.NewFromInt(1000),
		FlatShippingFee:       decimal.NewFromInt(50),
		ShippingBasis:         BasisSubtotal,
	}
}

// rateFor retorna la tasa de IVA para una categoría
func (c Config) rateFor(category string) decimal.Decimal {
	if rate, ok := c.TaxRateByCategory[category]; ok {
		return rate
	}
	return c.TaxRateDefault
}

// Compute calcula el desglose de precios de un carrito.
//
// Función pura: sin I/O, sin estado, segura de llamar en cada lectura.
// La aritmética se acumula sin redondear y se redondea a 2 decimales
// recién en el resultado final, para no acumular error de redondeo.
// Un carrito vacío siempre retorna un desglose en cero (sin tarifa de envío).
func Compute(items []entity.LineItem, cfg Config) entity.PricingBreakdown {
	if len(items) == 0 {
		return entity.ZeroBreakdown()
	}

	subtotal := decimal.Zero
	taxByCategory := map[string]decimal.Decimal{}

	for _, item := range items {
		lineSubtotal := item.Subtotal()
		subtotal = subtotal.Add(lineSubtotal)

		lineTax := lineSubtotal.Mul(cfg.rateFor(item.Category))
		taxByCategory[item.Category] = taxByCategory[item.Category].Add(lineTax)
	}

	taxTotal := decimal.Zero
	for _, tax := range taxByCategory {
		taxTotal = taxTotal.Add(tax)
	}

	// Base configurable del umbral de envío gratis
	basis := subtotal
	if cfg.ShippingBasis == BasisSubtotalPlusTax {
		basis = subtotal.Add(taxTotal)
	}

	shipping := cfg.FlatShippingFee
	if basis.GreaterThan(cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	// Redondeo a 2 decimales una sola vez, sobre el resultado final
	out := entity.PricingBreakdown{
		Subtotal:      subtotal.Round(2),
		TaxByCategory: make(map[string]decimal.Decimal, len(taxByCategory)),
		Shipping:      shipping.Round(2),
	}
	taxRounded := decimal.Zero
	for category, tax := range taxByCategory {
		rounded := tax.Round(2)
		out.TaxByCategory[category] = rounded
		taxRounded = taxRounded.Add(rounded)
	}
	out.Total = out.Subtotal.Add(taxRounded).Add(out.Shipping)
	return out
}
