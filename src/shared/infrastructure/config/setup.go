package config

import (
	"log"
	"os"
	"strings"

	"carrito/src/cart/domain/pricing"

	"github.com/shopspring/decimal"
)

// SharedConfig contiene la configuración del servicio leída del entorno
type SharedConfig struct {
	Port              string
	CartServiceURL    string
	ReceiptDSN        string // vacío = sin registro durable de comprobantes
	SlotPath          string
	SessionID         string
	PrometheusEnabled bool
	Pricing           pricing.Config
}

// DefaultSharedConfig devuelve una configuración por defecto
func DefaultSharedConfig() SharedConfig {
	return SharedConfig{
		Port:           "8080",
		CartServiceURL: "http://localhost:4000/api",
		SlotPath:       "carrito.db",
		SessionID:      "anonymous",
		Pricing:        pricing.DefaultConfig(),
	}
}

// Load arma la configuración desde variables de entorno.
// La política de precios es configuración explícita: las variantes
// históricas diferían en la tasa reducida y en la base del umbral de
// envío gratis, así que acá no hay constantes hard-codeadas.
func Load() SharedConfig {
	cfg := DefaultSharedConfig()

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.CartServiceURL = getEnv("CART_SERVICE_URL", cfg.CartServiceURL)
	cfg.ReceiptDSN = os.Getenv("RECEIPT_DATABASE_URL")
	cfg.SlotPath = getEnv("CART_SLOT_PATH", cfg.SlotPath)
	cfg.SessionID = getEnv("CART_SESSION_ID", cfg.SessionID)
	cfg.PrometheusEnabled = os.Getenv("PROMETHEUS_ENABLED") == "true"

	cfg.Pricing.TaxRateDefault = getEnvDecimal("TAX_RATE_DEFAULT", cfg.Pricing.TaxRateDefault)
	cfg.Pricing.FreeShippingThreshold = getEnvDecimal("FREE_SHIPPING_THRESHOLD", cfg.Pricing.FreeShippingThreshold)
	cfg.Pricing.FlatShippingFee = getEnvDecimal("FLAT_SHIPPING_FEE", cfg.Pricing.FlatShippingFee)

	if basis := os.Getenv("SHIPPING_BASIS"); basis != "" {
		switch pricing.ShippingBasis(basis) {
		case pricing.BasisSubtotal, pricing.BasisSubtotalPlusTax:
			cfg.Pricing.ShippingBasis = pricing.ShippingBasis(basis)
		default:
			log.Printf("⚠️  Invalid SHIPPING_BASIS %q, using %q", basis, cfg.Pricing.ShippingBasis)
		}
	}

	// TAX_RATES_BY_CATEGORY con formato "categoria:tasa,categoria:tasa"
	if raw := os.Getenv("TAX_RATES_BY_CATEGORY"); raw != "" {
		rates := map[string]decimal.Decimal{}
		for _, pair := range strings.Split(raw, ",") {
			parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
			if len(parts) != 2 {
				log.Printf("⚠️  Skipping malformed tax rate entry %q", pair)
				continue
			}
			rate, err := decimal.NewFromString(parts[1])
			if err != nil {
				log.Printf("⚠️  Skipping tax rate for %q: %v", parts[0], err)
				continue
			}
			rates[parts[0]] = rate
		}
		if len(rates) > 0 {
			cfg.Pricing.TaxRateByCategory = rates
		}
	}

	return cfg
}

// getEnv obtiene una variable de entorno o devuelve un valor por defecto
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDecimal parsea una variable de entorno decimal con fallback
func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		log.Printf("⚠️  Invalid %s=%q, using default: %v", key, value, err)
		return defaultValue
	}
	return parsed
}
