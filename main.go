package main

import (
	"context"
	"database/sql"
	"log"

	"carrito/src/cart/application/usecase"
	"carrito/src/cart/domain/entity"
	"carrito/src/cart/domain/port"
	"carrito/src/cart/infrastructure/auth"
	cartClient "carrito/src/cart/infrastructure/client"
	cartController "carrito/src/cart/infrastructure/controller"
	cartPersistence "carrito/src/cart/infrastructure/persistence"
	cartStore "carrito/src/cart/infrastructure/store"
	sharedConfig "carrito/src/shared/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // Driver de PostgreSQL (comprobantes)
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "modernc.org/sqlite" // Driver de SQLite (slot de carrito anónimo)
)

func main() {
	log.Println("🚀 Cart Service - Iniciando...")

	// Cargar .env si existe (entorno local)
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := sharedConfig.Load()

	// Configurar el router con Gin
	router := gin.New()

	// Agregar middlewares básicos necesarios
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Configurar Prometheus metrics si está habilitado
	if cfg.PrometheusEnabled {
		log.Println("Registering /metrics endpoint for Cart service")
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	} else {
		log.Println("Prometheus metrics disabled for Cart service")
	}

	// Colaborador externo de autenticación: credencial bearer del entorno
	creds := auth.EnvCredentialProvider{}

	// Slot durable para carritos de visitantes sin sesión
	var slot port.CartSlot
	slotDB, err := sql.Open("sqlite", cfg.SlotPath)
	if err != nil {
		log.Printf("⚠️  Warning: Could not open cart slot database: %v", err)
		log.Println("⚠️  Continuing without anonymous cart persistence")
	} else {
		if err := cartPersistence.EnsureSchema(slotDB); err != nil {
			log.Printf("⚠️  Warning: Could not prepare cart slot schema: %v", err)
		} else {
			slot = cartPersistence.NewSqliteCartSlot(slotDB, cfg.SessionID)
			log.Printf("✅ Anonymous cart slot ready at %s", cfg.SlotPath)
		}
	}

	// Registro durable de comprobantes (opcional)
	var receiptRepo port.ReceiptRepository
	if cfg.ReceiptDSN != "" {
		receiptDB, err := sql.Open("postgres", cfg.ReceiptDSN)
		if err != nil {
			log.Printf("⚠️  Warning: Could not open receipt database: %v", err)
			log.Println("⚠️  Continuing without receipt persistence")
		} else if err := receiptDB.Ping(); err != nil {
			log.Printf("⚠️  Warning: Receipt database unreachable: %v", err)
			log.Println("⚠️  Continuing without receipt persistence")
		} else {
			receiptRepo = cartPersistence.NewReceiptPostgresRepository(receiptDB)
			log.Println("✅ Receipt repository connected")
		}
	} else {
		log.Println("RECEIPT_DATABASE_URL not set, receipts will not be recorded locally")
	}

	// Núcleo del subsistema: store local + gateway remoto + coordinadores
	store := cartStore.NewCartStore(slot, creds)
	gateway := cartClient.NewRemoteCartClientWithURL(cfg.CartServiceURL, creds)

	getCartUC := usecase.NewGetCartUseCase(store, cfg.Pricing)
	mutateCartUC := usecase.NewMutateCartUseCase(store, gateway, creds)
	cancelCartUC := usecase.NewCancelCartUseCase(store, gateway, creds)
	checkoutUC := usecase.NewCheckoutUseCase(store, gateway, receiptRepo, cfg.Pricing)
	syncCartUC := usecase.NewSyncCartUseCase(store, gateway, creds)

	// Hidratar la vista local al arrancar: remoto si hay sesión,
	// slot persistido si no
	if err := syncCartUC.Execute(context.Background()); err != nil {
		log.Printf("⚠️  Warning: Could not hydrate cart on startup: %v", err)
	}

	// Los interesados se registran en el store en lugar de escuchar un
	// event bus global
	store.Subscribe(func(c entity.Cart) {
		log.Printf("🛒 Cart changed: %d items (status=%s)", c.TotalItems(), c.Status)
	})

	// Registrar rutas
	controller := cartController.NewCartController(getCartUC, mutateCartUC, cancelCartUC, checkoutUC)
	api := router.Group("/api/v1")
	controller.RegisterRoutes(api)

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	log.Printf("🛒 Cart service listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
