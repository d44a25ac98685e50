package usecase

import (
	"context"
	"fmt"
	"log"

	"carrito/src/cart/domain/entity"
	"carrito/src/cart/domain/port"
	"carrito/src/cart/domain/pricing"
	"carrito/src/cart/infrastructure/store"
)

// CheckoutUseCase coordina la finalización de la compra.
//
// Estados: Idle → Validating → Submitting → Succeeded | Failed.
// Las validaciones fallan rápido sin llamada de red; en caso de falla
// remota el carrito queda intacto para que el usuario reintente.
type CheckoutUseCase struct {
	cartStore   *store.CartStore
	gateway     port.RemoteCartGateway
	receiptRepo port.ReceiptRepository // opcional, nil si no hay base configurada
	pricingCfg  pricing.Config
}

// NewCheckoutUseCase crea una nueva instancia del caso de uso
func NewCheckoutUseCase(
	cartStore *store.CartStore,
	gateway port.RemoteCartGateway,
	receiptRepo port.ReceiptRepository,
	pricingCfg pricing.Config,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		cartStore:   cartStore,
		gateway:     gateway,
		receiptRepo: receiptRepo,
		pricingCfg:  pricingCfg,
	}
}

// Execute valida, finaliza la compra y vacía el carrito si tuvo éxito
func (uc *CheckoutUseCase) Execute(ctx context.Context, req entity.CheckoutRequest) (*entity.Receipt, error) {
	// 1. Validating: sin llamada de red
	snapshot := uc.cartStore.Get()
	if snapshot.IsEmpty() {
		return nil, entity.ErrEmptyCart
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. Desglose al momento del checkout, snapshot inmutable del comprobante
	breakdown := pricing.Compute(snapshot.Items, uc.pricingCfg)

	// 3. Submitting
	receipt, err := uc.gateway.Finalize(ctx, req)
	if err != nil {
		// Failed: el carrito no se toca, el tipo de error se propaga
		return nil, fmt.Errorf("error finalizing checkout: %w", err)
	}

	receipt.Breakdown = breakdown
	receipt.Items = snapshot.Items

	// 4. Succeeded: vaciar carrito (y su slot persistido)
	uc.cartStore.Clear(ctx)

	// 5. Registro durable local del comprobante (best effort)
	if uc.receiptRepo != nil {
		if err := uc.receiptRepo.Create(ctx, receipt); err != nil {
			// La compra ya se concretó: loguear, no fallar
			log.Printf("⚠️  Error persisting receipt %s: %v", receipt.ID, err)
		}
	}

	log.Printf("✅ Checkout succeeded: receipt=%s total=%s", receipt.ID, receipt.Breakdown.Total.StringFixed(2))
	return receipt, nil
}
