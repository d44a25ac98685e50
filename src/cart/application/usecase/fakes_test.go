package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carrito/src/cart/domain/entity"

	"github.com/shopspring/decimal"
)

// fakeGateway implementa RemoteCartGateway con un carrito del lado
// "servidor" en memoria, registrando cada llamada recibida
type fakeGateway struct {
	mu      sync.Mutex
	server  entity.Cart
	catalog map[string]entity.LineItem
	calls   []string

	inline      bool  // las mutaciones responden con el carrito autoritativo
	failNext    error // la próxima mutación falla con este error
	finalizeErr error
	blockOn     chan struct{} // si no es nil, las mutaciones esperan acá
	started     chan struct{} // se cierra al recibir la primera mutación
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		server:  entity.NewCart(),
		catalog: map[string]entity.LineItem{},
		inline:  true,
	}
}

func (g *fakeGateway) seedProduct(id string, price float64, stock int) entity.LineItem {
	item := entity.LineItem{
		ProductID:      id,
		Title:          "Producto " + id,
		UnitPrice:      decimal.NewFromFloat(price),
		Category:       "general",
		AvailableStock: stock,
	}
	g.catalog[id] = item
	return item
}

func (g *fakeGateway) callLog() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string{}, g.calls...)
}

func (g *fakeGateway) serverCart() entity.Cart {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.server.Clone()
}

func (g *fakeGateway) setServerStock(productID string, stock int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx := g.server.Find(productID); idx >= 0 {
		g.server.Items[idx].AvailableStock = stock
	}
	item := g.catalog[productID]
	item.AvailableStock = stock
	g.catalog[productID] = item
}

func (g *fakeGateway) mutate(call string, apply func() error) (*entity.Cart, error) {
	g.mu.Lock()
	if g.started != nil {
		close(g.started)
		g.started = nil
	}
	block := g.blockOn
	g.mu.Unlock()

	if block != nil {
		<-block
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)

	if g.failNext != nil {
		err := g.failNext
		g.failNext = nil
		return nil, err
	}
	if err := apply(); err != nil {
		return nil, err
	}
	if !g.inline {
		return nil, nil
	}
	clone := g.server.Clone()
	return &clone, nil
}

func (g *fakeGateway) Fetch(ctx context.Context) (*entity.Cart, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "fetch")
	clone := g.server.Clone()
	return &clone, nil
}

func (g *fakeGateway) Add(ctx context.Context, productID string, quantity int) (*entity.Cart, error) {
	return g.mutate(fmt.Sprintf("add %s %d", productID, quantity), func() error {
		item, ok := g.catalog[productID]
		if !ok {
			return fmt.Errorf("unknown product %s", productID)
		}
		m := entity.Mutation{Kind: entity.MutationUpsert, Quantity: quantity, Item: &item}
		_, err := g.server.Apply(m)
		return err
	})
}

func (g *fakeGateway) SetQuantity(ctx context.Context, productID string, quantity int) (*entity.Cart, error) {
	return g.mutate(fmt.Sprintf("set_quantity %s %d", productID, quantity), func() error {
		m := entity.Mutation{Kind: entity.MutationSetQuantity, ProductID: productID, Quantity: quantity}
		_, err := g.server.Apply(m)
		return err
	})
}

func (g *fakeGateway) Remove(ctx context.Context, productID string) (*entity.Cart, error) {
	return g.mutate(fmt.Sprintf("remove %s", productID), func() error {
		m := entity.Mutation{Kind: entity.MutationRemove, ProductID: productID}
		_, err := g.server.Apply(m)
		return err
	})
}

func (g *fakeGateway) Cancel(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "cancel")
	if g.failNext != nil {
		err := g.failNext
		g.failNext = nil
		return err
	}
	g.server = entity.NewCart()
	return nil
}

func (g *fakeGateway) Finalize(ctx context.Context, req entity.CheckoutRequest) (*entity.Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "finalize")
	if g.finalizeErr != nil {
		return nil, g.finalizeErr
	}
	g.server = entity.NewCart()
	return &entity.Receipt{ID: "compra-1", CreatedAt: time.Now()}, nil
}

// fakeReceiptRepo implementa ReceiptRepository en memoria
type fakeReceiptRepo struct {
	mu       sync.Mutex
	receipts []*entity.Receipt
}

func (r *fakeReceiptRepo) Create(ctx context.Context, receipt *entity.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts = append(r.receipts, receipt)
	return nil
}

func (r *fakeReceiptRepo) FindByID(ctx context.Context, receiptID string) (*entity.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, receipt := range r.receipts {
		if receipt.ID == receiptID {
			return receipt, nil
		}
	}
	return nil, fmt.Errorf("receipt %s not found", receiptID)
}
