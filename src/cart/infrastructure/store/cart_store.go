package store

import (
	"context"
	"log"
	"sync"

	"carrito/src/cart/domain/entity"
	"carrito/src/cart/domain/port"
)

// CartStore es la única fuente de verdad de la vista local del carrito.
// Funciona como cache optimista sobre el gateway remoto y como store de
// respaldo para sesiones sin autenticar (write-through al CartSlot en
// cada cambio local).
//
// Reemplaza el event bus global de las implementaciones originales por
// un observable explícito: los interesados se registran con Subscribe
// en lugar de escuchar eventos ambientales.
type CartStore struct {
	mu   sync.RWMutex
	cart entity.Cart

	// fetchSeq numera los fetch despachados; appliedSeq registra la última
	// réplica aplicada. Un fetch viejo que resuelve después de uno más
	// nuevo se descarta (last-applied-wins sobre el carrito autoritativo).
	fetchSeq   uint64
	appliedSeq uint64

	subs    map[int]func(entity.Cart)
	nextSub int

	slot  port.CartSlot
	creds port.CredentialProvider
}

// NewCartStore crea un store con carrito vacío en estado idle
func NewCartStore(slot port.CartSlot, creds port.CredentialProvider) *CartStore {
	return &CartStore{
		cart: entity.NewCart(),
		subs: make(map[int]func(entity.Cart)),

		slot:  slot,
		creds: creds,
	}
}

// HydrateFromSlot carga el carrito persistido de un visitante sin sesión.
// Con sesión autenticada no hace nada: el carrito remoto es autoritativo.
func (s *CartStore) HydrateFromSlot(ctx context.Context) error {
	if s.slot == nil {
		return nil
	}
	if _, authenticated := s.creds.Token(); authenticated {
		return nil
	}

	cart, err := s.slot.Load(ctx)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}

	s.mu.Lock()
	s.cart = cart.Clone()
	s.cart.Status = entity.CartStatusIdle
	s.mu.Unlock()

	s.notify()
	return nil
}

// DiscardSlot descarta la copia local persistida. Se usa cuando aparece
// una sesión autenticada y el carrito remoto pasa a ser autoritativo.
func (s *CartStore) DiscardSlot(ctx context.Context) error {
	if s.slot == nil {
		return nil
	}
	return s.slot.Clear(ctx)
}

// Get retorna un snapshot del carrito actual
func (s *CartStore) Get() entity.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// SetStatus actualiza el estado observable del carrito
func (s *CartStore) SetStatus(status entity.CartStatus) {
	s.mu.Lock()
	changed := s.cart.Status != status
	s.cart.Status = status
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Apply aplica un delta local sin llamada de red y retorna la mutación
// inversa para un eventual rollback. Usado solo por el coordinador de
// mutaciones optimistas.
func (s *CartStore) Apply(ctx context.Context, m entity.Mutation) (entity.Mutation, error) {
	s.mu.Lock()
	inverse, err := s.cart.Apply(m)
	if err != nil {
		s.mu.Unlock()
		return inverse, err
	}
	changed := inverse.Kind != entity.MutationNone
	if changed {
		s.writeThrough(ctx)
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return inverse, nil
}

// BeginFetch reserva una secuencia para un fetch que se va a despachar
func (s *CartStore) BeginFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchSeq++
	return s.fetchSeq
}

// CompleteFetch aplica la réplica del servidor si ninguna réplica más
// nueva llegó antes. Retorna false si el resultado se descartó.
func (s *CartStore) CompleteFetch(ctx context.Context, seq uint64, cart entity.Cart) bool {
	s.mu.Lock()
	if seq <= s.appliedSeq {
		s.mu.Unlock()
		return false
	}
	s.appliedSeq = seq
	s.cart = cart.Clone()
	s.cart.Status = entity.CartStatusIdle
	s.writeThrough(ctx)
	s.mu.Unlock()

	s.notify()
	return true
}

// Replace pisa el estado local con la verdad del servidor
func (s *CartStore) Replace(ctx context.Context, cart entity.Cart) {
	s.CompleteFetch(ctx, s.BeginFetch(), cart)
}

// Clear vacía el carrito (checkout exitoso o cancelación explícita)
func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.cart = entity.NewCart()
	if s.slot != nil {
		if err := s.slot.Clear(ctx); err != nil {
			log.Printf("⚠️  Error clearing cart slot: %v", err)
		}
	}
	s.mu.Unlock()

	s.notify()
}

// Subscribe registra un observador de cambios del carrito y retorna la
// función para darse de baja
func (s *CartStore) Subscribe(fn func(entity.Cart)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Teardown resetea el store al cerrar sesión: carrito vacío y sin observadores
func (s *CartStore) Teardown() {
	s.mu.Lock()
	s.cart = entity.NewCart()
	s.subs = make(map[int]func(entity.Cart))
	s.mu.Unlock()
}

// writeThrough persiste la copia local para visitantes sin sesión.
// Debe llamarse con el lock tomado. Un error de persistencia no invalida
// el cambio local, solo se loguea.
func (s *CartStore) writeThrough(ctx context.Context) {
	if s.slot == nil {
		return
	}
	if _, authenticated := s.creds.Token(); authenticated {
		return
	}
	snapshot := s.cart.Clone()
	if err := s.slot.Save(ctx, &snapshot); err != nil {
		log.Printf("⚠️  Error persisting cart slot: %v", err)
	}
}

// notify avisa a los observadores con un snapshot, fuera del lock
func (s *CartStore) notify() {
	s.mu.RLock()
	snapshot := s.cart.Clone()
	fns := make([]func(entity.Cart), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
