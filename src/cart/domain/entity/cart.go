package entity

// CartStatus representa el estado observable del carrito
type CartStatus string

const (
	CartStatusIdle    CartStatus = "idle"
	CartStatusLoading CartStatus = "loading"
	CartStatusError   CartStatus = "error"
)

// Cart representa el carrito de compras (Aggregate Root)
// Los items mantienen orden de inserción y producto_id único.
// Solo el CartStore muta esta estructura; el resto del sistema
// trabaja sobre copias.
type Cart struct {
	Items  []LineItem `json:"items"`
	Status CartStatus `json:"status"`
}

// NewCart crea un carrito vacío en estado idle
func NewCart() Cart {
	return Cart{Items: []LineItem{}, Status: CartStatusIdle}
}

// IsEmpty indica si el carrito no tiene items
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalItems retorna el número de líneas del carrito
func (c Cart) TotalItems() int {
	return len(c.Items)
}

// Find retorna el índice del item con ese producto_id, o -1 si no existe
func (c Cart) Find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone retorna una copia profunda del carrito
func (c Cart) Clone() Cart {
	out := Cart{
		Items:  make([]LineItem, len(c.Items)),
		Status: c.Status,
	}
	copy(out.Items, c.Items)
	return out
}

// MutationKind identifica el tipo de delta local sobre el carrito
type MutationKind string

const (
	// MutationUpsert agrega un producto nuevo o incrementa su cantidad
	MutationUpsert MutationKind = "upsert"
	// MutationSetQuantity fija la cantidad de un producto existente (0 = quitar)
	MutationSetQuantity MutationKind = "set_quantity"
	// MutationAdjust suma un delta (positivo o negativo) a un producto existente
	MutationAdjust MutationKind = "adjust"
	// MutationRemove quita un producto del carrito
	MutationRemove MutationKind = "remove"
	// MutationRestore reinserta un item eliminado en su posición original
	MutationRestore MutationKind = "restore"
	// MutationNone indica que no hubo cambio (mutación sobre producto ausente)
	MutationNone MutationKind = "none"
)

// Mutation representa un delta local sobre el carrito.
// El inverso retornado por Apply permite hacer rollback del delta exacto
// cuando la llamada remota falla, sin pisar cambios no relacionados.
type Mutation struct {
	Kind      MutationKind
	ProductID string
	Quantity  int
	Item      *LineItem // datos del producto para altas y restauraciones
	Index     int       // posición original, usado por MutationRestore
}

// Apply aplica una mutación al carrito y retorna la mutación inversa.
//
// Reglas:
//   - cantidad resultante 0 o menor quita el item en lugar de dejarlo en 0
//   - el stock se valida solo cuando la cantidad aumenta; bajar cantidad
//     nunca re-chequea stock
//   - mutar un producto ausente es un no-op (inversa MutationNone), no un error
//   - producto_id se mantiene único: un alta sobre un producto existente
//     incrementa su cantidad
func (c *Cart) Apply(m Mutation) (Mutation, error) {
	switch m.Kind {
	case MutationUpsert:
		if m.Item == nil {
			return Mutation{Kind: MutationNone}, ErrProductIDRequired
		}
		if m.Quantity <= 0 {
			return Mutation{Kind: MutationNone}, ErrInvalidQuantity
		}
		idx := c.Find(m.Item.ProductID)
		if idx >= 0 {
			prev := c.Items[idx].Quantity
			next := prev + m.Quantity
			if next > c.Items[idx].AvailableStock {
				return Mutation{Kind: MutationNone}, ErrInsufficientStock
			}
			c.Items[idx].Quantity = next
			return Mutation{Kind: MutationSetQuantity, ProductID: m.Item.ProductID, Quantity: prev}, nil
		}
		if m.Quantity > m.Item.AvailableStock {
			return Mutation{Kind: MutationNone}, ErrInsufficientStock
		}
		item := *m.Item
		item.Quantity = m.Quantity
		c.Items = append(c.Items, item)
		return Mutation{Kind: MutationRemove, ProductID: item.ProductID}, nil

	case MutationSetQuantity:
		idx := c.Find(m.ProductID)
		if idx < 0 {
			return Mutation{Kind: MutationNone}, nil
		}
		return c.setQuantityAt(idx, m.Quantity)

	case MutationAdjust:
		idx := c.Find(m.ProductID)
		if idx < 0 {
			return Mutation{Kind: MutationNone}, nil
		}
		return c.setQuantityAt(idx, c.Items[idx].Quantity+m.Quantity)

	case MutationRemove:
		idx := c.Find(m.ProductID)
		if idx < 0 {
			return Mutation{Kind: MutationNone}, nil
		}
		return c.removeAt(idx)

	case MutationRestore:
		if m.Item == nil {
			return Mutation{Kind: MutationNone}, ErrProductIDRequired
		}
		idx := m.Index
		if idx < 0 || idx > len(c.Items) {
			idx = len(c.Items)
		}
		item := *m.Item
		c.Items = append(c.Items, LineItem{})
		copy(c.Items[idx+1:], c.Items[idx:])
		c.Items[idx] = item
		return Mutation{Kind: MutationRemove, ProductID: item.ProductID}, nil

	case MutationNone:
		return Mutation{Kind: MutationNone}, nil
	}

	return Mutation{Kind: MutationNone}, nil
}

// setQuantityAt fija la cantidad del item en idx; 0 o menos lo quita.
// El stock se valida solo al subir la cantidad.
func (c *Cart) setQuantityAt(idx, quantity int) (Mutation, error) {
	prev := c.Items[idx].Quantity
	if quantity <= 0 {
		return c.removeAt(idx)
	}
	if quantity > prev && quantity > c.Items[idx].AvailableStock {
		return Mutation{Kind: MutationNone}, ErrInsufficientStock
	}
	c.Items[idx].Quantity = quantity
	return Mutation{Kind: MutationSetQuantity, ProductID: c.Items[idx].ProductID, Quantity: prev}, nil
}

// removeAt quita el item en idx y arma la inversa que lo restaura en su lugar
func (c *Cart) removeAt(idx int) (Mutation, error) {
	removed := c.Items[idx]
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return Mutation{Kind: MutationRestore, Item: &removed, Index: idx}, nil
}
