package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"carrito/src/cart/domain/entity"
	"carrito/src/cart/domain/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// wireProduct representa un producto tal como llega del servicio remoto.
// Los backends históricos no son consistentes en los nombres de campos,
// por eso cada campo tiene sus variantes.
type wireProduct struct {
	ID         string   `json:"id"`
	ProductoID string   `json:"producto_id"`
	Nombre     string   `json:"nombre"`
	Titulo     string   `json:"titulo"`
	Title      string   `json:"title"`
	Precio     *float64 `json:"precio"`
	Price      *float64 `json:"price"`
	Categoria  string   `json:"categoria"`
	Category   string   `json:"category"`
	Stock      *int     `json:"stock"`
}

// wireItem representa una línea del carrito remoto. El producto puede
// venir en "producto", en "product" o inline en la línea misma.
type wireItem struct {
	wireProduct
	Producto *wireProduct `json:"producto"`
	Product  *wireProduct `json:"product"`
	Cantidad *int         `json:"cantidad"`
	Quantity *int         `json:"quantity"`
}

// wireCart representa la respuesta de GET /carrito. Los totales del
// servidor no se usan: el desglose se deriva siempre del PricingEngine.
type wireCart struct {
	Items []wireItem `json:"items"`
}

// wireReceipt representa la respuesta de POST /carrito/finalizar
type wireReceipt struct {
	CompraID  json.Number `json:"compra_id"`
	CreatedAt string      `json:"created_at"`
}

// RemoteCartClient implementa RemoteCartGateway sobre HTTP.
// Normaliza las formas de respuesta inconsistentes del backend en el
// LineItem canónico: el núcleo nunca inspecciona shapes crudos.
type RemoteCartClient struct {
	httpClient *http.Client
	baseURL    string
	creds      port.CredentialProvider
}

// NewRemoteCartClient crea una nueva instancia del cliente
func NewRemoteCartClient(creds port.CredentialProvider) *RemoteCartClient {
	baseURL := os.Getenv("CART_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:4000/api" // Default para entorno local
	}

	return &RemoteCartClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		creds:   creds,
	}
}

// NewRemoteCartClientWithURL crea un cliente contra una URL explícita
func NewRemoteCartClientWithURL(baseURL string, creds port.CredentialProvider) *RemoteCartClient {
	c := NewRemoteCartClient(creds)
	c.baseURL = baseURL
	return c
}

// Fetch obtiene el carrito autoritativo usando GET /carrito
func (c *RemoteCartClient) Fetch(ctx context.Context) (*entity.Cart, error) {
	body, err := c.do(ctx, http.MethodGet, "/carrito", nil)
	if err != nil {
		return nil, err
	}
	return normalizeCart(body)
}

// Add agrega un producto usando POST /carrito
func (c *RemoteCartClient) Add(ctx context.Context, productID string, quantity int) (*entity.Cart, error) {
	reqBody := map[string]interface{}{
		"producto_id": productID,
		"cantidad":    quantity,
	}
	body, err := c.do(ctx, http.MethodPost, "/carrito", reqBody)
	if err != nil {
		return nil, err
	}
	return maybeCart(body)
}

// SetQuantity fija la cantidad usando PUT /carrito/{producto_id}.
// Cantidad 0 equivale a Remove del lado del servidor.
func (c *RemoteCartClient) SetQuantity(ctx context.Context, productID string, quantity int) (*entity.Cart, error) {
	reqBody := map[string]interface{}{
		"cantidad": quantity,
	}
	body, err := c.do(ctx, http.MethodPut, "/carrito/"+productID, reqBody)
	if err != nil {
		return nil, err
	}
	return maybeCart(body)
}

// Remove quita un producto usando DELETE /carrito/{producto_id}
func (c *RemoteCartClient) Remove(ctx context.Context, productID string) (*entity.Cart, error) {
	body, err := c.do(ctx, http.MethodDelete, "/carrito/"+productID, nil)
	if err != nil {
		return nil, err
	}
	return maybeCart(body)
}

// Cancel vacía el carrito remoto usando POST /carrito/cancelar
func (c *RemoteCartClient) Cancel(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/carrito/cancelar", nil)
	return err
}

// Finalize cierra la compra usando POST /carrito/finalizar
func (c *RemoteCartClient) Finalize(ctx context.Context, req entity.CheckoutRequest) (*entity.Receipt, error) {
	reqBody := map[string]interface{}{
		"direccion": req.Address,
		"tarjeta":   req.PaymentToken,
	}
	body, err := c.do(ctx, http.MethodPost, "/carrito/finalizar", reqBody)
	if err != nil {
		return nil, err
	}

	var wr wireReceipt
	if err := json.Unmarshal(body, &wr); err != nil {
		return nil, fmt.Errorf("error unmarshalling receipt: %w", err)
	}

	receipt := &entity.Receipt{
		ID:        wr.CompraID.String(),
		CreatedAt: time.Now(),
	}
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if wr.CreatedAt != "" {
		if ts, perr := time.Parse(time.RFC3339, wr.CreatedAt); perr == nil {
			receipt.CreatedAt = ts
		}
	}
	return receipt, nil
}

// do ejecuta una request contra el servicio de carrito y mapea los
// status de error a la taxonomía del dominio
func (c *RemoteCartClient) do(ctx context.Context, method, path string, reqBody interface{}) ([]byte, error) {
	// Sin credencial no hay llamada: el caller debe rutear a login,
	// no mostrar un error transitorio de red
	token, authenticated := c.creds.Token()
	if !authenticated {
		return nil, entity.ErrUnauthenticated
	}

	var payload io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling request: %w", err)
		}
		payload = bytes.NewBuffer(jsonData)
	}

	url := fmt.Sprintf("%s%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	// Ejecutar request; cualquier falla de transporte o timeout es ErrNetwork
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling cart service: %w (%v)", entity.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w (%v)", entity.ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, entity.ErrUnauthenticated
	case resp.StatusCode == http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", entity.ErrInsufficientStock, string(body))
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", entity.ErrValidation, string(body))
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return nil, fmt.Errorf("cart service returned status %d: %s: %w", resp.StatusCode, string(body), entity.ErrNetwork)
	}

	return body, nil
}

// normalizeCart convierte la respuesta cruda en el Cart canónico
func normalizeCart(body []byte) (*entity.Cart, error) {
	var wc wireCart
	if err := json.Unmarshal(body, &wc); err != nil {
		return nil, fmt.Errorf("error unmarshalling cart: %w", err)
	}

	cart := entity.NewCart()
	for _, wi := range wc.Items {
		item, err := normalizeItem(wi)
		if err != nil {
			return nil, err
		}
		if item.Quantity < 1 {
			// Cantidad 0 o negativa nunca entra a la vista canónica:
			// para el dominio esa línea no existe
			continue
		}
		cart.Items = append(cart.Items, item)
	}
	return &cart, nil
}

// maybeCart normaliza el carrito si la respuesta de una mutación lo trae;
// un ack sin items retorna nil y el caller reconcilia con Fetch
func maybeCart(body []byte) (*entity.Cart, error) {
	var probe struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.Items == nil {
		return nil, nil
	}
	return normalizeCart(body)
}

// normalizeItem resuelve las variantes duck-typed del backend
// (item.producto || item.product || item, cantidad ?? quantity)
func normalizeItem(wi wireItem) (entity.LineItem, error) {
	p := wi.Producto
	if p == nil {
		p = wi.Product
	}
	if p == nil {
		p = &wi.wireProduct
	}

	productID := firstNonEmpty(p.ID, p.ProductoID)
	if productID == "" {
		return entity.LineItem{}, fmt.Errorf("cart item without product id: %w", entity.ErrValidation)
	}

	quantity := 1
	if wi.Cantidad != nil {
		quantity = *wi.Cantidad
	} else if wi.Quantity != nil {
		quantity = *wi.Quantity
	}

	price := 0.0
	if p.Precio != nil {
		price = *p.Precio
	} else if p.Price != nil {
		price = *p.Price
	}

	// Si el servidor no informa stock, la cantidad ya aceptada es la
	// mejor cota conocida
	stock := quantity
	if p.Stock != nil {
		stock = *p.Stock
	}

	return entity.LineItem{
		ProductID:      productID,
		Title:          firstNonEmpty(p.Titulo, p.Nombre, p.Title),
		UnitPrice:      decimal.NewFromFloat(price),
		Category:       firstNonEmpty(p.Categoria, p.Category),
		Quantity:       quantity,
		AvailableStock: stock,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
