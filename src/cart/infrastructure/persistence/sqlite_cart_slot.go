package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"carrito/src/cart/domain/entity"
	"carrito/src/cart/domain/port"
)

// SqliteCartSlot implementa CartSlot sobre SQLite.
// Un único registro por sesión anónima: el carrito serializado como JSON.
// El CartStore hace write-through acá en cada cambio local, así una
// recarga de página no pierde el carrito de un visitante sin sesión.
type SqliteCartSlot struct {
	db        *sql.DB
	sessionID string
}

// NewSqliteCartSlot crea el slot para una sesión anónima
func NewSqliteCartSlot(db *sql.DB, sessionID string) port.CartSlot {
	return &SqliteCartSlot{
		db:        db,
		sessionID: sessionID,
	}
}

// EnsureSchema crea la tabla del slot si no existe
func EnsureSchema(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS cart_slots (
			session_id TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("error creating cart_slots table: %w", err)
	}
	return nil
}

// Load retorna el carrito persistido, o (nil, nil) si el slot está vacío
func (s *SqliteCartSlot) Load(ctx context.Context) (*entity.Cart, error) {
	query := `SELECT payload FROM cart_slots WHERE session_id = ?`

	var payload string
	err := s.db.QueryRowContext(ctx, query, s.sessionID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading cart slot: %w", err)
	}

	var cart entity.Cart
	if err := json.Unmarshal([]byte(payload), &cart); err != nil {
		return nil, fmt.Errorf("error unmarshalling cart slot: %w", err)
	}
	return &cart, nil
}

// Save persiste el snapshot del carrito (upsert)
func (s *SqliteCartSlot) Save(ctx context.Context, cart *entity.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("error marshalling cart slot: %w", err)
	}

	query := `
		INSERT INTO cart_slots (session_id, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, s.sessionID, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("error saving cart slot: %w", err)
	}
	return nil
}

// Clear vacía el slot de la sesión
func (s *SqliteCartSlot) Clear(ctx context.Context) error {
	query := `DELETE FROM cart_slots WHERE session_id = ?`
	if _, err := s.db.ExecContext(ctx, query, s.sessionID); err != nil {
		return fmt.Errorf("error clearing cart slot: %w", err)
	}
	return nil
}
