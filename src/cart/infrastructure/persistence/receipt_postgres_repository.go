package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"carrito/src/cart/domain/entity"
	"carrito/src/cart/domain/port"

	"github.com/shopspring/decimal"
)

// ReceiptPostgresRepository implementa ReceiptRepository usando PostgreSQL.
// Los comprobantes son inmutables: solo insert y select.
type ReceiptPostgresRepository struct {
	db *sql.DB
}

// NewReceiptPostgresRepository crea una nueva instancia del repositorio
func NewReceiptPostgresRepository(db *sql.DB) port.ReceiptRepository {
	return &ReceiptPostgresRepository{
		db: db,
	}
}

// Create persiste un comprobante con sus items en una transacción
func (r *ReceiptPostgresRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	// Iniciar transacción para garantizar atomicidad
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	taxByCategory, err := marshalTaxByCategory(receipt.Breakdown.TaxByCategory)
	if err != nil {
		return fmt.Errorf("error marshalling tax breakdown: %w", err)
	}

	// 1. Insertar receipt (aggregate root)
	queryReceipt := `
		INSERT INTO receipts (
			id, subtotal, tax, tax_by_category, shipping, total, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err = tx.ExecContext(ctx, queryReceipt,
		receipt.ID,
		receipt.Breakdown.Subtotal,
		receipt.Breakdown.TaxTotal(),
		taxByCategory,
		receipt.Breakdown.Shipping,
		receipt.Breakdown.Total,
		receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating receipt: %w", err)
	}

	// 2. Insertar receipt_items (snapshots de línea)
	queryItem := `
		INSERT INTO receipt_items (
			receipt_id, product_id, title, category,
			quantity, unit_price
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	for _, item := range receipt.Items {
		_, err = tx.ExecContext(ctx, queryItem,
			receipt.ID,
			item.ProductID,
			item.Title,
			item.Category,
			item.Quantity,
			item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("error creating receipt_item for product %s: %w", item.ProductID, err)
		}
	}

	// Commit transacción
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// FindByID retorna un comprobante CON sus items
func (r *ReceiptPostgresRepository) FindByID(ctx context.Context, receiptID string) (*entity.Receipt, error) {
	queryReceipt := `
		SELECT id, subtotal, tax_by_category, shipping, total, created_at
		FROM receipts
		WHERE id = $1
	`

	receipt := &entity.Receipt{}
	var taxByCategory []byte
	err := r.db.QueryRowContext(ctx, queryReceipt, receiptID).Scan(
		&receipt.ID,
		&receipt.Breakdown.Subtotal,
		&taxByCategory,
		&receipt.Breakdown.Shipping,
		&receipt.Breakdown.Total,
		&receipt.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("receipt %s not found", receiptID)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying receipt: %w", err)
	}

	receipt.Breakdown.TaxByCategory, err = unmarshalTaxByCategory(taxByCategory)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling tax breakdown: %w", err)
	}

	queryItems := `
		SELECT product_id, title, category, quantity, unit_price
		FROM receipt_items
		WHERE receipt_id = $1
	`

	rows, err := r.db.QueryContext(ctx, queryItems, receiptID)
	if err != nil {
		return nil, fmt.Errorf("error querying receipt_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := entity.LineItem{}
		err := rows.Scan(
			&item.ProductID,
			&item.Title,
			&item.Category,
			&item.Quantity,
			&item.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning receipt_item: %w", err)
		}
		item.AvailableStock = item.Quantity
		receipt.Items = append(receipt.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipt_items: %w", err)
	}

	return receipt, nil
}

// marshalTaxByCategory serializa el IVA por categoría para la columna JSON
func marshalTaxByCategory(taxes map[string]decimal.Decimal) ([]byte, error) {
	if taxes == nil {
		taxes = map[string]decimal.Decimal{}
	}
	return json.Marshal(taxes)
}

// unmarshalTaxByCategory reconstruye el mapa; una columna vacía o NULL
// (comprobantes previos al desglose por categoría) da un mapa vacío
func unmarshalTaxByCategory(raw []byte) (map[string]decimal.Decimal, error) {
	if len(raw) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	taxes := map[string]decimal.Decimal{}
	if err := json.Unmarshal(raw, &taxes); err != nil {
		return nil, err
	}
	return taxes, nil
}
