package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre la tabla stocks (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// ListAvailableForUpdate obtiene los lotes con unidades, más antiguo primero, y bloquea sus filas.
func (r *StockRepo) ListAvailableForUpdate(ctx context.Context, productID string) ([]entity.StockLot, error) {
	lots, err := listLots(ctx, r.q, `
		SELECT id, product_id, quantity, price, created_at, updated_at
		FROM stocks
		WHERE product_id = $1 AND quantity > 0
		ORDER BY created_at, id
		FOR UPDATE`, productID)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list lots for update: %w", err)
	}
	return lots, nil
}

// UpdateQuantity actualiza la cantidad del lote solo si aún vale expected.
func (r *StockRepo) UpdateQuantity(ctx context.Context, lotID string, expected, quantity int64) error {
	if quantity < 0 {
		return fmt.Errorf("%w: cantidad negativa %d", domain.ErrInvalidInput, quantity)
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE stocks SET quantity = $3, updated_at = now()
		WHERE id = $1 AND quantity = $2`, lotID, expected, quantity)
	if err != nil {
		return fmt.Errorf("update lot quantity: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stocks WHERE id = $1)`, lotID).Scan(&exists); err != nil {
		return fmt.Errorf("check lot: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return fmt.Errorf("%w: lote %s cambió, se esperaba %d", domain.ErrConflict, lotID, expected)
}

// ListByProduct devuelve todos los lotes del producto, agotados incluidos.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]entity.StockLot, error) {
	lots, err := listLots(ctx, r.q, `
		SELECT id, product_id, quantity, price, created_at, updated_at
		FROM stocks WHERE product_id = $1
		ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}

// Create inserta un lote (carga de inventario y tests).
func (r *StockRepo) Create(ctx context.Context, lot *entity.StockLot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stocks (id, product_id, quantity, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		lot.ID, lot.ProductID, lot.Quantity, lot.Price, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func listLots(ctx context.Context, q Querier, query string, args ...any) ([]entity.StockLot, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []entity.StockLot
	for rows.Next() {
		var l entity.StockLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Quantity, &l.Price, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}
