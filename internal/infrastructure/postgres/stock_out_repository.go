package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.StockOutRepository = (*StockOutRepo)(nil)

// StockOutRepo implementación de StockOutRepository sobre la tabla stock_outs.
type StockOutRepo struct {
	q Querier
}

// NewStockOutRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockOutRepository(q Querier) *StockOutRepo {
	return &StockOutRepo{q: q}
}

// Create registra una salida de stock.
func (r *StockOutRepo) Create(ctx context.Context, record *entity.StockOut) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_outs (id, product_id, order_id, user_id, price, quantity, category, created_month, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.ID, record.ProductID, record.OrderID, record.UserID, record.Price,
		record.Quantity, record.Category, record.CreatedMonth, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock out: %w", err)
	}
	return nil
}

// ListByOrder devuelve las salidas de una orden.
func (r *StockOutRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.StockOut, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, order_id, user_id, price, quantity, category, created_month, created_at
		FROM stock_outs WHERE order_id = $1
		ORDER BY created_at, seq`, orderID)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list stock outs: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockOut
	for rows.Next() {
		var so entity.StockOut
		if err := rows.Scan(&so.ID, &so.ProductID, &so.OrderID, &so.UserID, &so.Price,
			&so.Quantity, &so.Category, &so.CreatedMonth, &so.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock out: %w", err)
		}
		out = append(out, &so)
	}
	return out, rows.Err()
}
