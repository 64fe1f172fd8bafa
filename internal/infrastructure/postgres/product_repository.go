package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetWithLots obtiene el producto con su categoría y todos sus lotes (agotados incluidos).
func (r *ProductRepo) GetWithLots(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT p.id, p.category_id, p.name, p.code, p.latest_quantity, p.created_at, p.updated_at,
		       c.id, c.title, c.created_at, c.updated_at
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`
	var p entity.Product
	var c entity.Category
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Code, &p.LatestQuantity, &p.CreatedAt, &p.UpdatedAt,
		&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	p.Category = &c

	lots, err := listLots(ctx, r.q, `
		SELECT id, product_id, quantity, price, created_at, updated_at
		FROM stocks WHERE product_id = $1
		ORDER BY created_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("get product lots: %w", err)
	}
	p.Lots = lots
	return &p, nil
}

// GetForUpdate obtiene el producto y bloquea la fila para update (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, category_id, name, code, latest_quantity, created_at, updated_at
		FROM products WHERE id = $1
		FOR UPDATE`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Code, &p.LatestQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return &p, nil
}

// RecomputeLatestQuantity fija latest_quantity a la suma de los lotes del producto.
func (r *ProductRepo) RecomputeLatestQuantity(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE products
		SET latest_quantity = (SELECT COALESCE(SUM(quantity), 0) FROM stocks WHERE product_id = $1),
		    updated_at = now()
		WHERE id = $1
		RETURNING latest_quantity`
	var qty int64
	if err := r.q.QueryRow(ctx, query, id).Scan(&qty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("recompute latest quantity: %w", err)
	}
	return qty, nil
}

// List lista productos con su categoría ordenados por código; total es el conteo sin paginar.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, int, error) {
	query := `
		SELECT p.id, p.category_id, p.name, p.code, p.latest_quantity, p.created_at, p.updated_at,
		       c.id, c.title, c.created_at, c.updated_at,
		       count(*) OVER ()
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY p.code
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		out   []*entity.Product
		total int
	)
	for rows.Next() {
		var p entity.Product
		var c entity.Category
		if err := rows.Scan(
			&p.ID, &p.CategoryID, &p.Name, &p.Code, &p.LatestQuantity, &p.CreatedAt, &p.UpdatedAt,
			&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		p.Category = &c
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if len(out) == 0 && offset > 0 {
		// Con OFFSET fuera de rango no hay filas para leer el total.
		if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}
	return out, total, nil
}
