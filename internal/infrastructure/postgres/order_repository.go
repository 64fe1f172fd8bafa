package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre las tablas orders y carts.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la cabecera de la orden.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO orders (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`,
		order.ID, order.UserID, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateCartLine inserta una línea de carrito.
func (r *OrderRepo) CreateCartLine(ctx context.Context, line *entity.CartLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO carts (id, order_id, position, product_name, product_code, product_category, product_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		line.ID, line.OrderID, line.Position, line.ProductName, line.ProductCode,
		line.ProductCategory, line.ProductQuantity, line.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cart line: %w", err)
	}
	return nil
}

const orderWithCartsQuery = `
	SELECT o.id, o.user_id, o.created_at, o.updated_at,
	       n.id, n.reference_number, n.created_at,
	       c.id, c.position, c.product_name, c.product_code, c.product_category, c.product_quantity, c.created_at
	FROM orders o
	LEFT JOIN delivery_notes n ON n.order_id = o.id
	LEFT JOIN carts c ON c.order_id = o.id`

// GetByID obtiene la orden con carrito y remisión. nil, nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	list, err := r.query(ctx, orderWithCartsQuery+`
		WHERE o.id = $1
		ORDER BY c.position`, id)
	if err != nil {
		if isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListWithCarts devuelve todas las órdenes con sus líneas, la más reciente primero.
func (r *OrderRepo) ListWithCarts(ctx context.Context) ([]*entity.Order, error) {
	list, err := r.query(ctx, orderWithCartsQuery+`
		ORDER BY o.created_at DESC, o.id DESC, c.position`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

// query agrupa las filas del join por orden, respetando el orden de llegada.
func (r *OrderRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Order
	byID := map[string]*entity.Order{}
	for rows.Next() {
		var o entity.Order
		var noteID, noteRef *string
		var noteAt *time.Time
		var cartID, name, code, category *string
		var position *int
		var qty *int64
		var cartAt *time.Time
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.CreatedAt, &o.UpdatedAt,
			&noteID, &noteRef, &noteAt,
			&cartID, &position, &name, &code, &category, &qty, &cartAt,
		); err != nil {
			return nil, err
		}

		current, ok := byID[o.ID]
		if !ok {
			current = &o
			if noteID != nil {
				current.DeliveryNote = &entity.DeliveryNote{
					ID: *noteID, OrderID: o.ID, ReferenceNumber: *noteRef, CreatedAt: *noteAt,
				}
			}
			byID[o.ID] = current
			out = append(out, current)
		}
		if cartID != nil {
			current.Carts = append(current.Carts, entity.CartLine{
				ID:              *cartID,
				OrderID:         o.ID,
				Position:        *position,
				ProductName:     *name,
				ProductCode:     *code,
				ProductCategory: *category,
				ProductQuantity: *qty,
				CreatedAt:       *cartAt,
			})
		}
	}
	return out, rows.Err()
}
