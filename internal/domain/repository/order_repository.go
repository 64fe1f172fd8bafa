package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para órdenes y sus líneas de carrito.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateCartLine(ctx context.Context, line *entity.CartLine) error
	// GetByID obtiene la orden con sus líneas y remisión. nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// ListWithCarts devuelve todas las órdenes con sus líneas, la más reciente primero.
	ListWithCarts(ctx context.Context) ([]*entity.Order, error)
}
