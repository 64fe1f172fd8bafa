package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// GetWithLots obtiene el producto con su categoría y todos sus lotes. nil, nil si no existe.
	GetWithLots(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto bloqueando su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// RecomputeLatestQuantity recalcula latest_quantity como la suma de los lotes y la persiste.
	RecomputeLatestQuantity(ctx context.Context, id string) (int64, error)
	// List lista productos con su categoría (sin lotes) ordenados por código, y el total.
	List(ctx context.Context, limit, offset int) ([]*entity.Product, int, error)
}
