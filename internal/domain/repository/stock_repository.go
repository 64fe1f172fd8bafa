package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// StockRepository define el puerto para los lotes de stock de un producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// ListAvailableForUpdate devuelve los lotes con cantidad > 0, más antiguo primero,
	// bloqueando sus filas (SELECT FOR UPDATE).
	ListAvailableForUpdate(ctx context.Context, productID string) ([]entity.StockLot, error)
	// UpdateQuantity fija la cantidad del lote solo si su valor actual es expected.
	// Devuelve domain.ErrConflict si el lote cambió entre la lectura y la escritura.
	UpdateQuantity(ctx context.Context, lotID string, expected, quantity int64) error
}
