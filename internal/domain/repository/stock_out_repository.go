package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// StockOutRepository define el puerto para los registros de salida de stock.
type StockOutRepository interface {
	Create(ctx context.Context, record *entity.StockOut) error
	// ListByOrder devuelve las salidas registradas para una orden, en orden de creación.
	ListByOrder(ctx context.Context, orderID string) ([]*entity.StockOut, error)
}
