package orders

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/inventory"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye todos los repos de un pedido.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
		stockOutRepo repository.StockOutRepository,
		noteRepo repository.DeliveryNoteRepository,
	) error) error
}

// StockAllocator integra pedidos con inventario.
// AllocateInTx asigna stock usando los repositorios del caller (misma transacción).
// Si retorna error (ej: ErrInsufficientStock), el caller debe hacer rollback.
type StockAllocator interface {
	AllocateInTx(
		ctx context.Context,
		productRepo repository.ProductRepository,
		stockRepo repository.StockRepository,
		productID string,
		quantity int64,
	) (*inventory.Allocation, error)
}

// DeliveryNotePDFGenerator genera el documento de una remisión.
type DeliveryNotePDFGenerator interface {
	GenerateDeliveryNotePDF(ctx context.Context, order *entity.Order) ([]byte, error)
}
