package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/inventory"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/pkg/logger"
)

// AllocateStockUseCase descuenta unidades de los lotes de un producto, el más antiguo primero,
// con bloqueo de fila (SELECT FOR UPDATE) y actualización condicionada de cada lote.
type AllocateStockUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewAllocateStockUseCase construye el caso de uso.
func NewAllocateStockUseCase(txRunner TxRunner, log *logger.Logger) *AllocateStockUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AllocateStockUseCase{txRunner: txRunner, log: log}
}

// Allocate asigna quantity unidades del producto en su propia transacción.
// Si el stock no alcanza devuelve domain.ErrInsufficientStock y no modifica ningún lote.
func (uc *AllocateStockUseCase) Allocate(ctx context.Context, productID string, quantity int64) (*inventory.Allocation, error) {
	var out *inventory.Allocation
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		stockRepo repository.StockRepository,
	) error {
		alloc, err := uc.AllocateInTx(ctx, productRepo, stockRepo, productID, quantity)
		if err != nil {
			return err
		}
		out = alloc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AllocateInTx ejecuta la asignación con los repositorios del caller (misma transacción).
// Bloquea el producto y sus lotes, arma el plan y aplica cada toma con compare-and-swap,
// recalculando latest_quantity después de cada lote. Si retorna error el caller debe hacer rollback.
func (uc *AllocateStockUseCase) AllocateInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	productID string,
	quantity int64,
) (*inventory.Allocation, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: producto vacío", domain.ErrInvalidInput)
	}

	// Bloquea la fila del producto: serializa asignaciones concurrentes del mismo producto
	product, err := productRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("asignar stock: obtener producto %s: %w", productID, err)
	}
	if product == nil {
		return nil, fmt.Errorf("asignar stock: producto %s: %w", productID, domain.ErrNotFound)
	}

	lots, err := stockRepo.ListAvailableForUpdate(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("asignar stock: lotes de %s: %w", productID, err)
	}

	alloc, err := inventory.Allocate(lots, quantity)
	if err != nil {
		return nil, fmt.Errorf("asignar stock: producto %s: %w", productID, err)
	}

	for _, take := range alloc.Takes {
		if err := stockRepo.UpdateQuantity(ctx, take.LotID, take.Before, take.After); err != nil {
			return nil, fmt.Errorf("asignar stock: lote %s: %w", take.LotID, err)
		}
		if _, err := productRepo.RecomputeLatestQuantity(ctx, productID); err != nil {
			return nil, fmt.Errorf("asignar stock: recalcular cantidad de %s: %w", productID, err)
		}
	}

	uc.log.Debug().
		Str("product_id", productID).
		Int64("quantity", quantity).
		Int("lots", len(alloc.Takes)).
		Msg("stock asignado")
	return &alloc, nil
}
