package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// QueryUseCase lecturas de pedidos.
type QueryUseCase struct {
	orderRepo repository.OrderRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(orderRepo repository.OrderRepository) *QueryUseCase {
	return &QueryUseCase{orderRepo: orderRepo}
}

// ListOrders devuelve todos los pedidos con sus líneas, el más reciente primero.
func (uc *QueryUseCase) ListOrders(ctx context.Context) ([]dto.OrderResponse, error) {
	list, err := uc.orderRepo.ListWithCarts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar pedidos: %w", err)
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}

// GetOrder devuelve un pedido con sus líneas. domain.ErrNotFound si no existe.
func (uc *QueryUseCase) GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener pedido: %w", err)
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	res := toOrderResponse(o)
	return &res, nil
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	res := dto.OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Carts:     make([]dto.CartLineResponse, 0, len(o.Carts)),
	}
	if o.DeliveryNote != nil {
		res.ReferenceNumber = o.DeliveryNote.ReferenceNumber
	}
	for _, c := range o.Carts {
		res.Carts = append(res.Carts, dto.CartLineResponse{
			ID:              c.ID,
			OrderID:         c.OrderID,
			ProductName:     c.ProductName,
			ProductCode:     c.ProductCode,
			ProductCategory: c.ProductCategory,
			ProductQuantity: c.ProductQuantity,
			CreatedAt:       c.CreatedAt,
		})
	}
	return res
}
