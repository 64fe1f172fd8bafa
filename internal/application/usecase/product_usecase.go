package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// ProductUseCase consultas del catálogo. El stock solo cambia al crear pedidos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// List devuelve una página de productos ordenados por código.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, total, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, toProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// GetByID devuelve el producto con sus lotes, el más antiguo primero. domain.ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetWithLots(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := toProductResponse(p)
	out.Lots = make([]dto.LotResponse, 0, len(p.Lots))
	for _, l := range p.Lots {
		out.Lots = append(out.Lots, dto.LotResponse{
			ID:        l.ID,
			Quantity:  l.Quantity,
			Price:     l.Price,
			CreatedAt: l.CreatedAt,
		})
	}
	return &out, nil
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Category:       p.CategoryTitle(),
		LatestQuantity: p.LatestQuantity,
	}
}
