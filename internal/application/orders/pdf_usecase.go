package orders

import (
	"context"
	"fmt"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// DeliveryNotePDFUseCase genera el PDF de la remisión de un pedido.
type DeliveryNotePDFUseCase struct {
	orderRepo repository.OrderRepository
	generator DeliveryNotePDFGenerator
}

// NewDeliveryNotePDFUseCase construye el caso de uso inyectando sus dependencias.
func NewDeliveryNotePDFUseCase(orderRepo repository.OrderRepository, generator DeliveryNotePDFGenerator) *DeliveryNotePDFUseCase {
	return &DeliveryNotePDFUseCase{orderRepo: orderRepo, generator: generator}
}

// Render recupera el pedido con carrito y remisión y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si el pedido no existe o no tiene remisión.
func (uc *DeliveryNotePDFUseCase) Render(ctx context.Context, orderID string) (pdfBytes []byte, filename string, err error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener pedido: %w", err)
	}
	if order == nil || order.DeliveryNote == nil {
		return nil, "", domain.ErrNotFound
	}

	pdfBytes, err = uc.generator.GenerateDeliveryNotePDF(ctx, order)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("remision_%s.pdf", order.DeliveryNote.ReferenceNumber)
	return pdfBytes, filename, nil
}
