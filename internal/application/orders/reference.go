package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain/delivery"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// ReferenceGenerator asigna el número de remisión dentro de la transacción del pedido.
type ReferenceGenerator struct {
	daily bool
	loc   *time.Location
}

// NewReferenceGenerator construye el generador. Con daily=true el consecutivo se calcula
// solo sobre las remisiones del mismo día; si no, sobre todas.
func NewReferenceGenerator(daily bool, loc *time.Location) *ReferenceGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &ReferenceGenerator{daily: daily, loc: loc}
}

// Next toma el bloqueo de consecutivos, lee el mayor sufijo y devuelve el siguiente número.
// El bloqueo dura hasta el fin de la transacción de repo, así que dos pedidos concurrentes
// no pueden leer el mismo máximo.
func (g *ReferenceGenerator) Next(ctx context.Context, repo repository.DeliveryNoteRepository, now time.Time) (string, error) {
	if err := repo.LockReferences(ctx); err != nil {
		return "", fmt.Errorf("remisión: bloquear consecutivo: %w", err)
	}
	date := now.In(g.loc)
	prefix := delivery.Prefix
	if g.daily {
		prefix = delivery.DayPrefix(date)
	}
	max, err := repo.MaxSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("remisión: leer consecutivo: %w", err)
	}
	ref, err := delivery.Resolve(date, max)
	if err != nil {
		return "", fmt.Errorf("remisión: %w", err)
	}
	return ref, nil
}
