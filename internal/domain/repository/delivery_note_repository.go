package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// DeliveryNoteRepository define el puerto para remisiones y su consecutivo.
type DeliveryNoteRepository interface {
	// LockReferences serializa la asignación de consecutivos hasta el fin de la transacción.
	LockReferences(ctx context.Context) error
	// MaxSequence devuelve el mayor sufijo numérico (últimos 6 caracteres) entre las remisiones
	// cuyo número empieza por prefix. nil si no hay ninguna.
	MaxSequence(ctx context.Context, prefix string) (*int64, error)
	// Create persiste la remisión. Devuelve domain.ErrConflict si el número ya existe.
	Create(ctx context.Context, note *entity.DeliveryNote) error
}
