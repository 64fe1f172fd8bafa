package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pedidos-api/internal/domain/delivery"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.DeliveryNoteRepository = (*DeliveryNoteRepo)(nil)

// referenceLockKey clave del advisory lock que serializa la asignación de consecutivos.
const referenceLockKey int64 = 0x444E_0001

// DeliveryNoteRepo implementación de DeliveryNoteRepository sobre la tabla delivery_notes.
type DeliveryNoteRepo struct {
	q Querier
}

// NewDeliveryNoteRepository construye el adaptador. Debe recibir una tx para que
// LockReferences tenga efecto.
func NewDeliveryNoteRepository(q Querier) *DeliveryNoteRepo {
	return &DeliveryNoteRepo{q: q}
}

// LockReferences toma pg_advisory_xact_lock; se libera con el commit o rollback.
func (r *DeliveryNoteRepo) LockReferences(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, referenceLockKey); err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	return nil
}

// MaxSequence devuelve max(right(reference_number, 6)) entre las remisiones con el prefijo dado.
func (r *DeliveryNoteRepo) MaxSequence(ctx context.Context, prefix string) (*int64, error) {
	var max *int64
	err := r.q.QueryRow(ctx, `
		SELECT max(right(reference_number, $2)::bigint)
		FROM delivery_notes
		WHERE reference_number LIKE $1 || '%'`, prefix, delivery.SequenceWidth).Scan(&max)
	if err != nil {
		return nil, fmt.Errorf("max reference sequence: %w", err)
	}
	return max, nil
}

// Create inserta la remisión. Un número u orden repetidos devuelven domain.ErrConflict.
func (r *DeliveryNoteRepo) Create(ctx context.Context, note *entity.DeliveryNote) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO delivery_notes (id, order_id, reference_number, created_at)
		VALUES ($1, $2, $3, $4)`,
		note.ID, note.OrderID, note.ReferenceNumber, note.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errConflict(err)
		}
		return fmt.Errorf("insert delivery note: %w", err)
	}
	return nil
}
