package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/pedidos-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isInvalidText verifica si un parámetro no es válido para el tipo de la columna (22P02),
// por ejemplo un ID que no es UUID. Los repos lo tratan como "no existe".
func isInvalidText(err error) bool {
	return hasCode(err, "22P02")
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return strings.Contains(err.Error(), "SQLSTATE "+code)
}

// errConflict envuelve err como domain.ErrConflict conservando el detalle de PostgreSQL.
func errConflict(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrConflict, err)
}
