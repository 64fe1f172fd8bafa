package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pedidos-api/internal/domain"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/pedidos?sslmode=disable", migrateURL("postgres://u:p@db:5432/pedidos?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/pedidos", migrateURL("postgresql://u@db/pedidos"))
	assert.Equal(t, "pgx5://ya", migrateURL("pgx5://ya"))
}

func TestCodigosPostgres(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isInvalidText(unique))

	assert.True(t, isInvalidText(&pgconn.PgError{Code: "22P02"}))
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("otro")))
}

func TestErrConflict(t *testing.T) {
	err := errConflict(&pgconn.PgError{Code: "23505", Message: "duplicate key"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "duplicate key")
}
