package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pedidos-api/pkg/jwt"
)

const secret = "test-secret"

func newUseCase(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave-123"), bcrypt.MinCost)
	require.NoError(t, err)

	s := memory.New()
	s.AddUser(entity.User{ID: "u-1", Username: "ana", Fullname: "Ana Gómez", PasswordHash: string(hash), Role: entity.RoleBodeguero, Status: "active"})
	s.AddUser(entity.User{ID: "u-2", Username: "luis", PasswordHash: string(hash), Role: entity.RoleVendedor, Status: "inactive"})
	return auth.NewAuthUseCase(s.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"})
}

func TestLogin_Exitoso(t *testing.T) {
	uc := newUseCase(t)

	res, err := uc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "clave-123"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", res.User.ID)
	assert.Equal(t, res.User.ID, res.User.UserID)

	id, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, jwt.Identity{UserID: "u-1", Username: "ana", Role: entity.RoleBodeguero}, id)
}

func TestLogin_Errores(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "luis", Password: "clave-123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMe(t *testing.T) {
	uc := newUseCase(t)

	me, err := uc.Me(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, dto.MeResponse{UserID: "u-1", Username: "ana", Fullname: "Ana Gómez", Role: entity.RoleBodeguero, ID: "u-1"}, *me)

	_, err = uc.Me(context.Background(), "u-9")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
