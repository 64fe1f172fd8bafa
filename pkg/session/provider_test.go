package session

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetcherFunc func(ctx context.Context) (*User, error)

func (f fetcherFunc) FetchMe(ctx context.Context) (*User, error) { return f(ctx) }

func TestProvider_LoadExitoso(t *testing.T) {
	want := &User{UserID: "u-1", Username: "ana", Fullname: "Ana Gómez", Role: "admin", ID: "u-1"}
	p := NewProvider(fetcherFunc(func(context.Context) (*User, error) { return want, nil }), nil)

	p.Load(context.Background())

	s := p.State()
	assert.True(t, s.Authenticated)
	assert.Equal(t, *want, *s.User)
	assert.False(t, s.Loading)
}

func TestProvider_LoadFallidoTerminaCarga(t *testing.T) {
	p := NewProvider(fetcherFunc(func(context.Context) (*User, error) {
		return nil, errors.New("red caída")
	}), nil)

	p.Load(context.Background())

	s := p.State()
	assert.False(t, s.Authenticated)
	assert.Nil(t, s.User)
	assert.False(t, s.Loading)
}

func TestProvider_DispatchDesconocido(t *testing.T) {
	p := NewProvider(nil, nil)
	assert.Error(t, p.Dispatch("NOPE", nil))
	assert.Equal(t, Initial(), p.State())
}

func TestProvider_StateEsCopia(t *testing.T) {
	p := NewProvider(nil, nil)
	require.NoError(t, p.Dispatch(ActionLogin, &User{Username: "ana"}))

	s := p.State()
	s.User.Username = "otro"
	assert.Equal(t, "ana", p.State().User.Username)
}

// ── HTTPFetcher contra un servidor fiber real ────────────────────────────────

func startServer(t *testing.T) string {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/api/auth/me", func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "Bearer buen-token" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"code": "UNAUTHORIZED"})
		}
		return c.JSON(User{UserID: "u-1", Username: "ana", Fullname: "Ana", Role: "vendedor", ID: "u-1"})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

func TestHTTPFetcher_FetchMe(t *testing.T) {
	base := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	u, err := NewHTTPFetcher(base, "buen-token").FetchMe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
	assert.Equal(t, u.UserID, u.ID)

	_, err = NewHTTPFetcher(base, "malo").FetchMe(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestHTTPFetcher_ProviderSinToken(t *testing.T) {
	base := startServer(t)

	p := NewProvider(NewHTTPFetcher(base, ""), nil)
	p.Load(context.Background())

	s := p.State()
	assert.False(t, s.Authenticated)
	assert.False(t, s.Loading)
}
