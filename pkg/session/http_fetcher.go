package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrUnauthenticated el servidor respondió 401/403 a /api/auth/me.
var ErrUnauthenticated = errors.New("session: no autenticado")

// HTTPFetcher consulta /api/auth/me con el cliente HTTP de fiber.
type HTTPFetcher struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// NewHTTPFetcher construye el fetcher contra baseURL (ej. http://localhost:8080).
func NewHTTPFetcher(baseURL, token string) *HTTPFetcher {
	return &HTTPFetcher{BaseURL: strings.TrimRight(baseURL, "/"), Token: token, Timeout: 10 * time.Second}
}

// FetchMe implementa Fetcher.
func (f *HTTPFetcher) FetchMe(ctx context.Context) (*User, error) {
	var user User
	if err := f.getJSON(ctx, "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetJSON hace GET autenticado sobre path y decodifica la respuesta en out.
func (f *HTTPFetcher) GetJSON(ctx context.Context, path string, out any) error {
	return f.getJSON(ctx, path, out)
}

func (f *HTTPFetcher) getJSON(ctx context.Context, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := f.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout || timeout == 0 {
			timeout = left
		}
	}

	a := fiber.Get(f.BaseURL + path)
	if f.Token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+f.Token)
	}
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if timeout > 0 {
		a.Timeout(timeout)
	}
	if err := a.Parse(); err != nil {
		return fmt.Errorf("session: preparar request: %w", err)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("session: GET %s: %w", path, errors.Join(errs...))
	}
	switch {
	case code == fiber.StatusUnauthorized || code == fiber.StatusForbidden:
		return ErrUnauthenticated
	case code != fiber.StatusOK:
		return fmt.Errorf("session: GET %s: status %d", path, code)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("session: decodificar respuesta: %w", err)
	}
	return nil
}
