package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type idemEntry struct {
	token   string
	expires time.Time
}

// IdempotencyGuard versión en memoria del guardia de idempotencia, para desarrollo sin Redis.
type IdempotencyGuard struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]idemEntry
	now  func() time.Time
}

// NewIdempotencyGuard construye el guardia. ttl <= 0 usa 24h.
func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyGuard{ttl: ttl, keys: map[string]idemEntry{}, now: time.Now}
}

// Acquire reserva key si no está reservada o si su reserva expiró.
func (g *IdempotencyGuard) Acquire(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if e, ok := g.keys[key]; ok && now.Before(e.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	g.keys[key] = idemEntry{token: token, expires: now.Add(g.ttl)}
	return token, true, nil
}

// Release libera key si token sigue siendo el dueño.
func (g *IdempotencyGuard) Release(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.keys[key]; ok && e.token == token {
		delete(g.keys, key)
	}
	return nil
}
