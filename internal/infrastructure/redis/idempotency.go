// Package redis guarda claves de idempotencia para los POST de pedidos.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/pedidos-api/pkg/config"
)

const idempotencyKeyPrefix = "idem:orders:"

// releaseScript borra la clave solo si sigue siendo del mismo dueño.
var releaseScript = goredis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// IdempotencyGuard reserva claves con SETNX y TTL.
type IdempotencyGuard struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewIdempotencyGuard construye el guardia. ttl <= 0 usa 24h.
func NewIdempotencyGuard(client *goredis.Client, ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyGuard{client: client, ttl: ttl}
}

// Acquire reserva key. ok=false si ya estaba reservada (request duplicado).
// token identifica la reserva para poder liberarla.
func (g *IdempotencyGuard) Acquire(ctx context.Context, key string) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = g.client.SetNX(ctx, idempotencyKeyPrefix+key, token, g.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis: reservar clave: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release libera la reserva si token sigue siendo el dueño; así un reintento puede volver a usar la clave.
func (g *IdempotencyGuard) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{idempotencyKeyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("redis: liberar clave: %w", err)
	}
	return nil
}
