package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/pkg/logger"
)

// HeaderIdempotencyKey header opcional para deduplicar POST /api/orders.
const HeaderIdempotencyKey = "Idempotency-Key"

// Respuestas genéricas del contrato HTTP; el detalle va al log.
var (
	errInvalidRequest = dto.ErrorResponse{Code: "VALIDATION", Message: "Invalid request"}
	errInternal       = dto.ErrorResponse{Code: "INTERNAL", Message: "Something went wrong"}
	errDuplicate      = dto.ErrorResponse{Code: "DUPLICATE_REQUEST", Message: "Duplicate request"}
	errNotFound       = dto.ErrorResponse{Code: "NOT_FOUND", Message: "Not found"}
)

// IdempotencyGuard reserva claves de idempotencia. Lo implementan
// infrastructure/redis (producción) e infrastructure/memory (desarrollo).
type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// Idempotency rechaza con 409 una petición cuya Idempotency-Key ya está reservada.
// Sin header la petición pasa. Si el handler falla (error o 5xx) la clave se libera
// para permitir reintentar; en éxito queda reservada hasta su TTL.
func Idempotency(guard IdempotencyGuard, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || guard == nil {
			return c.Next()
		}
		token, ok, err := guard.Acquire(c.UserContext(), key)
		if err != nil {
			log.Error().Err(err).Str("idempotency_key", key).Msg("reservar clave de idempotencia")
			return c.Status(fiber.StatusInternalServerError).JSON(errInternal)
		}
		if !ok {
			log.Warn().Str("idempotency_key", key).Str("user_id", GetUserID(c)).Msg("petición duplicada")
			return c.Status(fiber.StatusConflict).JSON(errDuplicate)
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusInternalServerError {
			// El contexto del request puede estar cancelado; liberar con uno propio.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if rerr := guard.Release(releaseCtx, key, token); rerr != nil {
				log.Error().Err(rerr).Str("idempotency_key", key).Msg("liberar clave de idempotencia")
			}
		}
		return err
	}
}

// RequestLogger registra cada petición con método, ruta, status, latencia y usuario.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if err != nil {
			status = fiber.StatusInternalServerError
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Str("request_id", requestID(c)).
			Msg("http")
		return err
	}
}

// ErrorHandler respuesta final para errores no manejados por los handlers.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			if fe.Code == fiber.StatusNotFound {
				return c.Status(fe.Code).JSON(errNotFound)
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		log.Error().Err(err).Str("path", c.Path()).Str("request_id", requestID(c)).Msg("error no manejado")
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal)
	}
}

func requestID(c *fiber.Ctx) string {
	if v, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return v
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
