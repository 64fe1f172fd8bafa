package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/pkg/logger"
)

// OrderHandler maneja las peticiones HTTP de pedidos (protegido).
type OrderHandler struct {
	create   *orders.CreateOrderUseCase
	query    *orders.QueryUseCase
	pdf      *orders.DeliveryNotePDFUseCase
	validate *Validator
	log      *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(
	create *orders.CreateOrderUseCase,
	query *orders.QueryUseCase,
	pdf *orders.DeliveryNotePDFUseCase,
	validate *Validator,
	log *logger.Logger,
) *OrderHandler {
	return &OrderHandler{create: create, query: query, pdf: pdf, validate: validate, log: log}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Descuenta stock del lote más antiguo, registra salidas y genera la remisión.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body             body    dto.CreateOrderRequest  true   "Líneas del pedido"
// @Param        Idempotency-Key  header  string                  false  "Clave para deduplicar reintentos"
// @Success      200  {object}  dto.CreateOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		h.log.Debug().Err(err).Msg("cuerpo de pedido no parseable")
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidRequest)
	}
	if fields, err := h.validate.Struct(in); err != nil {
		h.log.Debug().Interface("fields", fields).Str("user_id", userID).Msg("pedido inválido")
		return c.Status(fiber.StatusBadRequest).JSON(errInvalidRequest)
	}

	result, err := h.create.CreateOrder(c.UserContext(), userID, in.Products)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.log.Debug().Err(err).Str("user_id", userID).Msg("pedido inválido")
			return c.Status(fiber.StatusBadRequest).JSON(errInvalidRequest)
		}
		h.log.Error().Err(err).Str("user_id", userID).Int("lines", len(in.Products)).Msg("crear pedido")
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal)
	}
	return c.Status(fiber.StatusOK).JSON(dto.CreateOrderResponse{
		Message:         "Order created",
		OrderID:         result.OrderID,
		ReferenceNumber: result.ReferenceNumber,
	})
}

// List godoc
// @Summary      Listar pedidos
// @Description  Pedidos con sus líneas, el más reciente primero.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.OrderResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	list, err := h.query.ListOrders(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("listar pedidos")
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errNotFound)
		}
		h.log.Error().Err(err).Str("order_id", c.Params("id")).Msg("obtener pedido")
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal)
	}
	return c.JSON(out)
}

// DeliveryNote godoc
// @Summary      PDF de la remisión
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path      string  true  "ID del pedido"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/delivery-note [get]
func (h *OrderHandler) DeliveryNote(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdf.Render(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errNotFound)
		}
		h.log.Error().Err(err).Str("order_id", c.Params("id")).Msg("generar remisión PDF")
		return c.Status(fiber.StatusInternalServerError).JSON(errInternal)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
