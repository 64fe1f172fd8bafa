package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/application/usecase"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/pkg/logger"
)

var allRoles = []string{entity.RoleAdmin, entity.RoleBodeguero, entity.RoleVendedor}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CreateOrder *orders.CreateOrderUseCase
	OrderQuery  *orders.QueryUseCase
	DeliveryPDF *orders.DeliveryNotePDFUseCase
	ProductUC   *usecase.ProductUseCase
	Idempotency IdempotencyGuard // nil = sin deduplicación
	JWTSecret   string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	validate := NewValidator()
	api := app.Group("/api")

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, validate, log.Component("auth"))
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Catálogo (solo lectura)
	productHandler := NewProductHandler(deps.ProductUC, log.Component("products"))
	products := api.Group("/products", AuthMiddleware(deps.JWTSecret), RequireRole(allRoles...))
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Pedidos (requieren Bearer Token y un rol conocido)
	orderHandler := NewOrderHandler(deps.CreateOrder, deps.OrderQuery, deps.DeliveryPDF, validate, log.Component("orders"))
	ordersGroup := api.Group("/orders",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(allRoles...),
	)
	ordersGroup.Post("/", Idempotency(deps.Idempotency, log.Component("idempotency")), orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Get("/:id/delivery-note", orderHandler.DeliveryNote)
}
