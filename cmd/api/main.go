package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pedidos-api/docs"
	"github.com/jhoicas/pedidos-api/internal/application/auth"
	appinventory "github.com/jhoicas/pedidos-api/internal/application/inventory"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/application/usecase"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pedidos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/pedidos-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/pedidos-api/internal/interfaces/http"
	"github.com/jhoicas/pedidos-api/pkg/config"
	"github.com/jhoicas/pedidos-api/pkg/logger"
)

// stores agrupa los adaptadores de persistencia que necesita la API.
type stores struct {
	txRunner interface {
		appinventory.TxRunner
		orders.TxRunner
	}
	products repository.ProductRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	close    func()
}

// @title        Pedidos API
// @version      1.0
// @description  Pedidos con descuento de stock por lote más antiguo y remisiones.
// @BasePath     /
// @securityDefinitions.apikey Bearer
// @in           header
// @name         Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Str("timezone", cfg.App.Timezone).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer st.close()

	var guard httpRouter.IdempotencyGuard
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		guard = infraredis.NewIdempotencyGuard(client, cfg.Redis.IdempotencyTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotencia en Redis")
	} else {
		guard = memory.NewIdempotencyGuard(cfg.Redis.IdempotencyTTL)
		log.Warn().Msg("REDIS_ADDR vacío: idempotencia en memoria del proceso")
	}

	loc := cfg.App.Location()
	allocator := appinventory.NewAllocateStockUseCase(st.txRunner, log.Component("inventory"))
	createOrderUC := orders.NewCreateOrderUseCase(
		st.txRunner,
		st.products,
		allocator,
		orders.NewReferenceGenerator(cfg.Orders.ReferenceScope == config.ReferenceScopeDaily, loc),
		orders.Config{
			MaxAttempts:     cfg.Orders.MaxAttempts,
			LineConcurrency: cfg.Orders.LineConcurrency,
			Location:        loc,
		},
		log.Component("orders"),
	)
	queryUC := orders.NewQueryUseCase(st.orders)
	pdfUC := orders.NewDeliveryNotePDFUseCase(st.orders, infrapdf.NewMarotoPDFGenerator(cfg.App.Name, loc))
	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.Swagger {
		docs.SwaggerInfo.Title = cfg.App.Name
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Pedidos API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CreateOrder: createOrderUC,
		OrderQuery:  queryUC,
		DeliveryPDF: pdfUC,
		ProductUC:   usecase.NewProductUseCase(st.products),
		Idempotency: guard,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStores abre PostgreSQL (con migraciones si DB_AUTO_MIGRATE) o el store en memoria.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.DB.Driver == config.DriverMemory {
		password := cfg.DB.SeedAdminPassword
		if password == "" {
			password = "admin"
			log.Warn().Msg("SEED_ADMIN_PASSWORD vacío: usuario admin con contraseña por defecto")
		}
		s, err := memory.NewSeeded(password)
		if err != nil {
			return nil, err
		}
		catalog, total, err := s.Products().List(ctx, 0, 0)
		if err != nil {
			return nil, err
		}
		for _, p := range catalog {
			log.Debug().Str("code", p.Code).Int64("latest_quantity", p.LatestQuantity).Msg("producto de demostración")
		}
		log.Info().Int("products", total).Msg("store en memoria con datos de demostración")
		return &stores{
			txRunner: s, products: s.Products(), orders: s.Orders(), users: s.Users(),
			close: func() {},
		}, nil
	}

	dsn := cfg.DB.ConnectionString()
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(dsn, log.Component("migrate")); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	users := postgres.NewUserRepository(pool)
	if cfg.DB.SeedAdminPassword != "" {
		if err := ensureAdmin(ctx, users, cfg.DB.SeedAdminPassword); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &stores{
		txRunner: postgres.NewTxRunner(pool),
		products: postgres.NewProductRepository(pool),
		orders:   postgres.NewOrderRepository(pool),
		users:    users,
		close:    pool.Close,
	}, nil
}

// ensureAdmin crea el usuario admin si todavía no existe.
func ensureAdmin(ctx context.Context, users *postgres.UserRepo, password string) error {
	existing, err := users.FindByUsername(ctx, "admin")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	err = users.Create(ctx, &entity.User{
		ID: uuid.NewString(), Username: "admin", Fullname: "Administrador",
		PasswordHash: string(hash), Role: entity.RoleAdmin, Status: "active",
		CreatedAt: now, UpdatedAt: now,
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return nil
	}
	return err
}
