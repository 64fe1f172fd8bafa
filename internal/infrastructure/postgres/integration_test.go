//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	appinventory "github.com/jhoicas/pedidos-api/internal/application/inventory"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pedidos-api/pkg/config"
	"github.com/jhoicas/pedidos-api/pkg/logger"
)

// startDB levanta PostgreSQL en un contenedor, aplica migraciones y devuelve el pool.
func startDB(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pedidos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor de PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, postgres.Migrate(dsn, logger.Nop()))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 16})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool, dsn
}

type fixture struct {
	userID   string
	productA string
	productB string
	lotOld   string
	lotNew   string
}

func seed(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	f := fixture{
		userID:   uuid.NewString(),
		productA: uuid.NewString(),
		productB: uuid.NewString(),
		lotOld:   uuid.NewString(),
		lotNew:   uuid.NewString(),
	}
	catID := uuid.NewString()

	require.NoError(t, postgres.NewUserRepository(pool).Create(ctx, &entity.User{
		ID: f.userID, Username: "ana", Fullname: "Ana", PasswordHash: "x",
		Role: entity.RoleVendedor, Status: "active", CreatedAt: now, UpdatedAt: now,
	}))
	_, err := pool.Exec(ctx, `INSERT INTO categories (id, title) VALUES ($1, 'ATK')`, catID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO products (id, category_id, name, code) VALUES ($1, $3, 'Kertas', 'ATK-001'), ($2, $3, 'Pulpen', 'ATK-002')`,
		f.productA, f.productB, catID)
	require.NoError(t, err)

	stocks := postgres.NewStockRepository(pool)
	for _, l := range []entity.StockLot{
		{ID: f.lotOld, ProductID: f.productA, Quantity: 3, Price: decimal.NewFromInt(10), CreatedAt: now.Add(-48 * time.Hour)},
		{ID: f.lotNew, ProductID: f.productA, Quantity: 5, Price: decimal.RequireFromString("12.50"), CreatedAt: now.Add(-time.Hour)},
		{ID: uuid.NewString(), ProductID: f.productB, Quantity: 100, Price: decimal.NewFromInt(2), CreatedAt: now.Add(-time.Hour)},
	} {
		l.UpdatedAt = l.CreatedAt
		require.NoError(t, stocks.Create(ctx, &l))
	}
	for _, id := range []string{f.productA, f.productB} {
		_, err := postgres.NewProductRepository(pool).RecomputeLatestQuantity(ctx, id)
		require.NoError(t, err)
	}
	return f
}

func newOrderUseCase(pool *pgxpool.Pool) *orders.CreateOrderUseCase {
	runner := postgres.NewTxRunner(pool)
	return orders.NewCreateOrderUseCase(
		runner,
		postgres.NewProductRepository(pool),
		appinventory.NewAllocateStockUseCase(runner, nil),
		orders.NewReferenceGenerator(false, time.UTC),
		orders.Config{MaxAttempts: 3, LineConcurrency: 4, Location: time.UTC},
		nil,
	)
}

func TestIntegration_CreateOrder(t *testing.T) {
	pool, _ := startDB(t)
	f := seed(t, pool)
	ctx := context.Background()

	res, err := newOrderUseCase(pool).CreateOrder(ctx, f.userID, []dto.OrderLineRequest{
		{ProductID: f.productA, Quantity: 4},
		{ProductID: f.productB, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^DN\d{8}000001$`, res.ReferenceNumber)

	lots, err := postgres.NewStockRepository(pool).ListByProduct(ctx, f.productA)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, int64(0), lots[0].Quantity)
	assert.Equal(t, int64(4), lots[1].Quantity)

	p, err := postgres.NewProductRepository(pool).GetWithLots(ctx, f.productA)
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.LatestQuantity)

	outs, err := postgres.NewStockOutRepository(pool).ListByOrder(ctx, res.OrderID)
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.True(t, outs[0].Price.Equal(decimal.RequireFromString("12.50")))

	order, err := postgres.NewOrderRepository(pool).GetByID(ctx, res.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order)
	require.Len(t, order.Carts, 2)
	assert.Equal(t, "Kertas", order.Carts[0].ProductName)
	assert.Equal(t, "Pulpen", order.Carts[1].ProductName)
	require.NotNil(t, order.DeliveryNote)
	assert.Equal(t, res.ReferenceNumber, order.DeliveryNote.ReferenceNumber)
}

func TestIntegration_StockInsuficienteRevierte(t *testing.T) {
	pool, _ := startDB(t)
	f := seed(t, pool)
	ctx := context.Background()

	_, err := newOrderUseCase(pool).CreateOrder(ctx, f.userID, []dto.OrderLineRequest{
		{ProductID: f.productB, Quantity: 1},
		{ProductID: f.productA, Quantity: 9},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := postgres.NewOrderRepository(pool).ListWithCarts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	p, err := postgres.NewProductRepository(pool).GetWithLots(ctx, f.productB)
	require.NoError(t, err)
	assert.Equal(t, int64(100), p.LatestQuantity)
}

func TestIntegration_ConcurrentesNumerosDistintos(t *testing.T) {
	pool, _ := startDB(t)
	f := seed(t, pool)
	uc := newOrderUseCase(pool)
	const n = 12

	var wg sync.WaitGroup
	refs := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lines := []dto.OrderLineRequest{{ProductID: f.productB, Quantity: 1}}
			if i%2 == 1 {
				lines = append(lines, dto.OrderLineRequest{ProductID: f.productA, Quantity: 1})
			}
			res, err := uc.CreateOrder(context.Background(), f.userID, lines)
			errs[i] = err
			if err == nil {
				refs[i] = res.ReferenceNumber
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[refs[i]], "número repetido %s", refs[i])
		seen[refs[i]] = true
	}

	p, err := postgres.NewProductRepository(pool).GetWithLots(context.Background(), f.productB)
	require.NoError(t, err)
	assert.Equal(t, int64(100-n), p.LatestQuantity)
	pa, err := postgres.NewProductRepository(pool).GetWithLots(context.Background(), f.productA)
	require.NoError(t, err)
	assert.Equal(t, int64(8-n/2), pa.LatestQuantity)
}

func TestIntegration_UpdateQuantityConflicto(t *testing.T) {
	pool, _ := startDB(t)
	f := seed(t, pool)
	ctx := context.Background()
	stocks := postgres.NewStockRepository(pool)

	assert.ErrorIs(t, stocks.UpdateQuantity(ctx, f.lotOld, 2, 0), domain.ErrConflict)
	assert.ErrorIs(t, stocks.UpdateQuantity(ctx, uuid.NewString(), 3, 0), domain.ErrNotFound)
	require.NoError(t, stocks.UpdateQuantity(ctx, f.lotOld, 3, 1))
}

func TestIntegration_MaxSequenceYDuplicado(t *testing.T) {
	pool, _ := startDB(t)
	f := seed(t, pool)
	ctx := context.Background()
	notes := postgres.NewDeliveryNoteRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	max, err := notes.MaxSequence(ctx, "DN")
	require.NoError(t, err)
	assert.Nil(t, max)

	o1, o2 := uuid.NewString(), uuid.NewString()
	now := time.Now()
	require.NoError(t, orderRepo.Create(ctx, &entity.Order{ID: o1, UserID: f.userID, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, orderRepo.Create(ctx, &entity.Order{ID: o2, UserID: f.userID, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, notes.Create(ctx, &entity.DeliveryNote{ID: uuid.NewString(), OrderID: o1, ReferenceNumber: "DN20240114000041", CreatedAt: now}))

	err = notes.Create(ctx, &entity.DeliveryNote{ID: uuid.NewString(), OrderID: o2, ReferenceNumber: "DN20240114000041", CreatedAt: now})
	assert.ErrorIs(t, err, domain.ErrConflict)

	max, err = notes.MaxSequence(ctx, "DN")
	require.NoError(t, err)
	require.NotNil(t, max)
	assert.Equal(t, int64(41), *max)

	max, err = notes.MaxSequence(ctx, "DN20240115")
	require.NoError(t, err)
	assert.Nil(t, max)
}

func TestIntegration_MigrateDown(t *testing.T) {
	pool, dsn := startDB(t)
	pool.Close()
	require.NoError(t, postgres.MigrateDown(dsn))
	require.NoError(t, postgres.Migrate(dsn, logger.Nop()))
}
