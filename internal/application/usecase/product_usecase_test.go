package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/usecase"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/memory"
)

func newCatalog(t *testing.T) *usecase.ProductUseCase {
	t.Helper()
	s := memory.New()
	now := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	s.AddCategory(entity.Category{ID: "c-atk", Title: "ATK"})
	for _, code := range []string{"ATK-003", "ATK-001", "ATK-002"} {
		s.AddProduct(entity.Product{ID: "p-" + code, CategoryID: "c-atk", Name: "Producto " + code, Code: code})
	}
	require.NoError(t, s.AddLot(entity.StockLot{ID: "l-new", ProductID: "p-ATK-001", Quantity: 5, Price: decimal.NewFromInt(12), CreatedAt: now}))
	require.NoError(t, s.AddLot(entity.StockLot{ID: "l-old", ProductID: "p-ATK-001", Quantity: 3, Price: decimal.NewFromInt(10), CreatedAt: now.Add(-time.Hour)}))
	return usecase.NewProductUseCase(s.Products())
}

func TestProductList_OrdenaPorCodigoYPagina(t *testing.T) {
	uc := newCatalog(t)

	page, err := uc.List(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "ATK-001", page.Items[0].Code)
	assert.Equal(t, "ATK-002", page.Items[1].Code)
	assert.Equal(t, "ATK", page.Items[0].Category)
	assert.Equal(t, int64(8), page.Items[0].LatestQuantity)
	assert.Empty(t, page.Items[0].Lots, "la lista no incluye lotes")

	rest, err := uc.List(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Equal(t, "ATK-003", rest.Items[0].Code)

	empty, err := uc.List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 3, empty.Total)
}

func TestProductGetByID_LotesDelMasAntiguo(t *testing.T) {
	uc := newCatalog(t)

	p, err := uc.GetByID(context.Background(), "p-ATK-001")
	require.NoError(t, err)
	require.Len(t, p.Lots, 2)
	assert.Equal(t, "l-old", p.Lots[0].ID)
	assert.Equal(t, "l-new", p.Lots[1].ID)

	_, err = uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
