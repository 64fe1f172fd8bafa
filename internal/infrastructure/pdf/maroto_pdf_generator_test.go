package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

func sampleOrder() *entity.Order {
	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return &entity.Order{
		ID:     "o-1",
		UserID: "u-1",
		Carts: []entity.CartLine{
			{ID: "c-1", OrderID: "o-1", Position: 0, ProductName: "Pulpen", ProductCode: "ATK-001", ProductCategory: "ATK", ProductQuantity: 4},
			{ID: "c-2", OrderID: "o-1", Position: 1, ProductName: "Sapu", ProductCode: "KBR-001", ProductCategory: "Kebersihan", ProductQuantity: 1200},
		},
		DeliveryNote: &entity.DeliveryNote{ID: "dn-1", OrderID: "o-1", ReferenceNumber: "DN20240115000001", CreatedAt: created},
		CreatedAt:    created,
	}
}

func TestGenerateDeliveryNotePDF_GeneraPDF(t *testing.T) {
	g := NewMarotoPDFGenerator("Bodega Central", time.UTC)

	out, err := g.GenerateDeliveryNotePDF(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "el documento debe iniciar con la firma PDF")
}

func TestGenerateDeliveryNotePDF_SinRemision(t *testing.T) {
	g := NewMarotoPDFGenerator("", nil)
	order := sampleOrder()
	order.DeliveryNote = nil

	_, err := g.GenerateDeliveryNotePDF(context.Background(), order)
	assert.Error(t, err)
}

func TestGenerateDeliveryNotePDF_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMarotoPDFGenerator("", nil).GenerateDeliveryNotePDF(ctx, sampleOrder())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatQuantity(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1.000", 1234567: "1.234.567", -4500: "-4.500"}
	for in, want := range cases {
		assert.Equal(t, want, formatQuantity(in), "n=%d", in)
	}
}
