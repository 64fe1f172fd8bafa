package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot es un lote de stock (tabla stocks) con cantidad y precio propios.
// CreatedAt define el orden de consumo: primero el lote más antiguo.
// Una cantidad en 0 marca el lote como agotado.
type StockLot struct {
	ID        string
	ProductID string
	Quantity  int64
	Price     decimal.Decimal // precio unitario del lote
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Exhausted indica si el lote ya no tiene unidades disponibles.
func (l StockLot) Exhausted() bool {
	return l.Quantity <= 0
}
