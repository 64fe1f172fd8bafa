package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// monthNames etiquetas de mes guardadas en stock_outs.created_month (índice = mes - 1).
var monthNames = [12]string{"jan", "feb", "mar", "apr", "mei", "jun", "jul", "agu", "sep", "okt", "nov", "des"}

// MonthLabel devuelve la etiqueta corta del mes calendario de t.
func MonthLabel(t time.Time) string {
	return monthNames[int(t.Month())-1]
}

// StockOut registro de auditoría por línea pedida.
// Price sale del lote creado más recientemente, no de los lotes consumidos.
type StockOut struct {
	ID           string
	ProductID    string
	OrderID      string
	UserID       string
	Price        decimal.Decimal
	Quantity     int64
	Category     string
	CreatedMonth string
	CreatedAt    time.Time
}
