package inventory

import (
	"sort"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// Ledger vista ordenada de los lotes de un producto: más antiguo primero,
// empate por ID para que el orden sea estable entre lecturas.
type Ledger struct {
	lots []entity.StockLot
}

// NewLedger copia y ordena los lotes recibidos. No modifica el slice original.
func NewLedger(lots []entity.StockLot) Ledger {
	sorted := make([]entity.StockLot, len(lots))
	copy(sorted, lots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return Ledger{lots: sorted}
}

// Available devuelve los lotes con cantidad > 0 en orden de consumo.
func (l Ledger) Available() []entity.StockLot {
	out := make([]entity.StockLot, 0, len(l.lots))
	for _, lot := range l.lots {
		if !lot.Exhausted() {
			out = append(out, lot)
		}
	}
	return out
}

// Total suma las cantidades de todos los lotes.
func (l Ledger) Total() int64 {
	return SumQuantities(l.lots)
}

// SumQuantities suma las cantidades de los lotes (valor de Product.LatestQuantity).
func SumQuantities(lots []entity.StockLot) int64 {
	var total int64
	for _, lot := range lots {
		total += lot.Quantity
	}
	return total
}

// MostRecent devuelve el lote con CreatedAt más reciente, agotados incluidos.
// Su precio es el que se registra en la salida de stock.
func MostRecent(lots []entity.StockLot) (entity.StockLot, bool) {
	if len(lots) == 0 {
		return entity.StockLot{}, false
	}
	latest := lots[0]
	for _, lot := range lots[1:] {
		if lot.CreatedAt.After(latest.CreatedAt) || (lot.CreatedAt.Equal(latest.CreatedAt) && lot.ID > latest.ID) {
			latest = lot
		}
	}
	return latest, true
}
