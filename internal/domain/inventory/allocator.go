package inventory

import (
	"fmt"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// State estado del asignador mientras recorre los lotes.
type State string

const (
	StateScanning     State = "scanning"     // buscando el lote disponible más antiguo
	StateSplitting    State = "splitting"    // el lote no alcanzó: se consumió entero y queda remanente
	StateExhausted    State = "exhausted"    // el remanente llegó a cero
	StateInsufficient State = "insufficient" // no quedan lotes y el remanente es > 0
)

// LotTake cantidad tomada de un lote: Before y After son la cantidad del lote antes y después.
type LotTake struct {
	LotID  string
	Before int64
	Taken  int64
	After  int64
}

// Allocation plan de consumo de lotes para una línea de pedido.
type Allocation struct {
	Requested int64
	Takes     []LotTake
	Remaining int64 // > 0 solo cuando State es StateInsufficient
	State     State
}

// Allocated suma lo tomado de todos los lotes.
func (a Allocation) Allocated() int64 {
	var n int64
	for _, t := range a.Takes {
		n += t.Taken
	}
	return n
}

// Allocate planifica el consumo de quantity unidades sobre los lotes, el más antiguo primero,
// partiendo la cantidad entre varios lotes cuando uno no alcanza.
// Es una función pura: no modifica lots. Si el stock total no cubre la cantidad devuelve
// domain.ErrInsufficientStock junto con el plan parcial (que no debe aplicarse).
func Allocate(lots []entity.StockLot, quantity int64) (Allocation, error) {
	alloc := Allocation{Requested: quantity, Remaining: quantity, State: StateScanning}
	if quantity <= 0 {
		return alloc, fmt.Errorf("%w: cantidad %d", domain.ErrInvalidInput, quantity)
	}

	queue := NewLedger(lots).Available()
	next := 0
	for {
		switch alloc.State {
		case StateScanning:
			if next >= len(queue) {
				alloc.State = StateInsufficient
				continue
			}
			lot := queue[next]
			next++
			if lot.Quantity >= alloc.Remaining {
				alloc.Takes = append(alloc.Takes, LotTake{
					LotID: lot.ID, Before: lot.Quantity, Taken: alloc.Remaining, After: lot.Quantity - alloc.Remaining,
				})
				alloc.Remaining = 0
				alloc.State = StateExhausted
				continue
			}
			alloc.Takes = append(alloc.Takes, LotTake{
				LotID: lot.ID, Before: lot.Quantity, Taken: lot.Quantity, After: 0,
			})
			alloc.Remaining -= lot.Quantity
			alloc.State = StateSplitting
		case StateSplitting:
			alloc.State = StateScanning
		case StateExhausted:
			return alloc, nil
		case StateInsufficient:
			return alloc, fmt.Errorf("%w: solicitado %d, disponible %d",
				domain.ErrInsufficientStock, quantity, quantity-alloc.Remaining)
		}
	}
}

// Apply devuelve una copia de lots con el plan aplicado. Útil para stores en memoria y tests.
func Apply(lots []entity.StockLot, alloc Allocation) []entity.StockLot {
	after := make(map[string]int64, len(alloc.Takes))
	for _, t := range alloc.Takes {
		after[t.LotID] = t.After
	}
	out := make([]entity.StockLot, len(lots))
	copy(out, lots)
	for i := range out {
		if q, ok := after[out[i].ID]; ok {
			out[i].Quantity = q
		}
	}
	return out
}
