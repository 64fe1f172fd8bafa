package entity

import "time"

// Product representa un producto del catálogo.
// LatestQuantity es la suma cacheada de las cantidades de sus lotes; la recalcula
// el asignador de stock después de cada mutación de lote.
type Product struct {
	ID             string
	CategoryID     string
	Category       *Category
	Name           string
	Code           string // código visible en remisiones
	LatestQuantity int64
	Lots           []StockLot // solo poblado por lecturas que incluyen lotes
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CategoryTitle devuelve el título de la categoría o vacío si no fue cargada.
func (p *Product) CategoryTitle() string {
	if p == nil || p.Category == nil {
		return ""
	}
	return p.Category.Title
}
