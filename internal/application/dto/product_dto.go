package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotResponse lote de stock de un producto.
type LotResponse struct {
	ID        string          `json:"id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ProductResponse producto del catálogo con su cantidad disponible.
// Lots solo se incluye en el detalle.
type ProductResponse struct {
	ID             string        `json:"id"`
	Code           string        `json:"code"`
	Name           string        `json:"name"`
	Category       string        `json:"category"`
	LatestQuantity int64         `json:"latestQuantity"`
	Lots           []LotResponse `json:"lots,omitempty"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items  []ProductResponse `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}
