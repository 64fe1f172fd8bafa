package entity

import "time"

// Category agrupa productos; su Title se copia tal cual en carritos y salidas de stock.
type Category struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
