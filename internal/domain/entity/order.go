package entity

import "time"

// Order es el pedido creado una vez por request, antes de cualquier asignación de stock.
type Order struct {
	ID           string
	UserID       string
	Carts        []CartLine
	DeliveryNote *DeliveryNote // solo en lecturas
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CartLine es la foto de un producto pedido al momento de crear la orden.
// No guarda relación viva con Product: si el producto cambia, la línea no.
type CartLine struct {
	ID              string
	OrderID         string
	Position        int // orden de la línea dentro del request
	ProductName     string
	ProductCode     string
	ProductCategory string
	ProductQuantity int64
	CreatedAt       time.Time
}
