package dto

import "time"

// OrderLineRequest una línea del pedido: producto y cantidad.
type OrderLineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest cuerpo de POST /api/orders.
type CreateOrderRequest struct {
	Products []OrderLineRequest `json:"products" validate:"required,min=1,dive"`
}

// OrderResult resultado de crear un pedido.
type OrderResult struct {
	OrderID         string `json:"orderId"`
	ReferenceNumber string `json:"referenceNumber"`
}

// CreateOrderResponse respuesta de POST /api/orders.
type CreateOrderResponse struct {
	Message         string `json:"message"`
	OrderID         string `json:"orderId"`
	ReferenceNumber string `json:"referenceNumber"`
}

// CartLineResponse línea de carrito tal como quedó al crear el pedido.
type CartLineResponse struct {
	ID              string    `json:"id"`
	OrderID         string    `json:"orderId"`
	ProductName     string    `json:"productName"`
	ProductCode     string    `json:"productCode"`
	ProductCategory string    `json:"productCategory"`
	ProductQuantity int64     `json:"productQuantity"`
	CreatedAt       time.Time `json:"createdAt"`
}

// OrderResponse pedido con sus líneas. ReferenceNumber vacío si no tiene remisión.
type OrderResponse struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	ReferenceNumber string             `json:"referenceNumber,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	Carts           []CartLineResponse `json:"carts"`
}
