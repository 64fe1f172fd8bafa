package entity

import "time"

// DeliveryNote remisión de una orden, identificada por un consecutivo único DN<yyyyMMdd><NNNNNN>.
type DeliveryNote struct {
	ID              string
	OrderID         string
	ReferenceNumber string
	CreatedAt       time.Time
}
