package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

const (
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

type Order struct {
	ID              int64
	SessionID       string
	TotalAmount     decimal.Decimal
	Status          Status
	ShippingAddress string
	OrderDate       time.Time
}

// Item captures the unit price the buyer saw when the line entered the cart.
// It is never recomputed from the current catalog price.
type Item struct {
	ID        int64
	OrderID   int64
	ProductID int
	Quantity  int
	Price     decimal.Decimal
}

// Payment is created once per checkout and immutable thereafter. Only the
// last four digits of the card number are ever stored.
type Payment struct {
	ID             int64
	OrderID        int64
	Amount         decimal.Decimal
	PaymentStatus  string
	PaymentDate    time.Time
	CardLastFour   string
	CardholderName string
}
