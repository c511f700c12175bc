package order

import (
	"time"

	"github.com/shopspring/decimal"

	"shop-backend/internal/catalog"
)

// ItemView joins an order item with a live product summary. Product is nil
// when the catalog entry has since been deleted; the recorded quantity and
// price still stand.
type ItemView struct {
	ID       int64            `json:"id"`
	Product  *catalog.Summary `json:"product"`
	Quantity int              `json:"quantity"`
	Price    decimal.Decimal  `json:"price"`
}

type PaymentView struct {
	ID             int64           `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentStatus  string          `json:"paymentStatus"`
	PaymentDate    time.Time       `json:"paymentDate"`
	CardLastFour   string          `json:"cardLastFour"`
	CardholderName string          `json:"cardholderName"`
}

// View is the order as returned to clients. Payment stays nil for orders that
// somehow lack a payment record; readers surface that instead of hiding the
// order.
type View struct {
	ID              int64           `json:"id"`
	SessionID       string          `json:"sessionId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	OrderDate       time.Time       `json:"orderDate"`
	Status          Status          `json:"status"`
	ShippingAddress string          `json:"shippingAddress"`
	Items           []ItemView      `json:"items"`
	Payment         *PaymentView    `json:"payment"`
}
