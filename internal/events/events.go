package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderCompletedQueue = "order.completed"

type OrderCompleted struct {
	EventType   string          `json:"eventType"`
	OrderID     int64           `json:"orderId"`
	SessionID   string          `json:"sessionId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Timestamp   time.Time       `json:"timestamp"`
}
