package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"shop-backend/internal/order"
)

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return conn, nil
}

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the queue so publish never fails due to missing infra
	if _, err := ch.QueueDeclare(OrderCompletedQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", OrderCompletedQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderCompleted(ctx context.Context, o order.Order) error {
	ev := OrderCompleted{
		EventType:   "OrderCompleted",
		OrderID:     o.ID,
		SessionID:   o.SessionID,
		TotalAmount: o.TotalAmount,
		Timestamp:   time.Now().UTC(),
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, "", OrderCompletedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
