package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shop-backend/internal/apperr"
	"shop-backend/internal/catalog"
	"shop-backend/internal/db"
	"shop-backend/internal/order"
)

// LineItem is a line as declared by the client: the unit price is the one the
// buyer saw when the product entered the cart, and it is what the order item
// records.
type LineItem struct {
	ProductID int
	Quantity  int
	Price     decimal.Decimal
}

type Request struct {
	SessionID       string
	Amount          decimal.Decimal
	CardName        string
	CardNumber      string
	ExpiryDate      string
	CVV             string
	ShippingAddress string
	Items           []LineItem
}

// CartCacheEvicter invalidates the session's cached cart view after a
// successful checkout.
type CartCacheEvicter interface {
	Evict(ctx context.Context, sessionID string)
}

// EventPublisher announces completed orders. Publishing happens after commit
// and is best effort.
type EventPublisher interface {
	PublishOrderCompleted(ctx context.Context, o order.Order) error
}

// Engine turns a cart snapshot plus payment details into a persisted order,
// payment and stock decrement in one transaction. Stock is re-validated under
// row locks inside that transaction, so the advisory checks done while the
// cart was built cannot oversell.
type Engine struct {
	db        db.DB
	cache     CartCacheEvicter
	publisher EventPublisher
	logger    *zap.Logger
}

func NewEngine(pool db.DB, cache CartCacheEvicter, publisher EventPublisher, logger *zap.Logger) *Engine {
	return &Engine{db: pool, cache: cache, publisher: publisher, logger: logger}
}

// Checkout trusts the client-declared line items rather than re-deriving them
// from the stored cart: declared prices are the deliberate historical record,
// and the in-transaction stock check keeps inventory safe regardless of what
// the client sends.
//
// On success the order is COMPLETED, one payment references it, every product
// quantity is decremented and the session's cart lines are gone. On any
// failure nothing is committed.
func (e *Engine) Checkout(ctx context.Context, req Request) (order.View, error) {
	if err := validate(req); err != nil {
		return order.View{}, err
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return order.View{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock every product row first. Validation and decrement share the same
	// locks, so a concurrent checkout on the last unit serializes here and
	// the loser fails validation.
	products := make([]catalog.Product, 0, len(req.Items))
	for _, it := range req.Items {
		p, err := lockProduct(ctx, tx, it.ProductID)
		if err != nil {
			return order.View{}, err
		}
		if !p.Available {
			return order.View{}, apperr.Validationf("product is not available: %s", p.Name)
		}
		if p.Quantity < it.Quantity {
			return order.View{}, apperr.Validationf("insufficient stock for product: %s", p.Name)
		}
		products = append(products, p)
	}

	o := order.Order{
		SessionID:       req.SessionID,
		TotalAmount:     req.Amount,
		Status:          order.StatusPending,
		ShippingAddress: req.ShippingAddress,
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO orders(session_id, total_amount, status, shipping_address)
		VALUES($1, $2, $3, $4)
		RETURNING id, order_date
	`, o.SessionID, o.TotalAmount, string(o.Status), o.ShippingAddress)
	if err := row.Scan(&o.ID, &o.OrderDate); err != nil {
		return order.View{}, fmt.Errorf("insert order: %w", err)
	}

	items := make([]order.ItemView, 0, len(req.Items))
	for i, it := range req.Items {
		var itemID int64
		row := tx.QueryRow(ctx, `
			INSERT INTO order_items(order_id, product_id, quantity, price)
			VALUES($1, $2, $3, $4)
			RETURNING id
		`, o.ID, it.ProductID, it.Quantity, it.Price)
		if err := row.Scan(&itemID); err != nil {
			return order.View{}, fmt.Errorf("insert order_item: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE products SET quantity = quantity - $2, updated_at=now() WHERE id=$1
		`, it.ProductID, it.Quantity); err != nil {
			// The quantity >= 0 check constraint is the commit-time backstop;
			// tripping it means a race slipped past validation. Abort wholesale,
			// safe to retry.
			if isStockCheckViolation(err) {
				return order.View{}, apperr.Validationf("insufficient stock for product: %s", products[i].Name)
			}
			return order.View{}, fmt.Errorf("decrement stock: %w", err)
		}

		summary := products[i].Summary()
		summary.Quantity -= it.Quantity
		items = append(items, order.ItemView{
			ID:       itemID,
			Product:  &summary,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	payment := order.Payment{
		OrderID:        o.ID,
		Amount:         req.Amount,
		PaymentStatus:  order.PaymentCompleted,
		CardLastFour:   maskCard(req.CardNumber),
		CardholderName: req.CardName,
	}
	row = tx.QueryRow(ctx, `
		INSERT INTO payments(order_id, amount, payment_status, card_last_four, cardholder_name)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id, payment_date
	`, payment.OrderID, payment.Amount, payment.PaymentStatus, payment.CardLastFour, payment.CardholderName)
	if err := row.Scan(&payment.ID, &payment.PaymentDate); err != nil {
		return order.View{}, fmt.Errorf("insert payment: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, o.ID, string(order.StatusCompleted)); err != nil {
		return order.View{}, fmt.Errorf("complete order: %w", err)
	}
	o.Status = order.StatusCompleted

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE session_id=$1`, req.SessionID); err != nil {
		return order.View{}, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return order.View{}, fmt.Errorf("commit checkout: %w", err)
	}

	if e.cache != nil {
		e.cache.Evict(ctx, req.SessionID)
	}
	if e.publisher != nil {
		if err := e.publisher.PublishOrderCompleted(ctx, o); err != nil {
			e.logger.Warn("order completed event not published",
				zap.Int64("order_id", o.ID), zap.Error(err))
		}
	}

	return order.View{
		ID:              o.ID,
		SessionID:       o.SessionID,
		TotalAmount:     o.TotalAmount,
		OrderDate:       o.OrderDate,
		Status:          o.Status,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		Payment: &order.PaymentView{
			ID:             payment.ID,
			Amount:         payment.Amount,
			PaymentStatus:  payment.PaymentStatus,
			PaymentDate:    payment.PaymentDate,
			CardLastFour:   payment.CardLastFour,
			CardholderName: payment.CardholderName,
		},
	}, nil
}

func validate(req Request) error {
	if req.SessionID == "" {
		return apperr.Validationf("session id is required")
	}
	if len(req.Items) == 0 {
		return apperr.Validationf("cart is empty")
	}
	if req.Amount.Sign() <= 0 {
		return apperr.Validationf("invalid payment amount")
	}
	if strings.TrimSpace(req.CardName) == "" {
		return apperr.Validationf("cardholder name is required")
	}
	if len(stripSpaces(req.CardNumber)) < 13 {
		return apperr.Validationf("invalid card number")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return apperr.Validationf("invalid quantity for product: %d", it.ProductID)
		}
	}
	return nil
}

func lockProduct(ctx context.Context, tx pgx.Tx, productID int) (catalog.Product, error) {
	var p catalog.Product
	row := tx.QueryRow(ctx, `
		SELECT id, name, description, price, category, available, quantity
		FROM products WHERE id=$1
		FOR UPDATE
	`, productID)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Available, &p.Quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, apperr.Validationf("product not found: %d", productID)
		}
		return catalog.Product{}, fmt.Errorf("lock product %d: %w", productID, err)
	}
	return p, nil
}

func isStockCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// maskCard reduces a submitted card number to its last four digits. Shorter
// inputs are kept whole; the full number is never stored.
func maskCard(cardNumber string) string {
	stripped := stripSpaces(cardNumber)
	if len(stripped) <= 4 {
		return stripped
	}
	return stripped[len(stripped)-4:]
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
