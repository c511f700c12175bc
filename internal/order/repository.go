package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shop-backend/internal/apperr"
	"shop-backend/internal/catalog"
	"shop-backend/internal/db"
)

type Repository interface {
	ListBySession(ctx context.Context, sessionID string) ([]View, error)
	// GetByID fails with apperr.ErrNotFound both when the order does not
	// exist and when it belongs to another session.
	GetByID(ctx context.Context, orderID int64, sessionID string) (View, error)
}

type PostgresRepository struct {
	db db.DB
}

func NewPostgresRepository(pool db.DB) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID int64, sessionID string) (View, error) {
	var v View
	row := r.db.QueryRow(ctx, `
		SELECT id, session_id, total_amount, status, shipping_address, order_date
		FROM orders WHERE id=$1
	`, orderID)
	if err := row.Scan(&v.ID, &v.SessionID, &v.TotalAmount, &v.Status, &v.ShippingAddress, &v.OrderDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return View{}, apperr.ErrNotFound
		}
		return View{}, fmt.Errorf("select order: %w", err)
	}

	// The session token is the sole authorization mechanism for order
	// history. A mismatch is reported exactly like a missing order.
	if v.SessionID != sessionID {
		return View{}, apperr.ErrNotFound
	}

	if err := r.attach(ctx, &v); err != nil {
		return View{}, err
	}
	return v, nil
}

func (r *PostgresRepository) ListBySession(ctx context.Context, sessionID string) ([]View, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, total_amount, status, shipping_address, order_date
		FROM orders WHERE session_id=$1 ORDER BY order_date DESC, id DESC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	views := []View{}
	for rows.Next() {
		var v View
		if err := rows.Scan(&v.ID, &v.SessionID, &v.TotalAmount, &v.Status, &v.ShippingAddress, &v.OrderDate); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range views {
		if err := r.attach(ctx, &views[i]); err != nil {
			return nil, err
		}
	}
	return views, nil
}

// attach loads the order's items (joined against the live catalog) and its
// payment record, if any.
func (r *PostgresRepository) attach(ctx context.Context, v *View) error {
	items, err := r.loadItems(ctx, v.ID)
	if err != nil {
		return err
	}
	v.Items = items

	p, err := r.loadPayment(ctx, v.ID)
	if err != nil {
		return err
	}
	v.Payment = p
	return nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, orderID int64) ([]ItemView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT oi.id, oi.product_id, oi.quantity, oi.price,
		       p.id, p.name, p.description, p.price, p.category, p.available, p.quantity
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id=$1
		ORDER BY oi.id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	items := []ItemView{}
	for rows.Next() {
		var it ItemView
		var productID int
		var pid *int
		var pname, pdesc, pcat *string
		var pprice decimal.NullDecimal
		var pavail *bool
		var pqty *int
		if err := rows.Scan(
			&it.ID, &productID, &it.Quantity, &it.Price,
			&pid, &pname, &pdesc, &pprice, &pcat, &pavail, &pqty,
		); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		if pid != nil {
			p := catalog.Product{
				ID:          *pid,
				Name:        *pname,
				Description: *pdesc,
				Price:       pprice.Decimal,
				Category:    *pcat,
				Available:   *pavail,
				Quantity:    *pqty,
			}
			s := p.Summary()
			it.Product = &s
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) loadPayment(ctx context.Context, orderID int64) (*PaymentView, error) {
	var p PaymentView
	row := r.db.QueryRow(ctx, `
		SELECT id, amount, payment_status, payment_date, card_last_four, cardholder_name
		FROM payments WHERE order_id=$1
	`, orderID)
	if err := row.Scan(&p.ID, &p.Amount, &p.PaymentStatus, &p.PaymentDate, &p.CardLastFour, &p.CardholderName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select payment: %w", err)
	}
	return &p, nil
}
