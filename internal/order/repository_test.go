package order

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/apperr"
)

var (
	selectOrderSQL   = regexp.QuoteMeta(`FROM orders WHERE id=$1`)
	selectOrdersSQL  = regexp.QuoteMeta(`FROM orders WHERE session_id=$1`)
	selectItemsSQL   = regexp.QuoteMeta(`FROM order_items oi`)
	selectPaymentSQL = regexp.QuoteMeta(`FROM payments WHERE order_id=$1`)
)

var orderColumns = []string{"id", "session_id", "total_amount", "status", "shipping_address", "order_date"}

var itemColumns = []string{
	"id", "product_id", "quantity", "price",
	"p_id", "p_name", "p_description", "p_price", "p_category", "p_available", "p_quantity",
}

var paymentColumns = []string{"id", "amount", "payment_status", "payment_date", "card_last_four", "cardholder_name"}

func TestGetByID_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	amount := decimal.RequireFromString("49.98")
	price := decimal.RequireFromString("24.99")

	pid, pname, pdesc := 1, "Wireless Headphones", "Over-ear"
	pcat, pavail, pqty := "Electronics", true, 3

	mock.ExpectQuery(selectOrderSQL).WithArgs(int64(41)).WillReturnRows(
		mock.NewRows(orderColumns).
			AddRow(int64(41), "sess-1", amount, StatusCompleted, "1 Example Way", now))
	mock.ExpectQuery(selectItemsSQL).WithArgs(int64(41)).WillReturnRows(
		mock.NewRows(itemColumns).
			AddRow(int64(71), 1, 2, price,
				&pid, &pname, &pdesc, decimal.NewNullDecimal(price), &pcat, &pavail, &pqty))
	mock.ExpectQuery(selectPaymentSQL).WithArgs(int64(41)).WillReturnRows(
		mock.NewRows(paymentColumns).
			AddRow(int64(9), amount, "COMPLETED", now, "1111", "Ada Lovelace"))

	repo := NewPostgresRepository(mock)

	v, err := repo.GetByID(context.Background(), 41, "sess-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Equal(t, int64(41), v.ID)
	require.Equal(t, StatusCompleted, v.Status)
	require.True(t, v.TotalAmount.Equal(amount))
	require.Len(t, v.Items, 1)
	require.NotNil(t, v.Items[0].Product)
	require.Equal(t, "Wireless Headphones", v.Items[0].Product.Name)
	require.True(t, v.Items[0].Price.Equal(price))
	require.NotNil(t, v.Payment)
	require.Equal(t, "1111", v.Payment.CardLastFour)
}

// Authorization is the session token alone. A wrong token looks exactly like a
// missing order; the items and payment are never loaded.
func TestGetByID_WrongSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(selectOrderSQL).WithArgs(int64(41)).WillReturnRows(
		mock.NewRows(orderColumns).
			AddRow(int64(41), "sess-1", decimal.RequireFromString("49.98"), StatusCompleted, "1 Example Way", time.Now()))

	repo := NewPostgresRepository(mock)

	_, err = repo.GetByID(context.Background(), 41, "someone-else")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_Missing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(selectOrderSQL).WithArgs(int64(404)).WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)

	_, err = repo.GetByID(context.Background(), 404, "sess-1")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A product deleted from the catalog leaves the order item intact with a nil
// product; the recorded quantity and price still stand.
func TestGetByID_DeletedProduct(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	amount := decimal.RequireFromString("24.99")

	mock.ExpectQuery(selectOrderSQL).WithArgs(int64(41)).WillReturnRows(
		mock.NewRows(orderColumns).
			AddRow(int64(41), "sess-1", amount, StatusCompleted, "1 Example Way", now))
	mock.ExpectQuery(selectItemsSQL).WithArgs(int64(41)).WillReturnRows(
		mock.NewRows(itemColumns).
			AddRow(int64(71), 99, 1, amount,
				nil, nil, nil, nil, nil, nil, nil))
	mock.ExpectQuery(selectPaymentSQL).WithArgs(int64(41)).WillReturnRows(
		mock.NewRows(paymentColumns).
			AddRow(int64(9), amount, "COMPLETED", now, "1111", "Ada Lovelace"))

	repo := NewPostgresRepository(mock)

	v, err := repo.GetByID(context.Background(), 41, "sess-1")
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	require.Nil(t, v.Items[0].Product)
	require.Equal(t, 1, v.Items[0].Quantity)
	require.True(t, v.Items[0].Price.Equal(amount))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	amount := decimal.RequireFromString("49.98")
	price := decimal.RequireFromString("24.99")

	pid, pname, pdesc := 1, "Wireless Headphones", "Over-ear"
	pcat, pavail, pqty := "Electronics", true, 3

	mock.ExpectQuery(selectOrdersSQL).WithArgs("sess-1").WillReturnRows(
		mock.NewRows(orderColumns).
			AddRow(int64(42), "sess-1", amount, StatusCompleted, "1 Example Way", now).
			AddRow(int64(41), "sess-1", price, StatusCompleted, "1 Example Way", now.Add(-time.Hour)))

	// Newest order: one item, one payment.
	mock.ExpectQuery(selectItemsSQL).WithArgs(int64(42)).WillReturnRows(
		mock.NewRows(itemColumns).
			AddRow(int64(72), 1, 2, price,
				&pid, &pname, &pdesc, decimal.NewNullDecimal(price), &pcat, &pavail, &pqty))
	mock.ExpectQuery(selectPaymentSQL).WithArgs(int64(42)).WillReturnRows(
		mock.NewRows(paymentColumns).
			AddRow(int64(9), amount, "COMPLETED", now, "1111", "Ada Lovelace"))

	// Older order: somehow has no payment row. It is still listed.
	mock.ExpectQuery(selectItemsSQL).WithArgs(int64(41)).WillReturnRows(mock.NewRows(itemColumns))
	mock.ExpectQuery(selectPaymentSQL).WithArgs(int64(41)).WillReturnError(pgx.ErrNoRows)

	repo := NewPostgresRepository(mock)

	views, err := repo.ListBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, views, 2)
	require.Equal(t, int64(42), views[0].ID)
	require.NotNil(t, views[0].Payment)
	require.Equal(t, int64(41), views[1].ID)
	require.Nil(t, views[1].Payment)
	require.Empty(t, views[1].Items)
}

func TestListBySession_NoOrders(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(selectOrdersSQL).WithArgs("sess-1").WillReturnRows(mock.NewRows(orderColumns))

	repo := NewPostgresRepository(mock)

	views, err := repo.ListBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, views)
	require.Empty(t, views)
	require.NoError(t, mock.ExpectationsWereMet())
}
