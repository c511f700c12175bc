package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"shop-backend/internal/apperr"
	"shop-backend/internal/checkout"
	"shop-backend/internal/order"
)

type checkoutMock struct {
	CheckoutFunc func(ctx context.Context, req checkout.Request) (order.View, error)
}

func (m *checkoutMock) Checkout(ctx context.Context, req checkout.Request) (order.View, error) {
	return m.CheckoutFunc(ctx, req)
}

type orderReaderMock struct {
	ListBySessionFunc func(ctx context.Context, sessionID string) ([]order.View, error)
	GetByIDFunc       func(ctx context.Context, orderID int64, sessionID string) (order.View, error)
}

func (m *orderReaderMock) ListBySession(ctx context.Context, sessionID string) ([]order.View, error) {
	return m.ListBySessionFunc(ctx, sessionID)
}

func (m *orderReaderMock) GetByID(ctx context.Context, orderID int64, sessionID string) (order.View, error) {
	return m.GetByIDFunc(ctx, orderID, sessionID)
}

func newPaymentTestRouter(t *testing.T, engine CheckoutService, orders OrderReader) http.Handler {
	t.Helper()
	logger := zaptest.NewLogger(t)
	cartH := NewCartHandler(&cartServiceMock{}, logger)
	paymentH := NewPaymentHandler(engine, orders, logger)
	return NewRouter(cartH, paymentH, logger, []string{"*"})
}

func completedOrderView() order.View {
	amount := decimal.RequireFromString("49.98")
	return order.View{
		ID:          41,
		SessionID:   "sess-1",
		TotalAmount: amount,
		OrderDate:   time.Now(),
		Status:      order.StatusCompleted,
		Payment: &order.PaymentView{
			ID:            9,
			Amount:        amount,
			PaymentStatus: "COMPLETED",
			CardLastFour:  "1111",
		},
	}
}

const processBody = `{
	"sessionId": "sess-1",
	"amount": 49.98,
	"cardName": "Ada Lovelace",
	"cardNumber": "4111 1111 1111 1111",
	"expiryDate": "12/28",
	"cvv": "123",
	"shippingAddress": "1 Example Way",
	"cartItems": [{"productId": 1, "quantity": 2, "price": 24.99}]
}`

func TestProcessPayment_Success(t *testing.T) {
	engine := &checkoutMock{
		CheckoutFunc: func(_ context.Context, req checkout.Request) (order.View, error) {
			require.Equal(t, "sess-1", req.SessionID)
			require.Equal(t, "4111 1111 1111 1111", req.CardNumber)
			require.Len(t, req.Items, 1)
			require.Equal(t, 1, req.Items[0].ProductID)
			require.Equal(t, 2, req.Items[0].Quantity)
			require.True(t, req.Items[0].Price.Equal(decimal.RequireFromString("24.99")))
			return completedOrderView(), nil
		},
	}
	router := newPaymentTestRouter(t, engine, &orderReaderMock{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment/process", strings.NewReader(processBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		OrderID   *int64 `json:"orderId"`
		PaymentID *int64 `json:"paymentId"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.True(t, resp.Success)
	require.Equal(t, "Payment processed successfully", resp.Message)
	require.NotNil(t, resp.OrderID)
	require.Equal(t, int64(41), *resp.OrderID)
	require.NotNil(t, resp.PaymentID)
	require.Equal(t, int64(9), *resp.PaymentID)
}

func TestProcessPayment_ValidationFailureIs400(t *testing.T) {
	engine := &checkoutMock{
		CheckoutFunc: func(context.Context, checkout.Request) (order.View, error) {
			return order.View{}, apperr.Validationf("insufficient stock for product: Wireless Headphones")
		},
	}
	router := newPaymentTestRouter(t, engine, &orderReaderMock{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment/process", strings.NewReader(processBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		OrderID *int64 `json:"orderId"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.False(t, resp.Success)
	require.Contains(t, resp.Message, "insufficient stock")
	require.Nil(t, resp.OrderID)
}

func TestProcessPayment_ServerFailureIs500(t *testing.T) {
	engine := &checkoutMock{
		CheckoutFunc: func(context.Context, checkout.Request) (order.View, error) {
			return order.View{}, errors.New("commit failed")
		},
	}
	router := newPaymentTestRouter(t, engine, &orderReaderMock{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment/process", strings.NewReader(processBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal detail never reaches the client.
	require.NotContains(t, rec.Body.String(), "commit failed")
	require.Contains(t, rec.Body.String(), "payment processing failed")
}

func TestProcessPayment_InvalidJSON(t *testing.T) {
	router := newPaymentTestRouter(t, &checkoutMock{}, &orderReaderMock{})

	req := httptest.NewRequest(http.MethodPost, "/api/payment/process", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrders(t *testing.T) {
	orders := &orderReaderMock{
		ListBySessionFunc: func(_ context.Context, sessionID string) ([]order.View, error) {
			require.Equal(t, "sess-1", sessionID)
			return []order.View{completedOrderView()}, nil
		},
	}
	router := newPaymentTestRouter(t, &checkoutMock{}, orders)

	req := httptest.NewRequest(http.MethodGet, "/api/payment/orders", nil)
	req.Header.Set(SessionHeader, "sess-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var views []order.View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&views))
	require.Len(t, views, 1)
	require.Equal(t, int64(41), views[0].ID)
	require.NotNil(t, views[0].Payment)
	require.Equal(t, "1111", views[0].Payment.CardLastFour)
}

func TestListOrders_MissingSessionIs400(t *testing.T) {
	router := newPaymentTestRouter(t, &checkoutMock{}, &orderReaderMock{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payment/orders", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "missing session header")
}

func TestListOrders_EmptyHistory(t *testing.T) {
	orders := &orderReaderMock{
		ListBySessionFunc: func(context.Context, string) ([]order.View, error) {
			return []order.View{}, nil
		},
	}
	router := newPaymentTestRouter(t, &checkoutMock{}, orders)

	req := httptest.NewRequest(http.MethodGet, "/api/payment/orders", nil)
	req.Header.Set(SessionHeader, "sess-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]\n", rec.Body.String())
}

func TestGetOrder(t *testing.T) {
	orders := &orderReaderMock{
		GetByIDFunc: func(_ context.Context, orderID int64, sessionID string) (order.View, error) {
			require.Equal(t, int64(41), orderID)
			require.Equal(t, "sess-1", sessionID)
			return completedOrderView(), nil
		},
	}
	router := newPaymentTestRouter(t, &checkoutMock{}, orders)

	req := httptest.NewRequest(http.MethodGet, "/api/payment/orders/41", nil)
	req.Header.Set(SessionHeader, "sess-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var v order.View
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	require.Equal(t, int64(41), v.ID)
}

func TestGetOrder_NotFoundIs404(t *testing.T) {
	orders := &orderReaderMock{
		GetByIDFunc: func(context.Context, int64, string) (order.View, error) {
			return order.View{}, apperr.ErrNotFound
		},
	}
	router := newPaymentTestRouter(t, &checkoutMock{}, orders)

	req := httptest.NewRequest(http.MethodGet, "/api/payment/orders/404", nil)
	req.Header.Set(SessionHeader, "sess-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "order not found")
}

func TestGetOrder_MissingSessionIs400(t *testing.T) {
	router := newPaymentTestRouter(t, &checkoutMock{}, &orderReaderMock{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payment/orders/41", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder_BadOrderID(t *testing.T) {
	router := newPaymentTestRouter(t, &checkoutMock{}, &orderReaderMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/payment/orders/nope", nil)
	req.Header.Set(SessionHeader, "sess-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
