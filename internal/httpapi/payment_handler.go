package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shop-backend/internal/apperr"
	"shop-backend/internal/checkout"
	"shop-backend/internal/order"
)

type CheckoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (order.View, error)
}

type OrderReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]order.View, error)
	GetByID(ctx context.Context, orderID int64, sessionID string) (order.View, error)
}

type PaymentHandler struct {
	engine CheckoutService
	orders OrderReader
	logger *zap.Logger
}

func NewPaymentHandler(engine CheckoutService, orders OrderReader, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{engine: engine, orders: orders, logger: logger}
}

type paymentCartItem struct {
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type paymentRequest struct {
	SessionID       string            `json:"sessionId"`
	Amount          decimal.Decimal   `json:"amount"`
	CardName        string            `json:"cardName"`
	CardNumber      string            `json:"cardNumber"`
	ExpiryDate      string            `json:"expiryDate"`
	CVV             string            `json:"cvv"`
	ShippingAddress string            `json:"shippingAddress"`
	CartItems       []paymentCartItem `json:"cartItems"`
}

type paymentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	OrderID   *int64 `json:"orderId"`
	PaymentID *int64 `json:"paymentId"`
}

func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, paymentResponse{Message: "invalid json"})
		return
	}

	items := make([]checkout.LineItem, 0, len(req.CartItems))
	for _, it := range req.CartItems {
		items = append(items, checkout.LineItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	v, err := h.engine.Checkout(ctx, checkout.Request{
		SessionID:       req.SessionID,
		Amount:          req.Amount,
		CardName:        req.CardName,
		CardNumber:      req.CardNumber,
		ExpiryDate:      req.ExpiryDate,
		CVV:             req.CVV,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
	})
	if err != nil {
		if apperr.IsValidation(err) {
			writeJSON(w, http.StatusBadRequest, paymentResponse{Message: err.Error()})
			return
		}
		h.logger.Error("checkout failed", zap.String("session", req.SessionID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, paymentResponse{Message: "payment processing failed"})
		return
	}

	writeJSON(w, http.StatusOK, paymentResponse{
		Success:   true,
		Message:   "Payment processed successfully",
		OrderID:   &v.ID,
		PaymentID: &v.Payment.ID,
	})
}

func (h *PaymentHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, http.StatusBadRequest, "missing session header")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	views, err := h.orders.ListBySession(ctx, sid)
	if err != nil {
		h.logger.Error("load order history failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}

	for _, v := range views {
		if v.Payment == nil {
			// Order rows without a payment can only come from outside the
			// checkout path. Keep them visible but flag the anomaly.
			h.logger.Warn("order has no payment record", zap.Int64("order_id", v.ID))
		}
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *PaymentHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, http.StatusBadRequest, "missing session header")
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err := h.orders.GetByID(ctx, orderID, sid)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("load order failed", zap.Int64("order_id", orderID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	writeJSON(w, http.StatusOK, v)
}
