package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shop-backend/internal/apperr"
	"shop-backend/internal/cart"
)

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (cart.View, error)
	AddToCart(ctx context.Context, sessionID string, productID, quantity int) (cart.View, error)
	UpdateItem(ctx context.Context, sessionID string, lineID int64, quantity int) (cart.View, error)
	RemoveItem(ctx context.Context, sessionID string, lineID int64) error
	ClearCart(ctx context.Context, sessionID string) error
}

type CartHandler struct {
	svc    CartService
	logger *zap.Logger
}

func NewCartHandler(svc CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{svc: svc, logger: logger}
}

// GetCart returns the session's cart. A missing session yields an empty cart
// without allocating one.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeJSON(w, http.StatusOK, cart.EmptyView())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err := h.svc.GetCart(ctx, sid)
	if err != nil {
		h.logger.Error("load cart failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// AddToCart mints a session token when the request carries none and returns
// it via the session header.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID int `json:"productId"`
		Quantity  int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sid := sessionID(r)
	if sid == "" {
		sid = mintSessionID()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err := h.svc.AddToCart(ctx, sid, body.ProductID, body.Quantity)
	if err != nil {
		h.writeCartError(w, err, "failed to add to cart")
		return
	}

	w.Header().Set(SessionHeader, sid)
	writeJSON(w, http.StatusOK, v)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}

	lineID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err := h.svc.UpdateItem(ctx, sid, lineID, body.Quantity)
	if err != nil {
		h.writeCartError(w, err, "failed to update cart item")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeError(w, http.StatusNotFound, "cart not found")
		return
	}

	lineID, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.svc.RemoveItem(ctx, sid, lineID); err != nil {
		h.logger.Error("remove cart item failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to remove cart item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid != "" {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := h.svc.ClearCart(ctx, sid); err != nil {
			h.logger.Error("clear cart failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to clear cart")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) writeCartError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case apperr.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "cart item not found")
	default:
		h.logger.Error(fallback, zap.Error(err))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
