package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(cartH *CartHandler, paymentH *PaymentHandler, logger *zap.Logger, allowOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(Metrics())
	r.Use(CORS(allowOrigins))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", cartH.GetCart)
		r.Post("/", cartH.AddToCart)
		r.Put("/{itemId}", cartH.UpdateItem)
		r.Delete("/{itemId}", cartH.RemoveItem)
		r.Delete("/", cartH.ClearCart)
	})

	r.Route("/api/payment", func(r chi.Router) {
		r.Post("/process", paymentH.ProcessPayment)
		r.Get("/orders", paymentH.ListOrders)
		r.Get("/orders/{orderId}", paymentH.GetOrder)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "shop-server",
	})
}
