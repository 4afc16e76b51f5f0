package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/tariff-core/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса тарифов.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Post("/api/users/validate", h.ValidateUser)

	r.Route("/api/tariffs", func(r chi.Router) {
		r.Get("/", h.GetRates)
		r.Get("/{plan}/price", h.GetPrice)
		r.Get("/{plan}/quote", h.GetQuote)
	})

	r.Route("/api/discounts", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/", h.GetDiscounts)
		r.Put("/{plan}", h.SetDiscount)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
