// Package handler содержит HTTP-обработчики API сервиса тарифов.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mmeshcher/tariff-core/internal/middleware"
	"github.com/mmeshcher/tariff-core/internal/model"
	"github.com/mmeshcher/tariff-core/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	ValidateUser(ctx context.Context, u model.User) error
	Rates(ctx context.Context) []model.PlanRate
	Price(ctx context.Context, plan string, months int) (decimal.Decimal, error)
	Quote(ctx context.Context, plan string, months int) (*model.Quote, error)
	ListDiscounts(ctx context.Context) ([]model.Discount, error)
	SetDiscount(ctx context.Context, plan string, rate decimal.Decimal) error
}

// Handler реализует HTTP-обработчики API сервиса тарифов.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ValidateUser проверяет данные пользователя: 200 — корректны, 422 — нет.
func (h *Handler) ValidateUser(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.ValidateUser(r.Context(), u); err != nil {
		if errors.Is(err, model.ErrInvalidArgument) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("validate user error", zap.Error(err), zap.String("login", u.Login))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetRates возвращает месячные ставки всех планов.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.service.Rates(r.Context()))
}

type priceResponse struct {
	Plan   string          `json:"plan"`
	Months int             `json:"months"`
	Price  decimal.Decimal `json:"price"`
}

func parseMonths(r *http.Request) (int, bool) {
	months, err := strconv.Atoi(r.URL.Query().Get("months"))
	return months, err == nil
}

// GetPrice возвращает стоимость плана без скидки.
func (h *Handler) GetPrice(w http.ResponseWriter, r *http.Request) {
	plan := chi.URLParam(r, "plan")

	months, ok := parseMonths(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	price, err := h.service.Price(r.Context(), plan, months)
	if err != nil {
		if errors.Is(err, model.ErrInvalidArgument) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("calc price error", zap.Error(err), zap.String("plan", plan))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, priceResponse{Plan: plan, Months: months, Price: price})
}

// GetQuote возвращает стоимость плана с учётом скидки.
func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	plan := chi.URLParam(r, "plan")

	months, ok := parseMonths(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	quote, err := h.service.Quote(r.Context(), plan, months)
	if err != nil {
		if errors.Is(err, model.ErrInvalidArgument) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("quote error", zap.Error(err), zap.String("plan", plan), zap.Int("months", months))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	writeJSON(w, quote)
}

// GetDiscounts возвращает настроенные скидки.
func (h *Handler) GetDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.service.ListDiscounts(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrDiscountsReadOnly) {
			http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
			return
		}
		h.logger.Error("list discounts error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(discounts) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, discounts)
}

type discountRequest struct {
	Discount *decimal.Decimal `json:"discount"`
}

// SetDiscount изменяет скидку плана.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	plan := chi.URLParam(r, "plan")

	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Discount == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err := h.service.SetDiscount(r.Context(), plan, *req.Discount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDiscountsReadOnly):
			http.Error(w, http.StatusText(http.StatusNotImplemented), http.StatusNotImplemented)
		case errors.Is(err, model.ErrInvalidArgument):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("set discount error", zap.Error(err), zap.String("plan", plan))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	operator, _ := middleware.GetOperatorFromContext(r.Context())
	h.logger.Info("discount updated",
		zap.String("plan", plan),
		zap.String("discount", req.Discount.String()),
		zap.String("operator", operator),
	)

	w.WriteHeader(http.StatusOK)
}
