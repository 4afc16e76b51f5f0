// Package service реализует бизнес-логику сервиса тарифов.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/tariff-core/internal/discount"
	"github.com/mmeshcher/tariff-core/internal/model"
	"github.com/mmeshcher/tariff-core/internal/tariff"
	"github.com/mmeshcher/tariff-core/internal/validation"
)

// ErrDiscountsReadOnly возвращается, если источник скидок не поддерживает изменение.
var ErrDiscountsReadOnly = errors.New("discount source is read-only")

// DiscountStore описывает изменяемое хранилище скидок.
type DiscountStore interface {
	SetDiscount(ctx context.Context, plan string, rate decimal.Decimal) error
	ListDiscounts(ctx context.Context) ([]model.Discount, error)
}

// Service содержит бизнес-логику сервиса тарифов.
type Service struct {
	discounts tariff.DiscountProvider
	store     DiscountStore
	newID     func() string
}

// NewService создаёт сервис с провайдером скидок и необязательным хранилищем для их изменения.
func NewService(discounts tariff.DiscountProvider, store DiscountStore) *Service {
	return &Service{
		discounts: discounts,
		store:     store,
		newID:     func() string { return uuid.NewString() },
	}
}

// ValidateUser проверяет возраст и адрес электронной почты пользователя.
func (s *Service) ValidateUser(_ context.Context, u model.User) error {
	return validation.ValidateUser(u)
}

// Rates возвращает месячные ставки всех планов.
func (s *Service) Rates(_ context.Context) []model.PlanRate {
	plans := tariff.Plans()
	res := make([]model.PlanRate, 0, len(plans))
	for _, p := range plans {
		rate, _ := tariff.MonthlyRate(string(p))
		res = append(res, model.PlanRate{Plan: p, Monthly: rate})
	}
	return res
}

// Price возвращает стоимость плана без скидки.
func (s *Service) Price(_ context.Context, plan string, months int) (decimal.Decimal, error) {
	return tariff.CalcPrice(plan, months)
}

// Quote рассчитывает стоимость плана с учётом скидки.
// Аргументы проверяются до обращения к провайдеру скидок.
func (s *Service) Quote(ctx context.Context, plan string, months int) (*model.Quote, error) {
	price, err := tariff.CalcPrice(plan, months)
	if err != nil {
		return nil, err
	}

	base, err := tariff.MonthlyRate(plan)
	if err != nil {
		return nil, err
	}

	rec := &recordingProvider{next: s.discounts}
	total, err := tariff.NewTariffWithDiscount(rec).Calc(ctx, plan, months, base)
	if err != nil {
		return nil, fmt.Errorf("get discount: %w", err)
	}

	return &model.Quote{
		ID:          s.newID(),
		Plan:        model.Plan(plan),
		Months:      months,
		BaseMonthly: base,
		Discount:    rec.rate,
		Price:       price,
		Total:       total,
	}, nil
}

// ListDiscounts возвращает настроенные скидки.
func (s *Service) ListDiscounts(ctx context.Context) ([]model.Discount, error) {
	if s.store == nil {
		return nil, ErrDiscountsReadOnly
	}
	return s.store.ListDiscounts(ctx)
}

// SetDiscount изменяет скидку известного плана.
func (s *Service) SetDiscount(ctx context.Context, plan string, rate decimal.Decimal) error {
	if s.store == nil {
		return ErrDiscountsReadOnly
	}
	if _, err := tariff.MonthlyRate(plan); err != nil {
		return err
	}
	if err := discount.ValidateRate(rate); err != nil {
		return err
	}
	return s.store.SetDiscount(ctx, plan, rate)
}

// recordingProvider запоминает скидку, полученную при расчёте.
type recordingProvider struct {
	next tariff.DiscountProvider
	rate decimal.Decimal
}

func (r *recordingProvider) GetDiscount(ctx context.Context, plan string) (decimal.Decimal, error) {
	rate, err := r.next.GetDiscount(ctx, plan)
	if err != nil {
		return decimal.Zero, err
	}
	r.rate = rate
	return rate, nil
}
