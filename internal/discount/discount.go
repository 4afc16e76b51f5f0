// Package discount содержит реализации провайдеров скидок для тарифных планов.
package discount

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/tariff-core/internal/model"
	"github.com/mmeshcher/tariff-core/internal/tariff"
)

// ErrRateOutOfRange возвращается, если доля скидки не лежит в диапазоне [0, 1).
var ErrRateOutOfRange = fmt.Errorf("%w: discount must be in [0, 1) with at most %d decimal places", model.ErrInvalidArgument, RatePrecision)

// ErrBadSourceRate возвращается, если источник скидок отдал значение вне [0, 1).
// Это сбой источника, а не ошибка аргументов вызывающего.
var ErrBadSourceRate = errors.New("discount source returned rate out of range")

// RatePrecision — максимальное число знаков после запятой в доле скидки.
const RatePrecision = 4

var one = decimal.NewFromInt(1)

// Store — хранилище скидок с возможностью изменения.
type Store interface {
	tariff.DiscountProvider
	SetDiscount(ctx context.Context, plan string, rate decimal.Decimal) error
	ListDiscounts(ctx context.Context) ([]model.Discount, error)
	Close() error
}

// ValidateRate проверяет, что доля скидки лежит в диапазоне [0, 1).
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThanOrEqual(one) || !rate.Equal(rate.Truncate(RatePrecision)) {
		return fmt.Errorf("%w: %s", ErrRateOutOfRange, rate)
	}
	return nil
}

func checkSourceRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThanOrEqual(one) {
		return fmt.Errorf("%w: %s", ErrBadSourceRate, rate)
	}
	return nil
}

// DefaultRates возвращает таблицу скидок по умолчанию.
func DefaultRates() map[model.Plan]decimal.Decimal {
	return map[model.Plan]decimal.Decimal{
		model.PlanBasic:      decimal.Zero,
		model.PlanPro:        decimal.RequireFromString("0.1"),
		model.PlanEnterprise: decimal.RequireFromString("0.2"),
	}
}

// Static — неизменяемая таблица скидок в памяти.
type Static struct {
	rates map[model.Plan]decimal.Decimal
}

// NewStatic создаёт таблицу скидок из копии переданных значений.
func NewStatic(rates map[model.Plan]decimal.Decimal) *Static {
	cp := make(map[model.Plan]decimal.Decimal, len(rates))
	for p, r := range rates {
		cp[p] = r
	}
	return &Static{rates: cp}
}

// GetDiscount возвращает скидку плана или ноль, если скидка не задана.
func (s *Static) GetDiscount(_ context.Context, plan string) (decimal.Decimal, error) {
	rate, ok := s.rates[model.Plan(plan)]
	if !ok {
		return decimal.Zero, nil
	}
	return rate, nil
}

// ListDiscounts возвращает все скидки, отсортированные по плану.
func (s *Static) ListDiscounts(_ context.Context) ([]model.Discount, error) {
	res := make([]model.Discount, 0, len(s.rates))
	for p, r := range s.rates {
		res = append(res, model.Discount{Plan: p, Rate: r})
	}
	sortDiscounts(res)
	return res, nil
}

func sortDiscounts(d []model.Discount) {
	sort.Slice(d, func(i, j int) bool { return d[i].Plan < d[j].Plan })
}
