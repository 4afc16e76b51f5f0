package tariff

import (
	"context"

	"github.com/shopspring/decimal"
)

// DiscountProvider возвращает долю скидки для плана.
type DiscountProvider interface {
	GetDiscount(ctx context.Context, plan string) (decimal.Decimal, error)
}

// TariffWithDiscount рассчитывает стоимость с учётом скидки от внешнего провайдера.
type TariffWithDiscount struct {
	discounts DiscountProvider
}

// NewTariffWithDiscount создаёт калькулятор с указанным провайдером скидок.
func NewTariffWithDiscount(d DiscountProvider) *TariffWithDiscount {
	return &TariffWithDiscount{discounts: d}
}

// Calc возвращает months * baseMonthly * (1 - discount).
// Провайдер вызывается ровно один раз; входные значения не проверяются,
// ошибка провайдера возвращается без изменений.
func (t *TariffWithDiscount) Calc(ctx context.Context, plan string, months int, baseMonthly decimal.Decimal) (decimal.Decimal, error) {
	discount, err := t.discounts.GetDiscount(ctx, plan)
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromInt(int64(months)).
		Mul(baseMonthly).
		Mul(decimal.NewFromInt(1).Sub(discount)), nil
}
