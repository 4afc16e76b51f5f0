// Package tariff содержит расчёт стоимости тарифных планов.
package tariff

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/tariff-core/internal/model"
)

var (
	// ErrMonthsOutOfRange возвращается при неположительном количестве месяцев.
	ErrMonthsOutOfRange = fmt.Errorf("%w: months must be positive", model.ErrInvalidArgument)
	// ErrUnknownPlan возвращается для неизвестного идентификатора плана.
	ErrUnknownPlan = fmt.Errorf("%w: unknown plan", model.ErrInvalidArgument)
)

var monthlyRates = map[model.Plan]decimal.Decimal{
	model.PlanBasic:      decimal.NewFromInt(5),
	model.PlanPro:        decimal.NewFromInt(12),
	model.PlanEnterprise: decimal.NewFromInt(25),
}

// Plans возвращает поддерживаемые планы в порядке возрастания цены.
func Plans() []model.Plan {
	return []model.Plan{model.PlanBasic, model.PlanPro, model.PlanEnterprise}
}

// MonthlyRate возвращает месячную стоимость плана.
func MonthlyRate(plan string) (decimal.Decimal, error) {
	rate, ok := monthlyRates[model.Plan(plan)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}
	return rate, nil
}

// CalcPrice возвращает стоимость плана за указанное количество месяцев.
// Количество месяцев проверяется раньше плана.
func CalcPrice(plan string, months int) (decimal.Decimal, error) {
	if months <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrMonthsOutOfRange, months)
	}

	rate, err := MonthlyRate(plan)
	if err != nil {
		return decimal.Zero, err
	}

	return rate.Mul(decimal.NewFromInt(int64(months))), nil
}
