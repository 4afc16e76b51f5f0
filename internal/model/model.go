// Package model содержит доменные сущности сервиса тарифов.
package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidArgument — корневая ошибка некорректных входных данных.
// Все частные ошибки валидации оборачивают её.
var ErrInvalidArgument = errors.New("invalid argument")

// User представляет пользователя. Корректность полей проверяется пакетом validation.
type User struct {
	Login string `json:"login"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// Plan — идентификатор тарифного плана.
type Plan string

const (
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// PlanRate описывает месячную стоимость плана.
type PlanRate struct {
	Plan    Plan            `json:"plan"`
	Monthly decimal.Decimal `json:"monthly"`
}

// Discount описывает скидку, настроенную для плана.
type Discount struct {
	Plan Plan            `json:"plan"`
	Rate decimal.Decimal `json:"discount"`
}

// Quote содержит расчёт стоимости плана с учётом скидки.
type Quote struct {
	ID          string          `json:"id"`
	Plan        Plan            `json:"plan"`
	Months      int             `json:"months"`
	BaseMonthly decimal.Decimal `json:"base_monthly"`
	Discount    decimal.Decimal `json:"discount"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}
