package validation

import (
	"fmt"

	"github.com/mmeshcher/tariff-core/internal/model"
)

// AdultAge — минимальный допустимый возраст пользователя.
const AdultAge = 18

// ErrUnderage возвращается, если пользователь младше AdultAge.
var ErrUnderage = fmt.Errorf("%w: user must be %d+", model.ErrInvalidArgument, AdultAge)

// EnsureAdult возвращает ErrUnderage, если возраст меньше 18.
func EnsureAdult(age int) error {
	if age < AdultAge {
		return ErrUnderage
	}
	return nil
}

// ValidateUser проверяет возраст и адрес электронной почты пользователя.
func ValidateUser(u model.User) error {
	if err := EnsureAdult(u.Age); err != nil {
		return err
	}
	if !IsValidEmail(u.Email) {
		return ErrInvalidEmail
	}
	return nil
}
