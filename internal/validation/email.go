// Package validation содержит функции валидации входных данных.
package validation

import (
	"fmt"
	"strings"

	"github.com/mmeshcher/tariff-core/internal/model"
)

// ErrInvalidEmail возвращается, если адрес электронной почты не прошёл проверку формы.
var ErrInvalidEmail = fmt.Errorf("%w: invalid email", model.ErrInvalidArgument)

// IsValidEmail выполняет поверхностную проверку адреса: строка не пустая
// и содержит символы "@" и "." в любом месте.
func IsValidEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}

	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// IsValidOptionalEmail проверяет необязательный адрес; отсутствующий адрес некорректен.
func IsValidOptionalEmail(email *string) bool {
	if email == nil {
		return false
	}
	return IsValidEmail(*email)
}
