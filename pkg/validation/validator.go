package validation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	pkgerrors "OrderDeskPlatform/pkg/errors"
)

// Validator проверяет параметры входящих запросов.
// Все ошибки возвращаются с кодом VALIDATION_ERROR.
type Validator struct{}

// NewValidator создает новый Validator
func NewValidator() *Validator {
	return &Validator{}
}

// QueryInt читает целый параметр строки запроса; отсутствующий параметр дает def
func (v *Validator) QueryInt(values url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.ErrValidation, fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

// ValidateRange проверяет, что значение лежит в [min, max]
func (v *Validator) ValidateRange(value int, fieldName string, min, max int) error {
	if value < min || value > max {
		return pkgerrors.New(pkgerrors.ErrValidation,
			fmt.Sprintf("%s must be between %d and %d", fieldName, min, max))
	}
	return nil
}

// ValidateRequired проверяет, что строка не пустая после обрезки пробелов
func (v *Validator) ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return pkgerrors.New(pkgerrors.ErrValidation, fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidateStringLength проверяет длину строки в символах
func (v *Validator) ValidateStringLength(value, fieldName string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if length < min {
		return pkgerrors.New(pkgerrors.ErrValidation,
			fmt.Sprintf("%s must be at least %d characters, got: %d", fieldName, min, length))
	}
	if length > max {
		return pkgerrors.New(pkgerrors.ErrValidation,
			fmt.Sprintf("%s must not exceed %d characters, got: %d", fieldName, max, length))
	}
	return nil
}
