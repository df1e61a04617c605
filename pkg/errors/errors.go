package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error представляет кастомную ошибку с дополнительной информацией.
// Message и Details уходят клиенту, Cause остается только в логах сервера.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// ErrorCode представляет код ошибки
type ErrorCode string

// Определение кодов ошибок
const (
	ErrUnauthenticated     ErrorCode = "UNAUTHENTICATED"
	ErrTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	ErrAccessRevoked       ErrorCode = "ACCESS_REVOKED"
	ErrNotFound            ErrorCode = "NOT_FOUND"
	ErrValidation          ErrorCode = "VALIDATION_ERROR"
	ErrUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrTooManyRequests     ErrorCode = "TOO_MANY_REQUESTS"
	ErrInternal            ErrorCode = "INTERNAL_ERROR"
)

// Error возвращает сообщение об ошибке
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap возвращает причину ошибки
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду
func (e *Error) Is(target error) bool {
	if targetError, ok := target.(*Error); ok {
		return e.Code == targetError.Code
	}
	return false
}

// New создает новую кастомную ошибку
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает существующую ошибку в кастомную
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WithDetails добавляет детали к ошибке, не изменяя исходную
func (e *Error) WithDetails(details string) *Error {
	if e == nil {
		return nil
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// As извлекает *Error из цепочки ошибок
func As(err error) (*Error, bool) {
	var target *Error
	if stderrors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf возвращает код ошибки; для посторонних ошибок это ErrInternal
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Code
	}
	return ErrInternal
}

// HasCode проверяет, что в цепочке есть ошибка с указанным кодом
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// HTTPStatus возвращает соответствующий HTTP статус для ошибки
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusOK
	}

	switch e.Code {
	case ErrUnauthenticated, ErrTokenExpired, ErrAccessRevoked:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation:
		return http.StatusBadRequest
	case ErrTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// GetUserMessage возвращает сообщение, которое можно показать клиенту.
// Причина ошибки (Cause) сюда никогда не попадает.
func (e *Error) GetUserMessage() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}

	switch e.Code {
	case ErrUnauthenticated:
		return "Not authenticated"
	case ErrTokenExpired:
		return "Token has expired"
	case ErrAccessRevoked:
		return "Customer access revoked"
	case ErrNotFound:
		return "Resource not found"
	case ErrValidation:
		return "Invalid request"
	case ErrUpstreamUnavailable:
		return "Service unavailable. Please try again later."
	case ErrTooManyRequests:
		return "Too many requests"
	default:
		return "Internal server error"
	}
}

// WriteJSON отправляет JSON ответ с ошибкой. Посторонние ошибки
// превращаются в INTERNAL_ERROR без текста причины.
func WriteJSON(w http.ResponseWriter, err error) {
	customErr, ok := As(err)
	if !ok {
		customErr = New(ErrInternal, "")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(customErr.HTTPStatus())

	body := map[string]interface{}{
		"error": map[string]interface{}{
			"code":    customErr.Code,
			"message": customErr.GetUserMessage(),
			"details": customErr.Details,
		},
	}
	json.NewEncoder(w).Encode(body)
}
