package middleware

import (
	"context"
	"net/http"

	"OrderDeskPlatform/internal/domain"
	pkgerrors "OrderDeskPlatform/pkg/errors"
	"OrderDeskPlatform/pkg/logger"
)

// Verifier проверяет сессионный токен и возвращает клиента
type Verifier interface {
	Verify(ctx context.Context, token string) (domain.CustomerID, error)
}

type customerIDKey struct{}

// WithCustomerID кладет аутентифицированного клиента в контекст
func WithCustomerID(ctx context.Context, customerID domain.CustomerID) context.Context {
	return context.WithValue(ctx, customerIDKey{}, customerID)
}

// CustomerIDFromContext извлекает клиента, положенного SessionAuth
func CustomerIDFromContext(ctx context.Context) (domain.CustomerID, bool) {
	customerID, ok := ctx.Value(customerIDKey{}).(domain.CustomerID)
	return customerID, ok && !customerID.IsZero()
}

// SessionAuth пропускает запрос дальше только с действительным токеном в cookie
func SessionAuth(verifier Verifier, cookieName string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(cookieName); err == nil {
				token = cookie.Value
			}

			customerID, err := verifier.Verify(r.Context(), token)
			if err != nil {
				log.Debug("Session rejected",
					logger.CtxField(r.Context()),
					logger.String("path", r.URL.Path),
					logger.String("code", string(pkgerrors.CodeOf(err))))
				pkgerrors.WriteJSON(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCustomerID(r.Context(), customerID)))
		})
	}
}
