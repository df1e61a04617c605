package middleware

import (
	"net/http"
	"runtime/debug"

	pkgerrors "OrderDeskPlatform/pkg/errors"
	"OrderDeskPlatform/pkg/logger"
)

// Recovery превращает панику обработчика в 500 INTERNAL_ERROR
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("Panic recovered in HTTP handler",
						logger.CtxField(r.Context()),
						logger.Any("panic", rec),
						logger.String("stack_trace", string(debug.Stack())),
						logger.String("method", r.Method),
						logger.String("path", r.URL.Path))
					pkgerrors.WriteJSON(w, pkgerrors.New(pkgerrors.ErrInternal, ""))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
