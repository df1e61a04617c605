package middleware

import "net/http"

// Chain оборачивает обработчик; первый middleware в списке внешний
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
