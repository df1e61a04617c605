package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "OrderDeskPlatform/pkg/errors"
	"OrderDeskPlatform/pkg/logger"
	"OrderDeskPlatform/pkg/ratelimit"
)

// RateLimit ограничивает число запросов с одного IP за окно.
// Ошибка лимитера не блокирует запрос.
func RateLimit(limiter ratelimit.RateLimiter, limit int, window time.Duration, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + ClientIP(r)

			exceeded, err := limiter.CheckRateLimit(r.Context(), key, limit, window)
			if err != nil {
				log.Error("Rate limiter error, allowing request",
					logger.CtxField(r.Context()),
					logger.String("key", key),
					logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if exceeded {
				log.Warn("Rate limit exceeded",
					logger.CtxField(r.Context()),
					logger.String("key", key),
					logger.Int("limit", limit),
					logger.Duration("window", window))
				w.Header().Set("Retry-After", retryAfter(window))
				pkgerrors.WriteJSON(w, pkgerrors.New(pkgerrors.ErrTooManyRequests, ""))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP адрес клиента: первый из X-Forwarded-For, затем X-Real-IP, затем RemoteAddr
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func retryAfter(window time.Duration) string {
	seconds := int(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
