package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"OrderDeskPlatform/pkg/logger"
)

// TraceHeader заголовок ответа с trace_id запроса
const TraceHeader = "X-Trace-ID"

// Logging присваивает запросу trace_id и логирует начало и завершение
func Logging(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := uuid.NewString()
			ctx := logger.WithTraceID(r.Context(), traceID)
			r = r.WithContext(ctx)
			w.Header().Set(TraceHeader, traceID)

			fields := []logger.Field{
				logger.String("trace_id", traceID),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.String("remote_addr", r.RemoteAddr),
			}
			log.Debug("Started request", fields...)

			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			fields = append(fields,
				logger.Int("status_code", wrapped.statusCode),
				logger.Duration("duration", time.Since(start)))
			log.Info("Completed request", fields...)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.statusCode = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}
