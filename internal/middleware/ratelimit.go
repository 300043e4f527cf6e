package middleware

import (
	"net/http"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"golang.org/x/time/rate"
)

//nolint:gochecknoglobals // Логгер пакета.
var rateLog = logger.Component("RateLimit")

// RateLimit ограничивает частоту запросов общим token bucket.
// При rps <= 0 ограничение отключено.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				rateLog.WithField("path", r.URL.Path).Warn("Превышен лимит запросов")
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Слишком много запросов", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
