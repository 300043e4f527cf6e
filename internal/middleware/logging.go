package middleware

import (
	"net/http"
	"time"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger пишет в лог метод, путь, статус, размер ответа и длительность запроса.
func RequestLogger(next http.Handler) http.Handler {
	log := logger.Component("HTTP")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		entry := log.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      status,
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  chimw.GetReqID(r.Context()),
			"remote":      r.RemoteAddr,
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("Запрос завершился ошибкой")
		case status >= http.StatusBadRequest:
			entry.Warn("Запрос отклонен")
		default:
			entry.Info("Запрос обработан")
		}
	})
}
