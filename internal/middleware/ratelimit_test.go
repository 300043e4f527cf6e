package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TedXpro/Comparisons-Website/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	do := func(h http.Handler) int {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/upload-data", nil))
		return rr.Code
	}

	t.Run("Сверх burst - 429", func(t *testing.T) {
		// Очень низкая частота: за время теста токены не восстанавливаются.
		h := middleware.RateLimit(0.001, 2)(ok)

		assert.Equal(t, http.StatusOK, do(h))
		assert.Equal(t, http.StatusOK, do(h))
		assert.Equal(t, http.StatusTooManyRequests, do(h))
	})

	t.Run("Отключено при rps=0", func(t *testing.T) {
		h := middleware.RateLimit(0, 0)(ok)
		for range 10 {
			assert.Equal(t, http.StatusOK, do(h))
		}
	})
}
