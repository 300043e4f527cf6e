package middleware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TedXpro/Comparisons-Website/internal/middleware"
	"github.com/TedXpro/Comparisons-Website/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCredentials принимает dealer/secret и токен "good-token".
type fakeCredentials struct {
	authErr error
}

func (f fakeCredentials) Authenticate(_ context.Context, username, password string) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	if username == "dealer" && password == "secret" {
		return username, nil
	}
	return "", services.ErrInvalidCredentials
}

func (f fakeCredentials) ParseToken(token string) (string, error) {
	if token == "good-token" {
		return "token-user", nil
	}
	return "", services.ErrInvalidCredentials
}

func TestGetUsernameFromContext(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
		ok       bool
	}{
		{"Контекст с именем", context.WithValue(context.Background(), middleware.UsernameKey, "dealer"), "dealer", true},
		{"Пустой контекст", context.Background(), "", false},
		{"Значение неверного типа", context.WithValue(context.Background(), middleware.UsernameKey, 42), "", false},
		{"Nil контекст", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			username, ok := middleware.GetUsernameFromContext(tt.ctx)
			assert.Equal(t, tt.expected, username)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestAuthenticator(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := middleware.GetUsernameFromContext(r.Context())
		require.True(t, ok)
		_, _ = io.WriteString(w, username)
	})

	tests := []struct {
		name           string
		creds          fakeCredentials
		setupRequest   func(r *http.Request)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Верный Basic",
			setupRequest:   func(r *http.Request) { r.SetBasicAuth("dealer", "secret") },
			expectedStatus: http.StatusOK,
			expectedBody:   "dealer",
		},
		{
			name:           "Неверный пароль Basic",
			setupRequest:   func(r *http.Request) { r.SetBasicAuth("dealer", "wrong") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Верный Bearer",
			setupRequest:   func(r *http.Request) { r.Header.Set("Authorization", "Bearer good-token") },
			expectedStatus: http.StatusOK,
			expectedBody:   "token-user",
		},
		{
			name:           "Неверный Bearer",
			setupRequest:   func(r *http.Request) { r.Header.Set("Authorization", "Bearer bad-token") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Нет заголовка",
			setupRequest:   func(*http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Неизвестная схема",
			setupRequest:   func(r *http.Request) { r.Header.Set("Authorization", "Digest abc") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Битый Basic",
			setupRequest:   func(r *http.Request) { r.Header.Set("Authorization", "Basic !!!") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Ошибка БД при проверке",
			creds:          fakeCredentials{authErr: errors.New("db down")},
			setupRequest:   func(r *http.Request) { r.SetBasicAuth("dealer", "secret") },
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard?batch_id=b1", nil)
			tt.setupRequest(req)
			rr := httptest.NewRecorder()

			middleware.Authenticator(tt.creds)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedBody, rr.Body.String())
			}
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic")
			}
		})
	}
}
