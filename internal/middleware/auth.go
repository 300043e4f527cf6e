package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/internal/services"
)

// Тип для ключа контекста.
type contextKey string

// UsernameKey - ключ для хранения имени аутентифицированного пользователя в контексте.
const UsernameKey contextKey = "username"

const basicRealm = `Basic realm="comparisons", charset="UTF-8"`

//nolint:gochecknoglobals // Логгер пакета.
var authLog = logger.Component("AuthMiddleware")

// Credentials проверяет учетные данные запроса.
type Credentials interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
	ParseToken(token string) (string, error)
}

// Authenticator пропускает запрос с заголовком Authorization вида
// "Basic <base64>" (проверяется по БД) или "Bearer <jwt>".
func Authenticator(creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				authLog.Debug("Заголовок Authorization отсутствует")
				unauthorized(w, "Требуется аутентификация")
				return
			}

			scheme, value, _ := strings.Cut(authHeader, " ")
			var (
				username string
				err      error
			)
			switch strings.ToLower(scheme) {
			case "basic":
				user, pass, ok := r.BasicAuth()
				if !ok {
					unauthorized(w, "Неверный формат заголовка Authorization")
					return
				}
				username, err = creds.Authenticate(r.Context(), user, pass)
			case "bearer":
				username, err = creds.ParseToken(strings.TrimSpace(value))
			default:
				authLog.Warnf("Неизвестная схема аутентификации: %s", scheme)
				unauthorized(w, "Неверный формат заголовка Authorization")
				return
			}

			if err != nil {
				if errors.Is(err, services.ErrInvalidCredentials) {
					unauthorized(w, "Неверные учетные данные")
					return
				}
				authLog.Errorf("Ошибка проверки учетных данных: %v", err)
				http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
				return
			}

			authLog.Debugf("Пользователь '%s' аутентифицирован (%s)", username, strings.ToLower(scheme))
			ctx := context.WithValue(r.Context(), UsernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", basicRealm)
	http.Error(w, msg, http.StatusUnauthorized)
}

// GetUsernameFromContext извлекает имя пользователя из контекста запроса.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}
