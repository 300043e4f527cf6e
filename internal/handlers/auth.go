package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/models"
)

// AuthService определяет методы сервиса аутентификации, нужные обработчикам.
type AuthService interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

//nolint:gochecknoglobals // Логгер пакета.
var authLog = logger.Component("AuthHandler")

// AuthHandler обрабатывает HTTP-запросы, связанные с аутентификацией.
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authLog.Warnf("Ошибка декодирования запроса регистрации: %v", err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.service.Register(r.Context(), req.Username, req.Password); err != nil {
		writeServiceError(w, authLog, err)
		return
	}

	writeJSON(w, authLog, http.StatusCreated, models.MessageResponse{Message: "User registered successfully"})
}

// Login обрабатывает запрос на вход и выдает JWT токен.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authLog.Warnf("Ошибка декодирования запроса входа: %v", err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Имя пользователя и пароль не могут быть пустыми", http.StatusBadRequest)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, authLog, err)
		return
	}

	writeJSON(w, authLog, http.StatusOK, models.LoginResponse{Token: token})
}

// Ping отвечает на проверку доступности сервера.
func Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong"))
}
