package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TedXpro/Comparisons-Website/internal/services"
	"github.com/sirupsen/logrus"
)

const internalErrorText = "Внутренняя ошибка сервера"

// writeJSON отправляет v в JSON с указанным статусом.
func writeJSON(w http.ResponseWriter, log *logrus.Entry, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Статус уже отправлен клиенту.
		log.Errorf("Ошибка кодирования ответа: %v", err)
	}
}

// writeServiceError сопоставляет ошибку сервиса с HTTP-статусом.
func writeServiceError(w http.ResponseWriter, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidPayload):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidCredentials):
		http.Error(w, "Неверное имя пользователя или пароль", http.StatusUnauthorized)
	case errors.Is(err, services.ErrUsernameTaken):
		http.Error(w, "Имя пользователя уже занято", http.StatusConflict)
	case errors.Is(err, services.ErrFileNotFound):
		http.Error(w, "Файл не найден", http.StatusNotFound)
	case errors.Is(err, services.ErrBatchNotFound):
		http.Error(w, "Пакет не найден", http.StatusNotFound)
	case errors.Is(err, services.ErrJWTDisabled):
		http.Error(w, "Выдача токенов отключена", http.StatusNotImplemented)
	case errors.Is(err, services.ErrFileTooLarge):
		http.Error(w, "Файл слишком большой", http.StatusRequestEntityTooLarge)
	default:
		log.Errorf("Внутренняя ошибка: %v", err)
		http.Error(w, internalErrorText, http.StatusInternalServerError)
	}
}

// requireBatchID читает обязательный параметр batch_id.
func requireBatchID(w http.ResponseWriter, r *http.Request) (string, bool) {
	batchID := r.URL.Query().Get("batch_id")
	if batchID == "" {
		http.Error(w, "Не указан параметр batch_id", http.StatusBadRequest)
		return "", false
	}
	return batchID, true
}
