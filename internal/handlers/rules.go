package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/internal/services"
	"github.com/TedXpro/Comparisons-Website/models"
)

//nolint:gochecknoglobals // Логгер пакета.
var ruleLog = logger.Component("RuleHandler")

// RuleHandler обрабатывает сохранение и выдачу правил.
type RuleHandler struct {
	service services.RuleService
}

// NewRuleHandler создает обработчик правил.
func NewRuleHandler(s services.RuleService) *RuleHandler {
	return &RuleHandler{service: s}
}

// StoreRule сохраняет правило пакета.
func (h *RuleHandler) StoreRule(w http.ResponseWriter, r *http.Request) {
	var req models.StoreRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ruleLog.Warnf("Ошибка декодирования запроса правила: %v", err)
		http.Error(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.service.Store(r.Context(), req); err != nil {
		writeServiceError(w, ruleLog, err)
		return
	}

	writeJSON(w, ruleLog, http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Rule stored successfully.",
	})
}

// GetRules возвращает правила пакета.
func (h *RuleHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	batchID, ok := requireBatchID(w, r)
	if !ok {
		return
	}

	rules, err := h.service.Retrieve(r.Context(), batchID)
	if err != nil {
		writeServiceError(w, ruleLog, err)
		return
	}
	if rules == nil {
		rules = []string{}
	}

	writeJSON(w, ruleLog, http.StatusOK, models.RulesResponse{Rules: rules})
}
