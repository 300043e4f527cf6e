package models

import "time"

// Rule - текстовое правило проверки, привязанное к пакету.
type Rule struct {
	ID        int64     `db:"id" json:"id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	RuleText  string    `db:"rule_text" json:"rule_text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StoreRuleRequest представляет тело запроса на сохранение правила.
// Указатели позволяют отличить отсутствующее поле от пустой строки.
type StoreRuleRequest struct {
	BatchID *string `json:"batch_id" validate:"required,min=1,max=64"`
	Rules   *string `json:"rules" validate:"required"`
}

// StatusResponse - ответ со статусом операции.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RulesResponse - список правил пакета.
type RulesResponse struct {
	Rules []string `json:"rules"`
}

// FileUploadResponse - ответ на загрузку PDF.
type FileUploadResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}
