package handlers

import (
	_ "embed"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/TedXpro/Comparisons-Website/internal/export"
	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/internal/services"
	"github.com/TedXpro/Comparisons-Website/models"
)

//go:embed static/dashboard.html
var dashboardHTML []byte

//nolint:gochecknoglobals // Логгер пакета.
var comparisonLog = logger.Component("ComparisonHandler")

// ComparisonHandler обрабатывает загрузку и выдачу пакетов сравнений.
type ComparisonHandler struct {
	service     services.ComparisonService
	maxBodySize int64
}

// NewComparisonHandler создает обработчик. maxBodySize ограничивает тело POST /upload-data.
func NewComparisonHandler(s services.ComparisonService, maxBodySize int64) *ComparisonHandler {
	return &ComparisonHandler{service: s, maxBodySize: maxBodySize}
}

// UploadData принимает JSON-массив записей и сохраняет его как новый пакет.
func (h *ComparisonHandler) UploadData(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "Тело запроса слишком большое", http.StatusRequestEntityTooLarge)
			return
		}
		comparisonLog.Warnf("Ошибка чтения тела запроса: %v", err)
		http.Error(w, "Ошибка чтения тела запроса", http.StatusBadRequest)
		return
	}

	res, err := h.service.Ingest(r.Context(), body)
	if err != nil {
		writeServiceError(w, comparisonLog, err)
		return
	}

	writeJSON(w, comparisonLog, http.StatusOK, models.UploadDataResponse{
		Message:      "Data stored",
		ItemsCount:   res.ItemsCount,
		BatchID:      res.BatchID,
		DashboardURL: res.DashboardURL,
	})
}

// GetData возвращает все записи пакета.
func (h *ComparisonHandler) GetData(w http.ResponseWriter, r *http.Request) {
	batchID, ok := requireBatchID(w, r)
	if !ok {
		return
	}

	records, err := h.service.Query(r.Context(), batchID)
	if err != nil {
		writeServiceError(w, comparisonLog, err)
		return
	}
	if records == nil {
		records = []models.ComparisonRecord{}
	}

	writeJSON(w, comparisonLog, http.StatusOK, models.GetDataResponse{BatchID: batchID, Data: records})
}

// Export отдает пакет в виде XLSX-файла.
func (h *ComparisonHandler) Export(w http.ResponseWriter, r *http.Request) {
	batchID, ok := requireBatchID(w, r)
	if !ok {
		return
	}

	data, err := h.service.Export(r.Context(), batchID)
	if err != nil {
		writeServiceError(w, comparisonLog, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": "comparisons-" + batchID + ".xlsx"}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err = w.Write(data); err != nil {
		comparisonLog.Errorf("Ошибка отправки XLSX пакета %s: %v", batchID, err)
	}
}

// Dashboard отдает страницу дашборда. Данные страница запрашивает сама через /get-data.
func (h *ComparisonHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireBatchID(w, r); !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(dashboardHTML)
}
