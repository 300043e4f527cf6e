package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/TedXpro/Comparisons-Website/internal/cache"
	"github.com/TedXpro/Comparisons-Website/internal/export"
	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/internal/repository"
	"github.com/TedXpro/Comparisons-Website/models"
)

// ComparisonService принимает и выдает пакеты сравнений.
type ComparisonService interface {
	// Ingest сохраняет JSON-массив записей под новым batch_id.
	Ingest(ctx context.Context, body []byte) (*IngestResult, error)
	// Query возвращает записи пакета в порядке вставки (пустой срез для неизвестного пакета).
	Query(ctx context.Context, batchID string) ([]models.ComparisonRecord, error)
	// Export возвращает пакет в виде XLSX.
	Export(ctx context.Context, batchID string) ([]byte, error)
}

// IngestResult - итог загрузки пакета.
type IngestResult struct {
	BatchID      string
	ItemsCount   int
	DashboardURL string
}

// ComparisonConfig содержит параметры сервиса сравнений.
type ComparisonConfig struct {
	// ValidatePayload требует непустой массив хотя бы с одной непустой записью.
	ValidatePayload bool
	// AtomicIngest пишет пакет одной транзакцией.
	AtomicIngest bool
	// PublicBaseURL - внешний адрес сервера для ссылок на дашборд.
	PublicBaseURL string
}

//nolint:gochecknoglobals // Логгер пакета.
var comparisonLog = logger.Component("ComparisonService")

var _ ComparisonService = (*comparisonService)(nil)

type comparisonService struct {
	repo  repository.ComparisonRepository
	cache cache.BatchCache
	ids   IDGenerator
	cfg   ComparisonConfig
}

// NewComparisonService создает сервис сравнений. batchCache может быть nil.
func NewComparisonService(
	repo repository.ComparisonRepository,
	batchCache cache.BatchCache,
	ids IDGenerator,
	cfg ComparisonConfig,
) ComparisonService {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &comparisonService{repo: repo, cache: batchCache, ids: ids, cfg: cfg}
}

// Ingest реализует ComparisonService.
func (s *comparisonService) Ingest(ctx context.Context, body []byte) (*IngestResult, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: ожидался JSON-массив записей: %w", ErrInvalidPayload, err)
	}
	if items == nil && !s.cfg.ValidatePayload {
		// Тело "null" без проверки трактуем как пустой массив.
		items = []json.RawMessage{}
	}

	if s.cfg.ValidatePayload {
		if err := checkItems(items); err != nil {
			return nil, err
		}
	}

	batchID := s.ids.NewID()
	records := make([]models.ComparisonRecord, 0, len(items))
	for i, raw := range items {
		var in models.ComparisonInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("%w: запись %d: %w", ErrInvalidPayload, i, err)
		}
		records = append(records, in.Record(batchID))
	}

	stored, err := s.repo.InsertBatch(ctx, records, s.cfg.AtomicIngest)
	if err != nil {
		comparisonLog.Errorf("Ошибка сохранения пакета %s (сохранено %d из %d): %v",
			batchID, stored, len(records), err)
		return nil, ErrStorage
	}

	comparisonLog.Infof("Пакет %s принят: %d записей", batchID, stored)
	return &IngestResult{
		BatchID:      batchID,
		ItemsCount:   stored,
		DashboardURL: s.DashboardURL(batchID),
	}, nil
}

// DashboardURL строит ссылку на дашборд пакета.
func (s *comparisonService) DashboardURL(batchID string) string {
	return s.cfg.PublicBaseURL + "/dashboard?batch_id=" + url.QueryEscape(batchID)
}

// checkItems требует хотя бы одну непустую запись. null и {} считаются пустыми,
// элементы, не являющиеся объектами, отклоняются.
func checkItems(items []json.RawMessage) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: пустой список записей", ErrInvalidPayload)
	}

	nonEmpty := 0
	for i, raw := range items {
		raw = bytes.TrimSpace(raw)
		if bytes.Equal(raw, []byte("null")) {
			continue
		}
		if len(raw) == 0 || raw[0] != '{' {
			return fmt.Errorf("%w: запись %d не является объектом", ErrInvalidPayload, i)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("%w: запись %d: %w", ErrInvalidPayload, i, err)
		}
		if len(fields) > 0 {
			nonEmpty++
		}
	}

	if nonEmpty == 0 {
		return fmt.Errorf("%w: все записи пустые", ErrInvalidPayload)
	}
	return nil
}

// Query реализует ComparisonService.
func (s *comparisonService) Query(ctx context.Context, batchID string) ([]models.ComparisonRecord, error) {
	if batchID == "" {
		return nil, fmt.Errorf("%w: не указан batch_id", ErrInvalidPayload)
	}

	if s.cache != nil {
		records, ok, err := s.cache.Get(ctx, batchID)
		switch {
		case err != nil:
			comparisonLog.Warnf("Ошибка чтения кэша для пакета %s: %v", batchID, err)
		case ok:
			return records, nil
		}
	}

	records, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		comparisonLog.Errorf("Ошибка получения пакета %s: %v", batchID, err)
		return nil, ErrStorage
	}

	// Пустой результат не кэшируем: пакет мог еще не дойти до БД.
	if s.cache != nil && len(records) > 0 {
		if err = s.cache.Set(ctx, batchID, records); err != nil {
			comparisonLog.Warnf("Ошибка записи кэша для пакета %s: %v", batchID, err)
		}
	}
	return records, nil
}

// Export реализует ComparisonService.
func (s *comparisonService) Export(ctx context.Context, batchID string) ([]byte, error) {
	records, err := s.Query(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrBatchNotFound
	}

	var buf bytes.Buffer
	if err = export.WriteXLSX(&buf, records); err != nil {
		comparisonLog.Errorf("Ошибка формирования XLSX для пакета %s: %v", batchID, err)
		return nil, fmt.Errorf("ошибка формирования XLSX: %w", err)
	}
	return buf.Bytes(), nil
}
