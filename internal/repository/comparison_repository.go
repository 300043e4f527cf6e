package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/models"
	"github.com/jmoiron/sqlx"
)

//nolint:gochecknoglobals // Логгер пакета.
var comparisonRepoLog = logger.Component("ComparisonRepo")

// ComparisonRepository определяет методы для работы с записями сравнений.
type ComparisonRepository interface {
	// InsertBatch вставляет записи одного пакета.
	// При atomic=true все записи пишутся в одной транзакции (все или ничего),
	// иначе построчно, и при ошибке в БД остаются уже вставленные строки.
	// Возвращает число сохраненных строк.
	InsertBatch(ctx context.Context, records []models.ComparisonRecord, atomic bool) (int, error)
	// ListByBatch возвращает записи пакета в порядке вставки.
	ListByBatch(ctx context.Context, batchID string) ([]models.ComparisonRecord, error)
}

type postgresComparisonRepository struct {
	db *sqlx.DB
}

// NewPostgresComparisonRepository создает репозиторий сравнений для PostgreSQL.
func NewPostgresComparisonRepository(db *sqlx.DB) ComparisonRepository {
	return &postgresComparisonRepository{db: db}
}

//nolint:gochecknoglobals // Запросы собираются один раз из списка колонок.
var (
	insertComparisonQuery = fmt.Sprintf(`INSERT INTO comparisons (%s) VALUES (:%s)`,
		strings.Join(models.ComparisonColumns, ", "),
		strings.Join(models.ComparisonColumns, ", :"))

	selectComparisonsQuery = fmt.Sprintf(`SELECT id, %s, created_at FROM comparisons WHERE batch_id=$1 ORDER BY id`,
		strings.Join(models.ComparisonColumns, ", "))
)

func insertComparison(ctx context.Context, e sqlx.ExtContext, rec models.ComparisonRecord) error {
	_, err := sqlx.NamedExecContext(ctx, e, insertComparisonQuery, rec)
	return err
}

// InsertBatch реализует ComparisonRepository.
func (r *postgresComparisonRepository) InsertBatch(
	ctx context.Context,
	records []models.ComparisonRecord,
	atomic bool,
) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	batchID := records[0].BatchID

	if !atomic {
		for i, rec := range records {
			if err := insertComparison(ctx, r.db, rec); err != nil {
				comparisonRepoLog.Errorf("Ошибка вставки строки %d пакета %s, сохранено строк: %d: %v",
					i, batchID, i, err)
				return i, fmt.Errorf("ошибка выполнения запроса на вставку сравнения: %w", err)
			}
		}
		comparisonRepoLog.Infof("Пакет %s: сохранено %d строк (без транзакции)", batchID, len(records))
		return len(records), nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	for i, rec := range records {
		if err = insertComparison(ctx, tx, rec); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				comparisonRepoLog.Errorf("Ошибка отката транзакции пакета %s: %v", batchID, rbErr)
			}
			comparisonRepoLog.Errorf("Ошибка вставки строки %d пакета %s, транзакция отменена: %v", i, batchID, err)
			return 0, fmt.Errorf("ошибка выполнения запроса на вставку сравнения: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		comparisonRepoLog.Errorf("Ошибка фиксации транзакции пакета %s: %v", batchID, err)
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	comparisonRepoLog.Infof("Пакет %s: сохранено %d строк", batchID, len(records))
	return len(records), nil
}

// ListByBatch реализует ComparisonRepository.
// Для неизвестного пакета возвращает пустой срез без ошибки.
func (r *postgresComparisonRepository) ListByBatch(
	ctx context.Context,
	batchID string,
) ([]models.ComparisonRecord, error) {
	records := make([]models.ComparisonRecord, 0)
	if err := r.db.SelectContext(ctx, &records, selectComparisonsQuery, batchID); err != nil {
		comparisonRepoLog.Errorf("Ошибка при получении записей пакета %s: %v", batchID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение сравнений: %w", err)
	}

	comparisonRepoLog.Debugf("Получено %d записей пакета %s", len(records), batchID)
	return records, nil
}
