package repository

import (
	"context"
	"fmt"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/jmoiron/sqlx"
)

//nolint:gochecknoglobals // Логгер пакета.
var ruleRepoLog = logger.Component("RuleRepo")

// RuleRepository определяет методы для работы с правилами пакетов.
type RuleRepository interface {
	// CreateRule сохраняет правило. nil-значения пишутся как NULL,
	// и ограничения схемы отклоняют такую вставку.
	CreateRule(ctx context.Context, batchID, ruleText *string) (int64, error)
	// ListRuleTexts возвращает тексты правил пакета в порядке вставки.
	ListRuleTexts(ctx context.Context, batchID string) ([]string, error)
}

type postgresRuleRepository struct {
	db *sqlx.DB
}

// NewPostgresRuleRepository создает репозиторий правил для PostgreSQL.
func NewPostgresRuleRepository(db *sqlx.DB) RuleRepository {
	return &postgresRuleRepository{db: db}
}

// CreateRule реализует RuleRepository.
func (r *postgresRuleRepository) CreateRule(ctx context.Context, batchID, ruleText *string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}

	var ruleID int64
	query := `INSERT INTO rules (batch_id, rule_text) VALUES ($1, $2) RETURNING id`
	if err = tx.QueryRowxContext(ctx, query, batchID, ruleText).Scan(&ruleID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			ruleRepoLog.Errorf("Ошибка отката транзакции: %v", rbErr)
		}
		ruleRepoLog.Errorf("Ошибка при сохранении правила: %v", err)
		return 0, fmt.Errorf("ошибка выполнения запроса на создание правила: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	ruleRepoLog.Infof("Правило %d сохранено", ruleID)
	return ruleID, nil
}

// ListRuleTexts реализует RuleRepository.
func (r *postgresRuleRepository) ListRuleTexts(ctx context.Context, batchID string) ([]string, error) {
	rules := make([]string, 0)
	query := `SELECT rule_text FROM rules WHERE batch_id=$1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &rules, query, batchID); err != nil {
		ruleRepoLog.Errorf("Ошибка при получении правил пакета %s: %v", batchID, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение правил: %w", err)
	}
	return rules, nil
}
