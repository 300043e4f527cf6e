package services

import (
	"context"
	"fmt"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/internal/repository"
	"github.com/TedXpro/Comparisons-Website/models"
)

// RuleService хранит текстовые правила проверки пакетов.
type RuleService interface {
	Store(ctx context.Context, req models.StoreRuleRequest) error
	Retrieve(ctx context.Context, batchID string) ([]string, error)
}

//nolint:gochecknoglobals // Логгер пакета.
var ruleLog = logger.Component("RuleService")

type ruleService struct {
	repo            repository.RuleRepository
	validatePayload bool
}

// NewRuleService создает сервис правил.
// При validatePayload=false пустые поля доходят до ограничений БД.
func NewRuleService(repo repository.RuleRepository, validatePayload bool) RuleService {
	return &ruleService{repo: repo, validatePayload: validatePayload}
}

// Store реализует RuleService.
func (s *ruleService) Store(ctx context.Context, req models.StoreRuleRequest) error {
	if s.validatePayload {
		if err := validateStruct(req); err != nil {
			return err
		}
	}

	id, err := s.repo.CreateRule(ctx, req.BatchID, req.Rules)
	if err != nil {
		ruleLog.Errorf("Ошибка сохранения правила: %v", err)
		return ErrStorage
	}

	ruleLog.Infof("Правило %d сохранено", id)
	return nil
}

// Retrieve реализует RuleService.
func (s *ruleService) Retrieve(ctx context.Context, batchID string) ([]string, error) {
	if batchID == "" {
		return nil, fmt.Errorf("%w: не указан batch_id", ErrInvalidPayload)
	}
	rules, err := s.repo.ListRuleTexts(ctx, batchID)
	if err != nil {
		ruleLog.Errorf("Ошибка получения правил пакета %s: %v", batchID, err)
		return nil, ErrStorage
	}
	return rules, nil
}
