package services_test

import (
	"context"
	"io"

	"github.com/TedXpro/Comparisons-Website/models"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	args := m.Called(ctx, user)
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.(*models.User), args.Error(1)
}

// MockComparisonRepository is a mock for ComparisonRepository.
type MockComparisonRepository struct {
	mock.Mock
}

func (m *MockComparisonRepository) InsertBatch(
	ctx context.Context,
	records []models.ComparisonRecord,
	atomic bool,
) (int, error) {
	args := m.Called(ctx, records, atomic)
	return args.Int(0), args.Error(1)
}

func (m *MockComparisonRepository) ListByBatch(ctx context.Context, batchID string) ([]models.ComparisonRecord, error) {
	args := m.Called(ctx, batchID)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.([]models.ComparisonRecord), args.Error(1)
}

// MockRuleRepository is a mock for RuleRepository.
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) CreateRule(ctx context.Context, batchID, ruleText *string) (int64, error) {
	args := m.Called(ctx, batchID, ruleText)
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRuleRepository) ListRuleTexts(ctx context.Context, batchID string) ([]string, error) {
	args := m.Called(ctx, batchID)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.([]string), args.Error(1)
}

// MockFileStorage is a mock for FileStorage.
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	_, _ = io.Copy(io.Discard, reader)
	args := m.Called(ctx, objectKey, reader, size, contentType)
	return args.Error(0)
}

func (m *MockFileStorage) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	args := m.Called(ctx, objectKey)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.(io.ReadCloser), args.Error(1)
}

// MockBatchCache is a mock for BatchCache.
type MockBatchCache struct {
	mock.Mock
}

func (m *MockBatchCache) Get(ctx context.Context, batchID string) ([]models.ComparisonRecord, bool, error) {
	args := m.Called(ctx, batchID)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.([]models.ComparisonRecord), args.Bool(1), args.Error(2)
}

func (m *MockBatchCache) Set(ctx context.Context, batchID string, records []models.ComparisonRecord) error {
	args := m.Called(ctx, batchID, records)
	return args.Error(0)
}

// fixedID всегда возвращает одно и то же значение.
type fixedID string

func (f fixedID) NewID() string { return string(f) }
