package handlers_test

import (
	"context"
	"io"

	"github.com/TedXpro/Comparisons-Website/internal/services"
	"github.com/TedXpro/Comparisons-Website/models"
	"github.com/stretchr/testify/mock"
)

type MockComparisonService struct {
	mock.Mock
}

func (m *MockComparisonService) Ingest(_ context.Context, body []byte) (*services.IngestResult, error) {
	args := m.Called(string(body))
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.(*services.IngestResult), args.Error(1)
}

func (m *MockComparisonService) Query(_ context.Context, batchID string) ([]models.ComparisonRecord, error) {
	args := m.Called(batchID)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.([]models.ComparisonRecord), args.Error(1)
}

func (m *MockComparisonService) Export(_ context.Context, batchID string) ([]byte, error) {
	args := m.Called(batchID)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.([]byte), args.Error(1)
}

type MockRuleService struct {
	mock.Mock
}

func (m *MockRuleService) Store(_ context.Context, req models.StoreRuleRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockRuleService) Retrieve(_ context.Context, batchID string) ([]string, error) {
	args := m.Called(batchID)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.([]string), args.Error(1)
}

type MockFileService struct {
	mock.Mock
	maxBytes int64
}

func (m *MockFileService) Upload(_ context.Context, content []byte) (*services.UploadResult, error) {
	args := m.Called(string(content))
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.(*services.UploadResult), args.Error(1)
}

func (m *MockFileService) Open(_ context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(name)
	ret := args.Get(0)
	if ret == nil {
		return nil, args.Error(1)
	}
	//nolint:errcheck // Ошибки кастования в моках приемлемы
	return ret.(io.ReadCloser), args.Error(1)
}

func (m *MockFileService) MaxUploadBytes() int64 {
	return m.maxBytes
}
