package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/internal/storage"
)

// Параметры хранимых файлов.
const (
	FileExtension   = ".pdf"
	FileContentType = "application/pdf"
)

// FileService принимает и отдает PDF-файлы.
type FileService interface {
	// Upload сохраняет содержимое под новым именем и возвращает результат с публичной ссылкой.
	Upload(ctx context.Context, content []byte) (*UploadResult, error)
	// Open открывает файл по имени. Вызывающий закрывает io.ReadCloser.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// MaxUploadBytes возвращает предельный размер файла.
	MaxUploadBytes() int64
}

// UploadResult - итог загрузки файла.
type UploadResult struct {
	Name string
	URL  string
}

// FileConfig содержит параметры файлового сервиса.
type FileConfig struct {
	PublicBaseURL  string
	MaxUploadBytes int64
}

//nolint:gochecknoglobals // Логгер пакета.
var fileLog = logger.Component("FileService")

type fileService struct {
	storage storage.FileStorage
	ids     IDGenerator
	cfg     FileConfig
}

// NewFileService создает файловый сервис.
func NewFileService(fileStorage storage.FileStorage, ids IDGenerator, cfg FileConfig) FileService {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &fileService{storage: fileStorage, ids: ids, cfg: cfg}
}

// MaxUploadBytes реализует FileService.
func (s *fileService) MaxUploadBytes() int64 {
	return s.cfg.MaxUploadBytes
}

// Upload реализует FileService.
func (s *fileService) Upload(ctx context.Context, content []byte) (*UploadResult, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: пустой файл", ErrInvalidPayload)
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(content)) > s.cfg.MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	name := s.ids.NewID() + FileExtension
	err := s.storage.UploadFile(ctx, name, bytes.NewReader(content), int64(len(content)), FileContentType)
	if err != nil {
		fileLog.Errorf("Ошибка сохранения файла %s: %v", name, err)
		return nil, ErrStorage
	}

	fileLog.Infof("Файл %s сохранен (%d байт)", name, len(content))
	return &UploadResult{
		Name: name,
		URL:  s.cfg.PublicBaseURL + "/files/" + name,
	}, nil
}

// Open реализует FileService.
func (s *fileService) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !storage.ValidKey(name) {
		return nil, ErrFileNotFound
	}
	rc, err := s.storage.DownloadFile(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrFileNotFound
		}
		fileLog.Errorf("Ошибка чтения файла %s: %v", name, err)
		return nil, ErrStorage
	}
	return rc, nil
}
