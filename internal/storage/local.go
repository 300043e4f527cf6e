package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

//nolint:gochecknoglobals // Логгер пакета.
var localLog = logger.Component("LocalStorage")

// LocalStorage реализует FileStorage поверх плоского каталога на диске.
type LocalStorage struct {
	dir string
}

// NewLocalStorage создает каталог, если его нет.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога файлов '%s': %w", dir, err)
	}
	localLog.Infof("Файлы хранятся в каталоге %s", dir)
	return &LocalStorage{dir: dir}, nil
}

// UploadFile пишет файл во временный файл и переименовывает его,
// чтобы читатели не видели частично записанных данных.
func (s *LocalStorage) UploadFile(
	_ context.Context,
	objectKey string,
	reader io.Reader,
	_ int64,
	_ string,
) error {
	if !ValidKey(objectKey) {
		return ErrInvalidKey
	}
	target := filepath.Join(s.dir, objectKey)
	if _, err := os.Stat(target); err == nil {
		return ErrObjectExists
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	written, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("ошибка записи файла '%s': %w", objectKey, err)
	}
	if err = os.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("ошибка установки прав файла '%s': %w", objectKey, err)
	}
	// Link не перезаписывает существующий файл, в отличие от Rename.
	if err = os.Link(tmpName, target); err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrObjectExists
		}
		return fmt.Errorf("ошибка сохранения файла '%s': %w", objectKey, err)
	}

	localLog.Infof("Файл '%s' сохранен, размер: %d", objectKey, written)
	return nil
}

// DownloadFile открывает файл на чтение.
func (s *LocalStorage) DownloadFile(_ context.Context, objectKey string) (io.ReadCloser, error) {
	if !ValidKey(objectKey) {
		return nil, ErrObjectNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, objectKey))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("ошибка открытия файла '%s': %w", objectKey, err)
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, ErrObjectNotFound
	}
	return f, nil
}
