// Package storage хранит загруженные PDF-файлы: в локальном каталоге или в MinIO.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// FileStorage определяет интерфейс для взаимодействия с файловым хранилищем.
// Объекты неизменяемы: повторная запись под тем же ключом запрещена.
type FileStorage interface {
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error)
}

// Ошибки хранилища.
var (
	ErrObjectNotFound = errors.New("объект не найден в хранилище")
	ErrObjectExists   = errors.New("объект уже существует в хранилище")
	ErrInvalidKey     = errors.New("недопустимое имя объекта")
)

// ValidKey сообщает, является ли ключ простым именем файла без каталогов.
// Скрытые имена (с точкой в начале) зарезервированы под временные файлы.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, ".") {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	return path.Base(key) == key
}
