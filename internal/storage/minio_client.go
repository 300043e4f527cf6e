package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const minioNoSuchKey = "NoSuchKey"

//nolint:gochecknoglobals // Логгер пакета.
var minioLog = logger.Component("Minio")

// MinioClient реализует FileStorage для MinIO.
type MinioClient struct {
	client     *minio.Client
	bucketName string
}

// MinioConfig содержит параметры для подключения к MinIO.
type MinioConfig struct {
	Endpoint        string // Адрес MinIO (например, "localhost:9000")
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
}

// NewMinioClient создает клиент MinIO и при необходимости создает бакет.
func NewMinioClient(ctx context.Context, cfg MinioConfig) (*MinioClient, error) {
	minioLog.Infof("Инициализация клиента MinIO для эндпоинта %s...", cfg.Endpoint)

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
	}

	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки существования бакета '%s': %w", cfg.BucketName, err)
	}
	if !exists {
		minioLog.Infof("Бакет '%s' не найден, создаем...", cfg.BucketName)
		if err = minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("ошибка создания бакета '%s': %w", cfg.BucketName, err)
		}
	}

	minioLog.Infof("Клиент MinIO инициализирован для бакета '%s'", cfg.BucketName)
	return &MinioClient{
		client:     minioClient,
		bucketName: cfg.BucketName,
	}, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == minioNoSuchKey
}

// UploadFile загружает файл в MinIO. Существующий объект не перезаписывается.
func (c *MinioClient) UploadFile(
	ctx context.Context,
	objectKey string,
	reader io.Reader,
	size int64,
	contentType string,
) error {
	if !ValidKey(objectKey) {
		return ErrInvalidKey
	}

	_, err := c.client.StatObject(ctx, c.bucketName, objectKey, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return ErrObjectExists
	case !isNoSuchKey(err):
		return fmt.Errorf("ошибка проверки объекта в MinIO: %w", err)
	}

	info, err := c.client.PutObject(ctx, c.bucketName, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		minioLog.Errorf("Ошибка загрузки файла '%s': %v", objectKey, err)
		return fmt.Errorf("ошибка загрузки файла в MinIO: %w", err)
	}

	minioLog.Infof("Файл '%s' загружен, размер: %d, ETag: %s", objectKey, info.Size, info.ETag)
	return nil
}

// DownloadFile возвращает содержимое объекта. Вызывающий закрывает io.ReadCloser.
func (c *MinioClient) DownloadFile(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	if !ValidKey(objectKey) {
		return nil, ErrObjectNotFound
	}

	// GetObject не обращается к серверу до первого чтения, поэтому наличие проверяем через Stat.
	if _, err := c.client.StatObject(ctx, c.bucketName, objectKey, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			minioLog.Debugf("Файл '%s' не найден в бакете '%s'", objectKey, c.bucketName)
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("ошибка получения метаданных из MinIO: %w", err)
	}

	object, err := c.client.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		minioLog.Errorf("Ошибка получения файла '%s': %v", objectKey, err)
		return nil, fmt.Errorf("ошибка получения файла из MinIO: %w", err)
	}
	return object, nil
}
