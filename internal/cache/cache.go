// Package cache кэширует результаты запросов пакетов сравнений в Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/models"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "comparisons:batch:"
	pingTimeout = 3 * time.Second
)

//nolint:gochecknoglobals // Логгер пакета.
var cacheLog = logger.Component("Cache")

// BatchCache хранит записи пакетов. Промах кэша не является ошибкой.
type BatchCache interface {
	Get(ctx context.Context, batchID string) ([]models.ComparisonRecord, bool, error)
	Set(ctx context.Context, batchID string, records []models.ComparisonRecord) error
}

// Config содержит параметры подключения к Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache реализует BatchCache поверх Redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache подключается к Redis и проверяет соединение.
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ошибка подключения к Redis %s: %w", cfg.Addr, err)
	}

	cacheLog.Infof("Подключение к Redis %s установлено, TTL %s", cfg.Addr, cfg.TTL)
	return NewRedisCacheFromClient(rdb, cfg.TTL), nil
}

// NewRedisCacheFromClient оборачивает готовый клиент.
func NewRedisCacheFromClient(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Key возвращает ключ Redis для пакета.
func Key(batchID string) string {
	return keyPrefix + batchID
}

// Get реализует BatchCache.
func (c *RedisCache) Get(ctx context.Context, batchID string) ([]models.ComparisonRecord, bool, error) {
	val, err := c.rdb.Get(ctx, Key(batchID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("ошибка чтения из Redis: %w", err)
	}

	var records []models.ComparisonRecord
	if err = json.Unmarshal(val, &records); err != nil {
		return nil, false, fmt.Errorf("ошибка декодирования записи кэша: %w", err)
	}
	cacheLog.Debugf("Пакет %s получен из кэша", batchID)
	return records, true, nil
}

// Set реализует BatchCache.
func (c *RedisCache) Set(ctx context.Context, batchID string, records []models.ComparisonRecord) error {
	val, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("ошибка кодирования записи кэша: %w", err)
	}
	if err = c.rdb.Set(ctx, Key(batchID), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи в Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
