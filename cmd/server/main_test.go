package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TedXpro/Comparisons-Website/internal/handlers"
	"github.com/TedXpro/Comparisons-Website/internal/services"
)

// stubAuth отклоняет любые учетные данные.
type stubAuth struct{}

func (stubAuth) Register(context.Context, string, string) error { return nil }

func (stubAuth) Authenticate(context.Context, string, string) (string, error) {
	return "", services.ErrInvalidCredentials
}

func (stubAuth) Login(context.Context, string, string) (string, error) {
	return "", services.ErrInvalidCredentials
}

func (stubAuth) ParseToken(string) (string, error) { return "", services.ErrInvalidCredentials }

// Сервисы данных равны nil: тестируется только маршрутизация.
// Файловый сервис отклоняет пустое тело до обращения к хранилищу.
func routerDeps() *dependencies {
	return &dependencies{
		authService:       stubAuth{},
		authHandler:       handlers.NewAuthHandler(stubAuth{}),
		comparisonHandler: handlers.NewComparisonHandler(nil, 1024),
		ruleHandler:       handlers.NewRuleHandler(nil),
		fileHandler: handlers.NewFileHandler(
			services.NewFileService(nil, nil, services.FileConfig{MaxUploadBytes: 1024})),
	}
}

func TestSetupRouter_Routes(t *testing.T) {
	r := setupRouter(&config{AuthMode: authDashboard}, routerDeps())
	require.NotNil(t, r)

	routes := []struct{ method, pattern string }{
		{http.MethodGet, "/ping"},
		{http.MethodPost, "/register"},
		{http.MethodPost, "/login"},
		{http.MethodPost, "/upload-data"},
		{http.MethodGet, "/get-data"},
		{http.MethodPost, "/rules"},
		{http.MethodGet, "/rules"},
		{http.MethodPost, "/upload-pdf"},
		{http.MethodGet, "/files/{name}"},
		{http.MethodGet, "/dashboard"},
		{http.MethodGet, "/export"},
	}
	for _, rt := range routes {
		assert.True(t, hasRoute(r, rt.method, rt.pattern), "нет маршрута %s %s", rt.method, rt.pattern)
	}
}

func TestSetupRouter_AuthModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		path     string
		expected int
	}{
		{"off: дашборд открыт", authOff, "/dashboard?batch_id=b1", http.StatusOK},
		{"off: данные открыты", authOff, "/get-data", http.StatusBadRequest},
		{"dashboard: дашборд закрыт", authDashboard, "/dashboard?batch_id=b1", http.StatusUnauthorized},
		{"dashboard: выгрузка закрыта", authDashboard, "/export?batch_id=b1", http.StatusUnauthorized},
		{"dashboard: данные открыты", authDashboard, "/get-data", http.StatusBadRequest},
		{"all: данные закрыты", authAll, "/get-data", http.StatusUnauthorized},
		{"all: правила закрыты", authAll, "/rules?batch_id=b1", http.StatusUnauthorized},
		{"all: ping открыт", authAll, "/ping", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&config{AuthMode: tt.mode}, routerDeps())

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestSetupRouter_UploadRateLimit(t *testing.T) {
	r := setupRouter(&config{AuthMode: authOff, RateLimitRPS: 0.001, RateLimitBurst: 1}, routerDeps())

	send := func(path string) int {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusBadRequest, send("/upload-pdf"))
	// Лимит общий для обеих загрузок.
	assert.Equal(t, http.StatusTooManyRequests, send("/upload-data"))
	assert.Equal(t, http.StatusTooManyRequests, send("/upload-pdf"))
}

// Вспомогательная функция для проверки наличия маршрута.
func hasRoute(r chi.Router, method, pattern string) bool {
	found := false
	// Ошибка chi.Walk используется только для прерывания обхода.
	_ = chi.Walk(r, func(m, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if m == method && route == pattern {
			found = true
			return errors.New("found")
		}
		return nil
	})
	return found
}

func TestSetupDependencies(t *testing.T) {
	originalNewPostgresDB := newPostgresDB
	originalRunMigrations := runMigrations
	defer func() {
		newPostgresDB = originalNewPostgresDB
		runMigrations = originalRunMigrations
	}()

	mockDB := func(t *testing.T) func(string) (*sqlx.DB, error) {
		return func(string) (*sqlx.DB, error) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			mock.ExpectClose()
			return sqlx.NewDb(db, "postgres"), nil
		}
	}
	noMigrations := func(context.Context, *sql.DB) error { return nil }
	ctx := context.Background()

	t.Run("Ошибка: Некорректный DatabaseDSN", func(t *testing.T) {
		newPostgresDB = originalNewPostgresDB
		runMigrations = noMigrations

		_, err := setupDependencies(ctx, &config{DatabaseDSN: "невалидный dsn"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка инициализации БД")
	})

	t.Run("Ошибка: Миграции", func(t *testing.T) {
		newPostgresDB = mockDB(t)
		runMigrations = func(context.Context, *sql.DB) error { return errors.New("dirty database") }

		_, err := setupDependencies(ctx, &config{DatabaseDSN: "dsn", StorageBackend: storageLocal})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка применения миграций")
	})

	t.Run("Ошибка: Некорректный MinIO Endpoint", func(t *testing.T) {
		newPostgresDB = mockDB(t)
		runMigrations = noMigrations

		_, err := setupDependencies(ctx, &config{
			DatabaseDSN:    "dsn",
			StorageBackend: storageMinio,
			MinioEndpoint:  "invalid-endpoint:!!!",
			MinioBucket:    "bucket",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка инициализации хранилища")
	})

	t.Run("Успешно с локальным хранилищем и недоступным Redis", func(t *testing.T) {
		newPostgresDB = mockDB(t)
		runMigrations = noMigrations

		cfg := &config{
			DatabaseDSN:     "dsn",
			StorageBackend:  storageLocal,
			FilesDir:        t.TempDir(),
			RedisAddr:       "127.0.0.1:1",
			CacheTTL:        time.Minute,
			MaxUploadBytes:  1024,
			AuthMode:        authOff,
			ValidatePayload: true,
			AtomicIngest:    true,
		}
		deps, err := setupDependencies(ctx, cfg)
		require.NoError(t, err)
		defer deps.Close()

		assert.NotNil(t, deps.db)
		assert.NotNil(t, deps.fileStorage)
		assert.Nil(t, deps.batchCache)
		assert.NotNil(t, deps.authService)
		assert.NotNil(t, deps.authHandler)
		assert.NotNil(t, deps.comparisonHandler)
		assert.NotNil(t, deps.ruleHandler)
		assert.NotNil(t, deps.fileHandler)
	})
}

func TestServe(t *testing.T) {
	t.Run("Остановка по отмене контекста", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}

		done := make(chan error, 1)
		go func() { done <- serve(ctx, server, &config{}) }()
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("сервер не остановился")
		}
	})

	t.Run("Ошибка запуска", func(t *testing.T) {
		server := &http.Server{Addr: "bad-address", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}

		err := serve(context.Background(), server, &config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка запуска сервера")
	})
}
