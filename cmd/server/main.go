package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // Драйвер PostgreSQL

	"github.com/TedXpro/Comparisons-Website/internal/cache"
	"github.com/TedXpro/Comparisons-Website/internal/handlers"
	"github.com/TedXpro/Comparisons-Website/internal/logger"
	appmiddleware "github.com/TedXpro/Comparisons-Website/internal/middleware"
	"github.com/TedXpro/Comparisons-Website/internal/migrations"
	"github.com/TedXpro/Comparisons-Website/internal/repository"
	"github.com/TedXpro/Comparisons-Website/internal/services"
	"github.com/TedXpro/Comparisons-Website/internal/storage"
)

const (
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	startupTimeout         = 30 * time.Second
)

//nolint:gochecknoglobals // Логгер пакета.
var serverLog = logger.Component("Server")

// Подменяются в тестах.
//
//nolint:gochecknoglobals // Точки подмены зависимостей.
var (
	newPostgresDB = repository.NewPostgresDB
	runMigrations = migrations.Up
)

// dependencies хранит инициализированные зависимости сервера.
type dependencies struct {
	db          *sqlx.DB
	fileStorage storage.FileStorage
	batchCache  *cache.RedisCache
	authService services.AuthService

	authHandler       *handlers.AuthHandler
	comparisonHandler *handlers.ComparisonHandler
	ruleHandler       *handlers.RuleHandler
	fileHandler       *handlers.FileHandler
}

// Close освобождает соединения с БД и Redis.
func (d *dependencies) Close() {
	if d.batchCache != nil {
		if err := d.batchCache.Close(); err != nil {
			serverLog.Warnf("Ошибка закрытия соединения с Redis: %v", err)
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			serverLog.Warnf("Ошибка закрытия соединения с БД: %v", err)
		}
	}
}

func main() {
	if err := run(); err != nil {
		serverLog.Errorf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		serverLog.Warnf("Ошибка загрузки .env: %v", err)
	}

	cfg, err := parseConfig(os.Args[1:], os.LookupEnv)
	if err != nil {
		return err
	}
	if err = logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	serverLog.Info("Запуск сервера сравнений...")
	if cfg.JWTSecret == "" {
		serverLog.Warn("JWT_SECRET не задан: /login отключен, доступна только Basic-аутентификация")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	deps, err := setupDependencies(startCtx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer deps.Close()

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      setupRouter(cfg, deps),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}
	return serve(ctx, server, cfg)
}

// serve запускает сервер и останавливает его после отмены ctx.
func serve(ctx context.Context, server *http.Server, cfg *config) error {
	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSEnabled() {
			serverLog.Infof("Запуск HTTPS-сервера на %s (сертификат %s)", server.Addr, cfg.CertFile)
			errCh <- server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
			return
		}
		serverLog.Infof("Запуск HTTP-сервера на %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
		serverLog.Info("Получен сигнал остановки, завершаем обработку запросов...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	serverLog.Info("Сервер остановлен")
	return nil
}

// setupDependencies подключается к БД, применяет миграции и собирает сервисы и обработчики.
func setupDependencies(ctx context.Context, cfg *config) (*dependencies, error) {
	deps := &dependencies{}
	var err error

	deps.db, err = newPostgresDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
	}

	if err = runMigrations(ctx, deps.db.DB); err != nil {
		deps.Close()
		return nil, fmt.Errorf("ошибка применения миграций: %w", err)
	}

	deps.fileStorage, err = newFileStorage(ctx, cfg)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("ошибка инициализации хранилища: %w", err)
	}

	// Интерфейс BatchCache остается nil, если Redis не настроен или недоступен.
	var batchCache cache.BatchCache
	if cfg.RedisAddr != "" {
		deps.batchCache, err = cache.NewRedisCache(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			serverLog.Warnf("Redis недоступен, работаем без кэша: %v", err)
		} else {
			batchCache = deps.batchCache
		}
	}

	userRepo := repository.NewPostgresUserRepository(deps.db)
	comparisonRepo := repository.NewPostgresComparisonRepository(deps.db)
	ruleRepo := repository.NewPostgresRuleRepository(deps.db)

	deps.authService = services.NewAuthService(userRepo, services.AuthConfig{
		JWTSecret:       []byte(cfg.JWTSecret),
		ValidatePayload: cfg.ValidatePayload,
	})
	comparisonService := services.NewComparisonService(comparisonRepo, batchCache, services.UUIDGenerator{},
		services.ComparisonConfig{
			ValidatePayload: cfg.ValidatePayload,
			AtomicIngest:    cfg.AtomicIngest,
			PublicBaseURL:   cfg.PublicBaseURL,
		})
	ruleService := services.NewRuleService(ruleRepo, cfg.ValidatePayload)
	fileService := services.NewFileService(deps.fileStorage, services.UUIDGenerator{}, services.FileConfig{
		PublicBaseURL:  cfg.PublicBaseURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	deps.authHandler = handlers.NewAuthHandler(deps.authService)
	deps.comparisonHandler = handlers.NewComparisonHandler(comparisonService, cfg.MaxUploadBytes)
	deps.ruleHandler = handlers.NewRuleHandler(ruleService)
	deps.fileHandler = handlers.NewFileHandler(fileService)

	serverLog.Infof("Зависимости инициализированы (хранилище: %s, кэш: %t, аутентификация: %s)",
		cfg.StorageBackend, batchCache != nil, cfg.AuthMode)
	return deps, nil
}

func newFileStorage(ctx context.Context, cfg *config) (storage.FileStorage, error) {
	if cfg.StorageBackend == storageMinio {
		return storage.NewMinioClient(ctx, storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioUser,
			SecretAccessKey: cfg.MinioPassword,
			UseSSL:          cfg.MinioUseSSL,
			BucketName:      cfg.MinioBucket,
		})
	}
	return storage.NewLocalStorage(cfg.FilesDir)
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(cfg *config, deps *dependencies) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger)
	r.Use(middleware.Recoverer)

	requireAuth := appmiddleware.Authenticator(deps.authService)
	uploadLimit := appmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Get("/ping", handlers.Ping)
	r.Post("/register", deps.authHandler.Register)
	r.Post("/login", deps.authHandler.Login)

	// Данные пакетов: закрыты только в режиме all.
	r.Group(func(r chi.Router) {
		if cfg.AuthMode == authAll {
			r.Use(requireAuth)
		}
		r.With(uploadLimit).Post("/upload-data", deps.comparisonHandler.UploadData)
		r.Get("/get-data", deps.comparisonHandler.GetData)
		r.Post("/rules", deps.ruleHandler.StoreRule)
		r.Get("/rules", deps.ruleHandler.GetRules)
		r.With(uploadLimit).Post("/upload-pdf", deps.fileHandler.UploadPDF)
		r.Get("/files/{name}", deps.fileHandler.ServeFile)
	})

	// Дашборд и выгрузка: закрыты в режимах dashboard и all.
	r.Group(func(r chi.Router) {
		if cfg.AuthMode != authOff {
			r.Use(requireAuth)
		}
		r.Get("/dashboard", deps.comparisonHandler.Dashboard)
		r.Get("/export", deps.comparisonHandler.Export)
	})

	return r
}
