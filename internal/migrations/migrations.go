// Package migrations применяет SQL-миграции схемы при старте сервера.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var files embed.FS

const sourceDir = "sql"

// Source возвращает источник миграций из встроенных файлов.
func Source() (source.Driver, error) {
	src, err := iofs.New(files, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения встроенных миграций: %w", err)
	}
	return src, nil
}

// Up применяет все непримененные миграции.
// Использует отдельное соединение из пула, сам пул не закрывается.
func Up(ctx context.Context, db *sql.DB) error {
	log := logger.Component("Migrations")

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения соединения для миграций: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("ошибка инициализации драйвера миграций: %w", err)
	}

	src, err := Source()
	if err != nil {
		_ = driver.Close()
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = src.Close()
		_ = driver.Close()
		return fmt.Errorf("ошибка создания мигратора: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warnf("Ошибка закрытия мигратора: source=%v, db=%v", srcErr, dbErr)
		}
	}()

	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Схема БД актуальна, миграции не требуются")
			return nil
		}
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	version, _, _ := m.Version()
	log.Infof("Миграции применены, версия схемы: %d", version)
	return nil
}
