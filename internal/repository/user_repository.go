package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Ошибки учетных записей.
var (
	ErrUserNotFound  = errors.New("пользователь не найден")
	ErrUsernameTaken = errors.New("имя пользователя уже занято")
)

const (
	insertUserQuery = `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`
	selectUserQuery = `SELECT id, username, password_hash, created_at, updated_at FROM users WHERE username=$1`

	// Уникальный индекс на users.username.
	usersUsernameConstraint = "users_username_key"
)

//nolint:gochecknoglobals // Логгер пакета.
var userRepoLog = logger.Component("UserRepo")

// UserRepository хранит учетные записи дилеров, загружающих данные сравнений.
type UserRepository interface {
	// CreateUser сохраняет запись с уже посчитанным хешем. Занятое имя дает ErrUsernameTaken,
	// существующая запись при этом не меняется.
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type postgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository создает репозиторий пользователей для PostgreSQL.
func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

// CreateUser реализует UserRepository.
func (r *postgresUserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, insertUserQuery, user.Username, user.PasswordHash).Scan(&id)
	switch {
	case err == nil:
		userRepoLog.Infof("Создан пользователь '%s' (ID %d)", user.Username, id)
		return id, nil
	case isUsernameConflict(err):
		userRepoLog.Warnf("Имя '%s' уже занято", user.Username)
		return 0, ErrUsernameTaken
	default:
		userRepoLog.Errorf("Не удалось создать пользователя '%s': %v", user.Username, err)
		return 0, fmt.Errorf("ошибка выполнения запроса на создание пользователя: %w", err)
	}
}

// isUsernameConflict распознает нарушение уникальности имени.
// Пустое имя ограничения считается конфликтом имени, других уникальных индексов в users нет.
func isUsernameConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return false
	}
	return pqErr.Constraint == "" || pqErr.Constraint == usersUsernameConstraint
}

// GetUserByUsername реализует UserRepository.
func (r *postgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := new(models.User)
	if err := r.db.GetContext(ctx, user, selectUserQuery, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		userRepoLog.Errorf("Ошибка чтения пользователя '%s': %v", username, err)
		return nil, fmt.Errorf("ошибка выполнения запроса на получение пользователя: %w", err)
	}
	return user, nil
}
