package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TedXpro/Comparisons-Website/internal/logger"
	"github.com/TedXpro/Comparisons-Website/internal/repository"
	"github.com/TedXpro/Comparisons-Website/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService определяет интерфейс для сервиса аутентификации.
type AuthService interface {
	Register(ctx context.Context, username, password string) error
	// Authenticate проверяет пароль и возвращает имя пользователя.
	Authenticate(ctx context.Context, username, password string) (string, error)
	// Login проверяет пароль и возвращает JWT токен.
	Login(ctx context.Context, username, password string) (string, error)
	// ParseToken проверяет подпись и срок токена и возвращает имя пользователя.
	ParseToken(token string) (string, error)
}

// DefaultTokenTTL - время жизни токена по умолчанию.
const DefaultTokenTTL = 24 * time.Hour

const tokenIssuer = "comparisons-server"

// AuthConfig содержит параметры сервиса аутентификации.
type AuthConfig struct {
	JWTSecret       []byte
	TokenTTL        time.Duration
	ValidatePayload bool
}

//nolint:gochecknoglobals // Логгер пакета.
var authLog = logger.Component("AuthService")

// dummyHash сравнивается с паролем, когда пользователь не найден,
// чтобы время ответа не выдавало существование имени.
//
//nolint:gochecknoglobals // Вычисляется один раз при старте.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("comparisons-dummy-password"), bcrypt.DefaultCost)

var _ AuthService = (*authService)(nil)

type authService struct {
	userRepo repository.UserRepository
	cfg      AuthConfig
}

// NewAuthService создает новый экземпляр сервиса аутентификации.
func NewAuthService(userRepo repository.UserRepository, cfg AuthConfig) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	return &authService{userRepo: userRepo, cfg: cfg}
}

// Register регистрирует нового пользователя.
func (s *authService) Register(ctx context.Context, username, password string) error {
	if s.cfg.ValidatePayload {
		if err := validateStruct(models.RegisterRequest{Username: username, Password: password}); err != nil {
			return err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		authLog.Errorf("Ошибка хеширования пароля для '%s': %v", username, err)
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}

	if _, err = s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			authLog.Warnf("Попытка регистрации с занятым именем: %s", username)
			return ErrUsernameTaken
		}
		authLog.Errorf("Непредвиденная ошибка репозитория при регистрации '%s': %v", username, err)
		return ErrStorage
	}

	authLog.Infof("Пользователь '%s' успешно зарегистрирован", username)
	return nil
}

// Authenticate сверяет пароль с хешем из БД.
// Несуществующий пользователь и неверный пароль дают одну и ту же ошибку.
func (s *authService) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			authLog.Warnf("Попытка входа несуществующего пользователя: %s", username)
			return "", ErrInvalidCredentials
		}
		authLog.Errorf("Ошибка репозитория при поиске '%s': %v", username, err)
		return "", ErrStorage
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		authLog.Warnf("Неверный пароль для пользователя: %s", username)
		return "", ErrInvalidCredentials
	}

	return user.Username, nil
}

// Login аутентифицирует пользователя и возвращает JWT токен.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	name, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}

	token, err := s.generateJWT(name)
	if err != nil {
		authLog.Errorf("Ошибка генерации JWT для '%s': %v", name, err)
		return "", fmt.Errorf("внутренняя ошибка сервера при генерации токена: %w", err)
	}

	authLog.Infof("Пользователь '%s' успешно аутентифицирован", name)
	return token, nil
}

// ParseToken реализует AuthService.
func (s *authService) ParseToken(tokenString string) (string, error) {
	if len(s.cfg.JWTSecret) == 0 {
		return "", ErrInvalidCredentials
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.cfg.JWTSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		authLog.Debugf("Невалидный токен: %v", err)
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}

// generateJWT создает и подписывает JWT токен для пользователя.
func (s *authService) generateJWT(username string) (string, error) {
	if len(s.cfg.JWTSecret) == 0 {
		return "", ErrJWTDisabled
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи JWT: %w", err)
	}
	return signed, nil
}
