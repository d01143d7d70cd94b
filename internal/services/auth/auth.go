// Package services содержит логику бизнес-уровня для аутентификации пользователей.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/gym-class-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/password"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	"github.com/magabrotheeeer/gym-class-booking/internal/storage/repository"
)

// Ошибки бизнес-уровня аутентификации.
var (
	// ErrInvalidCredentials возвращается при неверной паре email/пароль.
	// Одна и та же ошибка для неизвестного email и неверного пароля.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken возвращается для просроченного, поддельного токена
	// или токена удаленного пользователя.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// UserRepository описывает контракт для поиска пользователей в базе данных.
type UserRepository interface {
	// GetUserByEmail возвращает пользователя по email вместе с хэшем пароля.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID возвращает пользователя по идентификатору.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// AuthService отвечает за вход и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// VerifyToken проверяет JWT и заново читает пользователя из базы.
// Токен удаленного пользователя недействителен, даже если подпись
// и срок жизни в порядке.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
