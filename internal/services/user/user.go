// Package services содержит логику бизнес-уровня для управления пользователями.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/gym-class-booking/internal/lib/password"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	"github.com/magabrotheeeer/gym-class-booking/internal/storage/repository"
)

// Ошибки бизнес-уровня управления пользователями.
var (
	ErrDuplicateEmail = errors.New("email is already taken")
	ErrUserNotFound   = errors.New("user not found")
	ErrAdminExists    = errors.New("admin account already exists")
	ErrSelfDeletion   = errors.New("admin cannot delete their own account")
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его с заполненным ID.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUserByID возвращает пользователя по ID.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	// ListUsersByRole возвращает всех пользователей с указанной ролью.
	ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	// ListTrainersByAdmin возвращает тренеров, созданных указанным администратором.
	ListTrainersByAdmin(ctx context.Context, adminID string) ([]*models.User, error)
	// CountUsersByRole подсчитывает пользователей с указанной ролью.
	CountUsersByRole(ctx context.Context, role models.Role) (int, error)
	// UpdateUserProfile частично обновляет профиль пользователя.
	UpdateUserProfile(ctx context.Context, userID, firstName, lastName, email string) (*models.User, error)
	// DeleteUser удаляет пользователя по ID.
	DeleteUser(ctx context.Context, userID string) error
}

// UserService реализует регистрацию и управление учетными записями.
type UserService struct {
	repo     UserRepository
	hashCost int
	log      *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, hashCost int, log *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		hashCost: hashCost,
		log:      log,
	}
}

// RegisterTrainee регистрирует нового участника. Роль всегда TRAINEE,
// независимо от того, что пришло в запросе.
func (s *UserService) RegisterTrainee(ctx context.Context, req models.DummyRegisterUser) (*models.User, error) {
	return s.register(ctx, req, models.RoleTrainee, nil)
}

// RegisterTrainer регистрирует тренера от имени администратора.
// У тренера сохраняется ссылка на создавшего его администратора.
func (s *UserService) RegisterTrainer(ctx context.Context, req models.DummyRegisterUser, adminID string) (*models.User, error) {
	return s.register(ctx, req, models.RoleTrainer, &adminID)
}

// RegisterAdmin создает первую учетную запись администратора.
// Повторный вызов после появления администратора отклоняется.
func (s *UserService) RegisterAdmin(ctx context.Context, req models.DummyRegisterUser) (*models.User, error) {
	count, err := s.repo.CountUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil, ErrAdminExists
	}
	return s.register(ctx, req, models.RoleAdmin, nil)
}

func (s *UserService) register(ctx context.Context, req models.DummyRegisterUser, role models.Role, adminID *string) (*models.User, error) {
	hashed, err := password.GetHash(req.Password, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		AdminID:      adminID,
	}
	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	s.log.Info("registered new user",
		slog.String("id", created.ID),
		slog.String("role", string(created.Role)))
	return created, nil
}

// GetProfile возвращает профиль пользователя по ID.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile частично обновляет профиль: пустые поля запроса не трогаются.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.DummyUpdateProfile) (*models.User, error) {
	user, err := s.repo.UpdateUserProfile(ctx, userID, req.FirstName, req.LastName, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// Delete удаляет учетную запись. Администратор не может удалить самого себя.
func (s *UserService) Delete(ctx context.Context, targetID, actorID string) error {
	if targetID == actorID {
		return ErrSelfDeletion
	}
	if err := s.repo.DeleteUser(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.log.Info("deleted user", slog.String("id", targetID))
	return nil
}

// ListTrainers возвращает всех тренеров.
func (s *UserService) ListTrainers(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsersByRole(ctx, models.RoleTrainer)
}

// ListMyTrainers возвращает тренеров, созданных указанным администратором.
func (s *UserService) ListMyTrainers(ctx context.Context, adminID string) ([]*models.User, error) {
	return s.repo.ListTrainersByAdmin(ctx, adminID)
}
