// Package services содержит бизнес-логику управления расписанием занятий:
// проверки длительности, дневного лимита и пересечений у тренера.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-class-booking/internal/lib/timeutil"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	"github.com/magabrotheeeer/gym-class-booking/internal/storage/repository"
)

// Ошибки бизнес-уровня управления расписанием.
var (
	ErrInvalidTrainer      = errors.New("trainer not found or user is not a trainer")
	ErrInvalidDateTime     = errors.New("invalid date or time format")
	ErrInvalidDuration     = errors.New("class duration must be exactly 2 hours")
	ErrDailyCapExceeded    = errors.New("daily schedule limit reached")
	ErrTrainerConflict     = errors.New("trainer already has a class at this time")
	ErrScheduleNotFound    = errors.New("schedule not found")
	ErrScheduleHasBookings = errors.New("schedule has confirmed bookings")
)

const (
	// Максимальное количество занятий в один календарный день.
	maxSchedulesPerDay = 5
	// Обязательная длительность занятия в часах.
	classDurationHours = 2
)

// ScheduleRepository определяет методы для работы с расписанием в хранилище.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, sched models.ClassSchedule) (*models.ClassSchedule, error)
	GetSchedule(ctx context.Context, scheduleID string) (*models.ClassSchedule, error)
	GetScheduleWithSlots(ctx context.Context, scheduleID string) (*models.ScheduleWithSlots, error)
	ListSchedulesWithSlots(ctx context.Context) ([]*models.ScheduleWithSlots, error)
	ListSchedulesByTrainerWithSlots(ctx context.Context, trainerID string) ([]*models.ScheduleWithSlots, error)
	CountSchedulesOnDate(ctx context.Context, dayStart, dayEnd time.Time) (int, error)
	ListTrainerSchedulesOnDate(ctx context.Context, trainerID string, dayStart, dayEnd time.Time) ([]*models.ClassSchedule, error)
	UpdateSchedule(ctx context.Context, sched models.ClassSchedule) (*models.ClassSchedule, error)
	DeleteSchedule(ctx context.Context, scheduleID string) error
	CountConfirmedBookings(ctx context.Context, scheduleID string) (int, error)
}

// UserReader определяет доступ к пользователям, нужный для проверки тренера.
type UserReader interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// ScheduleService реализует бизнес-логику расписания, включая кеширование.
type ScheduleService struct {
	repo  ScheduleRepository
	users UserReader
	cache Cache
	log   *slog.Logger
}

// NewScheduleService создает новый экземпляр ScheduleService.
func NewScheduleService(repo ScheduleRepository, users UserReader, cache Cache, log *slog.Logger) *ScheduleService {
	return &ScheduleService{
		repo:  repo,
		users: users,
		cache: cache,
		log:   log,
	}
}

// Create создает занятие после всех проверок: тренер существует и имеет
// роль TRAINER, длительность ровно два часа, дневной лимит не исчерпан,
// у тренера нет пересекающегося занятия в этот день. Все проверки идут
// до единственной записи в хранилище.
func (s *ScheduleService) Create(ctx context.Context, req models.DummyCreateSchedule, creatorID string) (*models.ClassSchedule, error) {
	trainer, err := s.users.GetUserByID(ctx, req.TrainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidTrainer
		}
		return nil, fmt.Errorf("lookup trainer: %w", err)
	}
	if trainer.Role != models.RoleTrainer {
		return nil, ErrInvalidTrainer
	}

	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	start, err := timeutil.CombineDateTime(req.Date, req.StartTime)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	end, err := timeutil.CombineDateTime(req.Date, req.EndTime)
	if err != nil {
		return nil, ErrInvalidDateTime
	}

	if timeutil.DurationHours(start, end) != classDurationHours || !end.After(start) {
		return nil, ErrInvalidDuration
	}

	dayStart, dayEnd := timeutil.StartOfDay(start), timeutil.EndOfDay(start)
	count, err := s.repo.CountSchedulesOnDate(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("count schedules on date: %w", err)
	}
	if count >= maxSchedulesPerDay {
		return nil, ErrDailyCapExceeded
	}

	sameDay, err := s.repo.ListTrainerSchedulesOnDate(ctx, req.TrainerID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list trainer schedules: %w", err)
	}
	for _, existing := range sameDay {
		if timeutil.Overlaps(start, end, existing.StartTime, existing.EndTime) {
			return nil, ErrTrainerConflict
		}
	}

	maxTrainees := req.MaxTrainees
	if maxTrainees == 0 {
		maxTrainees = models.DefaultMaxTrainees
	}
	sched := models.ClassSchedule{
		Title:       req.Title,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		MaxTrainees: maxTrainees,
		TrainerID:   req.TrainerID,
		CreatedBy:   creatorID,
	}
	if req.Description != "" {
		sched.Description = &req.Description
	}

	created, err := s.repo.CreateSchedule(ctx, sched)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new schedule",
		slog.String("id", created.ID),
		slog.String("trainer_id", created.TrainerID))
	// Кэш заполняется при первом чтении: GetByID кладет туда занятие
	// вместе с тренером и свободными местами, а не голую запись.
	return created, nil
}

// List возвращает все занятия со свободными местами.
func (s *ScheduleService) List(ctx context.Context) ([]*models.ScheduleWithSlots, error) {
	return s.repo.ListSchedulesWithSlots(ctx)
}

// ListAvailable возвращает занятия, на которые ещё можно записаться:
// начало строго в будущем и есть свободные места.
func (s *ScheduleService) ListAvailable(ctx context.Context, now time.Time) ([]*models.ScheduleWithSlots, error) {
	all, err := s.repo.ListSchedulesWithSlots(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]*models.ScheduleWithSlots, 0, len(all))
	for _, sched := range all {
		if sched.StartTime.After(now) && sched.AvailableSlots > 0 {
			available = append(available, sched)
		}
	}
	return available, nil
}

// ListByTrainer возвращает занятия указанного тренера.
func (s *ScheduleService) ListByTrainer(ctx context.Context, trainerID string) ([]*models.ScheduleWithSlots, error) {
	return s.repo.ListSchedulesByTrainerWithSlots(ctx, trainerID)
}

// GetByID возвращает занятие по ID, используя кеш или репозиторий.
func (s *ScheduleService) GetByID(ctx context.Context, scheduleID string) (*models.ScheduleWithSlots, error) {
	var result *models.ScheduleWithSlots
	cacheKey := fmt.Sprintf("schedule:%s", scheduleID)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return result, nil
	}
	result, err = s.repo.GetScheduleWithSlots(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// Update частично обновляет занятие. Занятие с подтвержденными
// бронированиями менять нельзя. При изменении даты или времени
// заново проверяются длительность и пересечения у тренера.
func (s *ScheduleService) Update(ctx context.Context, scheduleID string, req models.DummyUpdateSchedule) (*models.ClassSchedule, error) {
	existing, err := s.repo.GetSchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	confirmed, err := s.repo.CountConfirmedBookings(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if confirmed > 0 {
		return nil, ErrScheduleHasBookings
	}

	merged, timeChanged, err := s.mergePatch(ctx, *existing, req)
	if err != nil {
		return nil, err
	}

	if timeChanged {
		if timeutil.DurationHours(merged.StartTime, merged.EndTime) != classDurationHours ||
			!merged.EndTime.After(merged.StartTime) {
			return nil, ErrInvalidDuration
		}
		dayStart, dayEnd := timeutil.StartOfDay(merged.StartTime), timeutil.EndOfDay(merged.StartTime)
		sameDay, err := s.repo.ListTrainerSchedulesOnDate(ctx, merged.TrainerID, dayStart, dayEnd)
		if err != nil {
			return nil, fmt.Errorf("list trainer schedules: %w", err)
		}
		for _, other := range sameDay {
			if other.ID == scheduleID {
				continue
			}
			if timeutil.Overlaps(merged.StartTime, merged.EndTime, other.StartTime, other.EndTime) {
				return nil, ErrTrainerConflict
			}
		}
	}

	updated, err := s.repo.UpdateSchedule(ctx, merged)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	s.log.Info("updated schedule", slog.String("id", scheduleID))

	cacheKey := fmt.Sprintf("schedule:%s", scheduleID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return updated, nil
}

func (s *ScheduleService) mergePatch(ctx context.Context, sched models.ClassSchedule, req models.DummyUpdateSchedule) (models.ClassSchedule, bool, error) {
	if req.Title != "" {
		sched.Title = req.Title
	}
	if req.Description != "" {
		sched.Description = &req.Description
	}
	if req.MaxTrainees != 0 {
		sched.MaxTrainees = req.MaxTrainees
	}
	if req.TrainerID != "" && req.TrainerID != sched.TrainerID {
		trainer, err := s.users.GetUserByID(ctx, req.TrainerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return sched, false, ErrInvalidTrainer
			}
			return sched, false, fmt.Errorf("lookup trainer: %w", err)
		}
		if trainer.Role != models.RoleTrainer {
			return sched, false, ErrInvalidTrainer
		}
		sched.TrainerID = req.TrainerID
	}

	timeChanged := req.Date != "" || req.StartTime != "" || req.EndTime != ""
	if !timeChanged {
		// Смена тренера тоже требует перепроверки пересечений
		return sched, req.TrainerID != "", nil
	}

	dateStr := sched.Date.Format("2006-01-02")
	if req.Date != "" {
		date, err := timeutil.ParseDate(req.Date)
		if err != nil {
			return sched, false, ErrInvalidDateTime
		}
		sched.Date = date
		dateStr = req.Date
	}
	startStr := sched.StartTime.Format("15:04")
	if req.StartTime != "" {
		startStr = req.StartTime
	}
	endStr := sched.EndTime.Format("15:04")
	if req.EndTime != "" {
		endStr = req.EndTime
	}

	start, err := timeutil.CombineDateTime(dateStr, startStr)
	if err != nil {
		return sched, false, ErrInvalidDateTime
	}
	end, err := timeutil.CombineDateTime(dateStr, endStr)
	if err != nil {
		return sched, false, ErrInvalidDateTime
	}
	sched.StartTime = start
	sched.EndTime = end
	return sched, true, nil
}

// Delete удаляет занятие. Занятие с подтвержденными бронированиями
// удалять нельзя.
func (s *ScheduleService) Delete(ctx context.Context, scheduleID string) error {
	confirmed, err := s.repo.CountConfirmedBookings(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("count bookings: %w", err)
	}
	if confirmed > 0 {
		return ErrScheduleHasBookings
	}

	cacheKey := fmt.Sprintf("schedule:%s", scheduleID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}

	if err := s.repo.DeleteSchedule(ctx, scheduleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrScheduleNotFound
		}
		return err
	}
	s.log.Info("deleted schedule", slog.String("id", scheduleID))
	return nil
}
