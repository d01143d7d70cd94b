// Package services содержит бизнес-логику бронирований: проверки
// вместимости, дубликатов и окна отмены.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	"github.com/magabrotheeeer/gym-class-booking/internal/storage/repository"
)

// Ошибки бизнес-уровня бронирований.
var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrScheduleInPast   = errors.New("cannot book a class that has already started")
	ErrDuplicateBooking = errors.New("trainee already has a booking for this schedule")
	ErrNoAvailableSlots = errors.New("no available slots for this schedule")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAccessDenied     = errors.New("access to this booking is denied")
	ErrTooLateToCancel  = errors.New("booking can only be cancelled more than 2 hours before class start")
)

// Отмена возможна строго больше чем за два часа до начала занятия.
const cancelWindow = 2 * time.Hour

// BookingRepository определяет методы для работы с бронированиями в хранилище.
type BookingRepository interface {
	// GetSchedule возвращает занятие по ID.
	GetSchedule(ctx context.Context, scheduleID string) (*models.ClassSchedule, error)
	// CreateBooking атомарно проверяет вместимость и создает бронирование.
	CreateBooking(ctx context.Context, traineeID, scheduleID string) (*models.Booking, error)
	// HasConfirmedBooking проверяет наличие подтвержденного бронирования.
	HasConfirmedBooking(ctx context.Context, scheduleID, traineeID string) (bool, error)
	// GetBookingInfo возвращает бронирование с участником и занятием.
	GetBookingInfo(ctx context.Context, bookingID string) (*models.BookingInfo, error)
	// CancelBooking отменяет подтвержденное бронирование.
	CancelBooking(ctx context.Context, bookingID string) error
	// ListAllBookings возвращает все бронирования.
	ListAllBookings(ctx context.Context) ([]*models.BookingInfo, error)
	// ListBookingsByTrainee возвращает бронирования участника.
	ListBookingsByTrainee(ctx context.Context, traineeID string) ([]*models.BookingInfo, error)
	// ListConfirmedBySchedule возвращает подтвержденные бронирования занятия.
	ListConfirmedBySchedule(ctx context.Context, scheduleID string) ([]*models.BookingInfo, error)
	// ListUpcomingByTrainee возвращает будущие подтвержденные бронирования.
	ListUpcomingByTrainee(ctx context.Context, traineeID string, now time.Time) ([]*models.BookingInfo, error)
	// ListHistoryByTrainee возвращает историю бронирований участника.
	ListHistoryByTrainee(ctx context.Context, traineeID string, now time.Time) ([]*models.BookingInfo, error)
	// ListRostersByTrainer возвращает занятия тренера со списками участников.
	ListRostersByTrainer(ctx context.Context, trainerID string) ([]*models.ScheduleRoster, error)
}

// EventPublisher публикует события бронирований в очередь сообщений.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// Cache описывает инвалидацию кэшированных занятий. Бронирования меняют
// число свободных мест, поэтому кэш занятия сбрасывается при каждой мутации.
type Cache interface {
	Invalidate(key string) error
}

// BookingService реализует бизнес-логику бронирований.
type BookingService struct {
	repo   BookingRepository
	cache  Cache
	events EventPublisher
	log    *slog.Logger
}

// NewBookingService создает новый экземпляр BookingService.
func NewBookingService(repo BookingRepository, cache Cache, events EventPublisher, log *slog.Logger) *BookingService {
	return &BookingService{
		repo:   repo,
		cache:  cache,
		events: events,
		log:    log,
	}
}

// Create бронирует место на занятии для участника. Занятие должно
// существовать и начинаться в будущем, у участника не должно быть
// подтвержденного бронирования этого занятия. Финальную проверку
// вместимости выполняет хранилище атомарно вместе со вставкой.
func (s *BookingService) Create(ctx context.Context, scheduleID, traineeID string, now time.Time) (*models.Booking, error) {
	sched, err := s.repo.GetSchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if !sched.StartTime.After(now) {
		return nil, ErrScheduleInPast
	}

	exists, err := s.repo.HasConfirmedBooking(ctx, scheduleID, traineeID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return nil, ErrDuplicateBooking
	}

	booking, err := s.repo.CreateBooking(ctx, traineeID, scheduleID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateBooking
		case errors.Is(err, repository.ErrCapacityExceeded):
			return nil, ErrNoAvailableSlots
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	s.log.Info("created new booking",
		slog.String("id", booking.ID),
		slog.String("schedule_id", scheduleID))

	s.invalidateSchedule(scheduleID)
	s.publishEvent("booking.confirmed", booking)
	return booking, nil
}

// Cancel отменяет бронирование. Это разрешено владельцу или
// администратору и только если до начала занятия больше двух часов.
// Повторная отмена завершается ErrBookingNotFound.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID string, actorRole models.Role, now time.Time) error {
	info, err := s.repo.GetBookingInfo(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	if actorRole != models.RoleAdmin && info.TraineeID != actorID {
		return ErrAccessDenied
	}
	// Граница включительно: ровно за два часа отменить уже нельзя
	if !info.Schedule.StartTime.After(now.Add(cancelWindow)) {
		return ErrTooLateToCancel
	}

	if err := s.repo.CancelBooking(ctx, bookingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	s.log.Info("cancelled booking", slog.String("id", bookingID))

	s.invalidateSchedule(info.ScheduleID)
	s.publishEvent("booking.cancelled", &info.Booking)
	return nil
}

func (s *BookingService) invalidateSchedule(scheduleID string) {
	key := fmt.Sprintf("schedule:%s", scheduleID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate schedule cache",
			slog.String("key", key), slog.Any("err", err))
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.events == nil {
		return
	}
	event := models.BookingEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		BookingID:  booking.ID,
		TraineeID:  booking.TraineeID,
		ScheduleID: booking.ScheduleID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(eventType, event); err != nil {
		s.log.Warn("failed to publish booking event",
			slog.String("type", eventType), slog.Any("err", err))
	}
}

// GetByID возвращает бронирование. Участник видит только свои
// бронирования, тренер — бронирования своих занятий, администратор — любые.
func (s *BookingService) GetByID(ctx context.Context, bookingID, actorID string, actorRole models.Role) (*models.BookingInfo, error) {
	info, err := s.repo.GetBookingInfo(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	switch actorRole {
	case models.RoleAdmin:
	case models.RoleTrainer:
		if info.Schedule.TrainerID != actorID {
			return nil, ErrAccessDenied
		}
	default:
		if info.TraineeID != actorID {
			return nil, ErrAccessDenied
		}
	}
	return info, nil
}

// ListAll возвращает все бронирования.
func (s *BookingService) ListAll(ctx context.Context) ([]*models.BookingInfo, error) {
	return s.repo.ListAllBookings(ctx)
}

// ListMy возвращает бронирования участника.
func (s *BookingService) ListMy(ctx context.Context, traineeID string) ([]*models.BookingInfo, error) {
	return s.repo.ListBookingsByTrainee(ctx, traineeID)
}

// ListUpcoming возвращает будущие подтвержденные бронирования участника.
func (s *BookingService) ListUpcoming(ctx context.Context, traineeID string, now time.Time) ([]*models.BookingInfo, error) {
	return s.repo.ListUpcomingByTrainee(ctx, traineeID, now)
}

// ListHistory возвращает прошедшие и отмененные бронирования участника.
func (s *BookingService) ListHistory(ctx context.Context, traineeID string, now time.Time) ([]*models.BookingInfo, error) {
	return s.repo.ListHistoryByTrainee(ctx, traineeID, now)
}

// ListBySchedule возвращает подтвержденные бронирования занятия.
// Тренер может смотреть только свои занятия.
func (s *BookingService) ListBySchedule(ctx context.Context, scheduleID, actorID string, actorRole models.Role) ([]*models.BookingInfo, error) {
	if actorRole == models.RoleTrainer {
		sched, err := s.repo.GetSchedule(ctx, scheduleID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrScheduleNotFound
			}
			return nil, err
		}
		if sched.TrainerID != actorID {
			return nil, ErrAccessDenied
		}
	}
	return s.repo.ListConfirmedBySchedule(ctx, scheduleID)
}

// ListByTrainee возвращает бронирования указанного участника.
func (s *BookingService) ListByTrainee(ctx context.Context, traineeID string) ([]*models.BookingInfo, error) {
	return s.repo.ListBookingsByTrainee(ctx, traineeID)
}

// Rosters возвращает занятия тренера со списками записавшихся участников.
func (s *BookingService) Rosters(ctx context.Context, trainerID string) ([]*models.ScheduleRoster, error) {
	return s.repo.ListRostersByTrainer(ctx, trainerID)
}
