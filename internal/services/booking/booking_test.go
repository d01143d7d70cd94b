package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	"github.com/magabrotheeeer/gym-class-booking/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetSchedule(ctx context.Context, scheduleID string) (*models.ClassSchedule, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClassSchedule), args.Error(1)
}
func (m *RepoMock) CreateBooking(ctx context.Context, traineeID, scheduleID string) (*models.Booking, error) {
	args := m.Called(ctx, traineeID, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *RepoMock) HasConfirmedBooking(ctx context.Context, scheduleID, traineeID string) (bool, error) {
	args := m.Called(ctx, scheduleID, traineeID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) GetBookingInfo(ctx context.Context, bookingID string) (*models.BookingInfo, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingInfo), args.Error(1)
}
func (m *RepoMock) CancelBooking(ctx context.Context, bookingID string) error {
	return m.Called(ctx, bookingID).Error(0)
}
func (m *RepoMock) ListAllBookings(ctx context.Context) ([]*models.BookingInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingInfo), args.Error(1)
}
func (m *RepoMock) ListBookingsByTrainee(ctx context.Context, traineeID string) ([]*models.BookingInfo, error) {
	args := m.Called(ctx, traineeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingInfo), args.Error(1)
}
func (m *RepoMock) ListConfirmedBySchedule(ctx context.Context, scheduleID string) ([]*models.BookingInfo, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingInfo), args.Error(1)
}
func (m *RepoMock) ListUpcomingByTrainee(ctx context.Context, traineeID string, now time.Time) ([]*models.BookingInfo, error) {
	args := m.Called(ctx, traineeID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingInfo), args.Error(1)
}
func (m *RepoMock) ListHistoryByTrainee(ctx context.Context, traineeID string, now time.Time) ([]*models.BookingInfo, error) {
	args := m.Called(ctx, traineeID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingInfo), args.Error(1)
}
func (m *RepoMock) ListRostersByTrainer(ctx context.Context, trainerID string) ([]*models.ScheduleRoster, error) {
	args := m.Called(ctx, trainerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduleRoster), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const (
	traineeID = "1cf42d2a-578c-4982-a6a3-dc63cb41a94a"
	otherID   = "9a8f4e8e-0f05-4a6a-a8ba-8737bb60e91f"
	schedID   = "84cc40f3-2b38-4c2a-8626-24e9c812c417"
)

func futureSchedule(now time.Time) *models.ClassSchedule {
	return &models.ClassSchedule{
		ID:          schedID,
		StartTime:   now.Add(24 * time.Hour),
		EndTime:     now.Add(26 * time.Hour),
		MaxTrainees: 10,
	}
}

func TestBookingService_Create(t *testing.T) {
	now := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name: "success",
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				r.On("GetSchedule", mock.Anything, schedID).Return(futureSchedule(now), nil).Once()
				r.On("HasConfirmedBooking", mock.Anything, schedID, traineeID).Return(false, nil).Once()
				r.On("CreateBooking", mock.Anything, traineeID, schedID).
					Return(&models.Booking{ID: "b1", TraineeID: traineeID, ScheduleID: schedID}, nil).Once()
				c.On("Invalidate", "schedule:"+schedID).Return(nil).Once()
				p.On("Publish", "booking.confirmed", mock.Anything).Return(nil).Once()
			},
		},
		{
			name: "schedule missing",
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("GetSchedule", mock.Anything, schedID).Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrScheduleNotFound,
		},
		{
			name: "schedule already started",
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				past := futureSchedule(now)
				past.StartTime = now.Add(-time.Hour)
				r.On("GetSchedule", mock.Anything, schedID).Return(past, nil).Once()
			},
			wantErr: ErrScheduleInPast,
		},
		{
			name: "duplicate booking",
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("GetSchedule", mock.Anything, schedID).Return(futureSchedule(now), nil).Once()
				r.On("HasConfirmedBooking", mock.Anything, schedID, traineeID).Return(true, nil).Once()
			},
			wantErr: ErrDuplicateBooking,
		},
		{
			name: "duplicate detected by storage constraint",
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("GetSchedule", mock.Anything, schedID).Return(futureSchedule(now), nil).Once()
				r.On("HasConfirmedBooking", mock.Anything, schedID, traineeID).Return(false, nil).Once()
				r.On("CreateBooking", mock.Anything, traineeID, schedID).
					Return(nil, repository.ErrDuplicate).Once()
			},
			wantErr: ErrDuplicateBooking,
		},
		{
			name: "no available slots",
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("GetSchedule", mock.Anything, schedID).Return(futureSchedule(now), nil).Once()
				r.On("HasConfirmedBooking", mock.Anything, schedID, traineeID).Return(false, nil).Once()
				r.On("CreateBooking", mock.Anything, traineeID, schedID).
					Return(nil, repository.ErrCapacityExceeded).Once()
			},
			wantErr: ErrNoAvailableSlots,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			pub := new(PublisherMock)
			tt.setupMocks(repo, cache, pub)

			svc := NewBookingService(repo, cache, pub, newNoopLogger())
			got, err := svc.Create(context.Background(), schedID, traineeID, now)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "b1", got.ID)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestBookingService_Cancel(t *testing.T) {
	now := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)

	bookingAt := func(start time.Time) *models.BookingInfo {
		return &models.BookingInfo{
			Booking: models.Booking{ID: "b1", TraineeID: traineeID, ScheduleID: schedID,
				Status: models.BookingConfirmed},
			Schedule: &models.ScheduleWithSlots{
				ClassSchedule: models.ClassSchedule{ID: schedID, StartTime: start},
			},
		}
	}

	tests := []struct {
		name       string
		actorID    string
		actorRole  models.Role
		setupMocks func(r *RepoMock, c *CacheMock, p *PublisherMock)
		wantErr    error
	}{
		{
			name:      "owner cancels with time to spare",
			actorID:   traineeID,
			actorRole: models.RoleTrainee,
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				r.On("GetBookingInfo", mock.Anything, "b1").
					Return(bookingAt(now.Add(3*time.Hour)), nil).Once()
				r.On("CancelBooking", mock.Anything, "b1").Return(nil).Once()
				c.On("Invalidate", "schedule:"+schedID).Return(nil).Once()
				p.On("Publish", "booking.cancelled", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:      "admin cancels someone else's booking",
			actorID:   otherID,
			actorRole: models.RoleAdmin,
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				r.On("GetBookingInfo", mock.Anything, "b1").
					Return(bookingAt(now.Add(3*time.Hour)), nil).Once()
				r.On("CancelBooking", mock.Anything, "b1").Return(nil).Once()
				c.On("Invalidate", "schedule:"+schedID).Return(nil).Once()
				p.On("Publish", "booking.cancelled", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:      "another trainee is forbidden",
			actorID:   otherID,
			actorRole: models.RoleTrainee,
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("GetBookingInfo", mock.Anything, "b1").
					Return(bookingAt(now.Add(3*time.Hour)), nil).Once()
			},
			wantErr: ErrAccessDenied,
		},
		{
			name:      "exactly two hours before start is too late",
			actorID:   traineeID,
			actorRole: models.RoleTrainee,
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("GetBookingInfo", mock.Anything, "b1").
					Return(bookingAt(now.Add(2*time.Hour)), nil).Once()
			},
			wantErr: ErrTooLateToCancel,
		},
		{
			name:      "two hours and one second is still allowed",
			actorID:   traineeID,
			actorRole: models.RoleTrainee,
			setupMocks: func(r *RepoMock, c *CacheMock, p *PublisherMock) {
				r.On("GetBookingInfo", mock.Anything, "b1").
					Return(bookingAt(now.Add(2*time.Hour+time.Second)), nil).Once()
				r.On("CancelBooking", mock.Anything, "b1").Return(nil).Once()
				c.On("Invalidate", "schedule:"+schedID).Return(nil).Once()
				p.On("Publish", "booking.cancelled", mock.Anything).Return(nil).Once()
			},
		},
		{
			name:      "booking missing",
			actorID:   traineeID,
			actorRole: models.RoleTrainee,
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				r.On("GetBookingInfo", mock.Anything, "b1").Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrBookingNotFound,
		},
		{
			name:      "second cancellation fails",
			actorID:   traineeID,
			actorRole: models.RoleTrainee,
			setupMocks: func(r *RepoMock, _ *CacheMock, _ *PublisherMock) {
				cancelled := bookingAt(now.Add(3 * time.Hour))
				cancelled.Status = models.BookingCancelled
				r.On("GetBookingInfo", mock.Anything, "b1").Return(cancelled, nil).Once()
				r.On("CancelBooking", mock.Anything, "b1").Return(repository.ErrNotFound).Once()
			},
			wantErr: ErrBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			pub := new(PublisherMock)
			tt.setupMocks(repo, cache, pub)

			svc := NewBookingService(repo, cache, pub, newNoopLogger())
			err := svc.Cancel(context.Background(), "b1", tt.actorID, tt.actorRole, now)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestBookingService_GetByID(t *testing.T) {
	info := &models.BookingInfo{
		Booking: models.Booking{ID: "b1", TraineeID: traineeID, ScheduleID: schedID},
		Schedule: &models.ScheduleWithSlots{
			ClassSchedule: models.ClassSchedule{ID: schedID, TrainerID: otherID},
		},
	}

	tests := []struct {
		name      string
		actorID   string
		actorRole models.Role
		wantErr   error
	}{
		{name: "admin sees any booking", actorID: "someone", actorRole: models.RoleAdmin},
		{name: "owner sees own booking", actorID: traineeID, actorRole: models.RoleTrainee},
		{name: "owning trainer sees schedule booking", actorID: otherID, actorRole: models.RoleTrainer},
		{name: "other trainee denied", actorID: "stranger", actorRole: models.RoleTrainee, wantErr: ErrAccessDenied},
		{name: "other trainer denied", actorID: "stranger", actorRole: models.RoleTrainer, wantErr: ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetBookingInfo", mock.Anything, "b1").Return(info, nil).Once()

			svc := NewBookingService(repo, new(CacheMock), nil, newNoopLogger())
			got, err := svc.GetByID(context.Background(), "b1", tt.actorID, tt.actorRole)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, info, got)
			}
		})
	}
}

func TestBookingService_ListBySchedule(t *testing.T) {
	t.Run("trainer may list only own schedule", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetSchedule", mock.Anything, schedID).
			Return(&models.ClassSchedule{ID: schedID, TrainerID: otherID}, nil).Once()

		svc := NewBookingService(repo, new(CacheMock), nil, newNoopLogger())
		_, err := svc.ListBySchedule(context.Background(), schedID, "stranger", models.RoleTrainer)
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("admin skips ownership check", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListConfirmedBySchedule", mock.Anything, schedID).
			Return([]*models.BookingInfo{}, nil).Once()

		svc := NewBookingService(repo, new(CacheMock), nil, newNoopLogger())
		_, err := svc.ListBySchedule(context.Background(), schedID, "any", models.RoleAdmin)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
