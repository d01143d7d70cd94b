package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-class-booking/internal/cache"
	"github.com/magabrotheeeer/gym-class-booking/internal/config"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	"github.com/magabrotheeeer/gym-class-booking/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateSchedule(ctx context.Context, sched models.ClassSchedule) (*models.ClassSchedule, error) {
	args := m.Called(ctx, sched)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClassSchedule), args.Error(1)
}
func (m *RepoMock) GetSchedule(ctx context.Context, scheduleID string) (*models.ClassSchedule, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClassSchedule), args.Error(1)
}
func (m *RepoMock) GetScheduleWithSlots(ctx context.Context, scheduleID string) (*models.ScheduleWithSlots, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduleWithSlots), args.Error(1)
}
func (m *RepoMock) ListSchedulesWithSlots(ctx context.Context) ([]*models.ScheduleWithSlots, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduleWithSlots), args.Error(1)
}
func (m *RepoMock) ListSchedulesByTrainerWithSlots(ctx context.Context, trainerID string) ([]*models.ScheduleWithSlots, error) {
	args := m.Called(ctx, trainerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduleWithSlots), args.Error(1)
}
func (m *RepoMock) CountSchedulesOnDate(ctx context.Context, dayStart, dayEnd time.Time) (int, error) {
	args := m.Called(ctx, dayStart, dayEnd)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListTrainerSchedulesOnDate(ctx context.Context, trainerID string, dayStart, dayEnd time.Time) ([]*models.ClassSchedule, error) {
	args := m.Called(ctx, trainerID, dayStart, dayEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ClassSchedule), args.Error(1)
}
func (m *RepoMock) UpdateSchedule(ctx context.Context, sched models.ClassSchedule) (*models.ClassSchedule, error) {
	args := m.Called(ctx, sched)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClassSchedule), args.Error(1)
}
func (m *RepoMock) DeleteSchedule(ctx context.Context, scheduleID string) error {
	return m.Called(ctx, scheduleID).Error(0)
}
func (m *RepoMock) CountConfirmedBookings(ctx context.Context, scheduleID string) (int, error) {
	args := m.Called(ctx, scheduleID)
	return args.Int(0), args.Error(1)
}

type UsersMock struct{ mock.Mock }

func (m *UsersMock) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const (
	trainerID = "6f2c9f38-4b6e-44c0-9ac2-913f1cfcf7b1"
	adminID   = "1cf42d2a-578c-4982-a6a3-dc63cb41a94a"
)

func trainerUser() *models.User {
	return &models.User{ID: trainerID, Role: models.RoleTrainer}
}

func mustCombine(t *testing.T, date, tod string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	h, err := time.Parse("15:04", tod)
	require.NoError(t, err)
	return time.Date(d.Year(), d.Month(), d.Day(), h.Hour(), h.Minute(), 0, 0, time.UTC)
}

func TestScheduleService_Create(t *testing.T) {
	baseReq := models.DummyCreateSchedule{
		Title:     "Morning Yoga",
		Date:      "2025-03-10",
		StartTime: "10:00",
		EndTime:   "12:00",
		TrainerID: trainerID,
	}

	tests := []struct {
		name       string
		req        models.DummyCreateSchedule
		setupMocks func(r *RepoMock, u *UsersMock, c *CacheMock)
		wantErr    error
	}{
		{
			name: "success with default capacity",
			req:  baseReq,
			setupMocks: func(r *RepoMock, u *UsersMock, _ *CacheMock) {
				u.On("GetUserByID", mock.Anything, trainerID).Return(trainerUser(), nil).Once()
				r.On("CountSchedulesOnDate", mock.Anything, mock.Anything, mock.Anything).Return(0, nil).Once()
				r.On("ListTrainerSchedulesOnDate", mock.Anything, trainerID, mock.Anything, mock.Anything).
					Return([]*models.ClassSchedule{}, nil).Once()
				r.On("CreateSchedule", mock.Anything, mock.MatchedBy(func(s models.ClassSchedule) bool {
					return s.MaxTrainees == models.DefaultMaxTrainees &&
						s.StartTime.Hour() == 10 && s.EndTime.Hour() == 12
				})).Return(&models.ClassSchedule{ID: "s1", MaxTrainees: 10}, nil).Once()
			},
		},
		{
			name: "trainer not found",
			req:  baseReq,
			setupMocks: func(_ *RepoMock, u *UsersMock, _ *CacheMock) {
				u.On("GetUserByID", mock.Anything, trainerID).Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrInvalidTrainer,
		},
		{
			name: "user is not a trainer",
			req:  baseReq,
			setupMocks: func(_ *RepoMock, u *UsersMock, _ *CacheMock) {
				u.On("GetUserByID", mock.Anything, trainerID).
					Return(&models.User{ID: trainerID, Role: models.RoleTrainee}, nil).Once()
			},
			wantErr: ErrInvalidTrainer,
		},
		{
			name: "duration is not two hours",
			req: models.DummyCreateSchedule{
				Title: "Short class", Date: "2025-03-10",
				StartTime: "10:00", EndTime: "11:00", TrainerID: trainerID,
			},
			setupMocks: func(_ *RepoMock, u *UsersMock, _ *CacheMock) {
				u.On("GetUserByID", mock.Anything, trainerID).Return(trainerUser(), nil).Once()
			},
			wantErr: ErrInvalidDuration,
		},
		{
			name: "end before start",
			req: models.DummyCreateSchedule{
				Title: "Backwards", Date: "2025-03-10",
				StartTime: "12:00", EndTime: "10:00", TrainerID: trainerID,
			},
			setupMocks: func(_ *RepoMock, u *UsersMock, _ *CacheMock) {
				u.On("GetUserByID", mock.Anything, trainerID).Return(trainerUser(), nil).Once()
			},
			wantErr: ErrInvalidDuration,
		},
		{
			name: "invalid time format",
			req: models.DummyCreateSchedule{
				Title: "Bad time", Date: "2025-03-10",
				StartTime: "ten", EndTime: "12:00", TrainerID: trainerID,
			},
			setupMocks: func(_ *RepoMock, u *UsersMock, _ *CacheMock) {
				u.On("GetUserByID", mock.Anything, trainerID).Return(trainerUser(), nil).Once()
			},
			wantErr: ErrInvalidDateTime,
		},
		{
			name: "daily cap reached",
			req:  baseReq,
			setupMocks: func(r *RepoMock, u *UsersMock, _ *CacheMock) {
				u.On("GetUserByID", mock.Anything, trainerID).Return(trainerUser(), nil).Once()
				r.On("CountSchedulesOnDate", mock.Anything, mock.Anything, mock.Anything).Return(5, nil).Once()
			},
			wantErr: ErrDailyCapExceeded,
		},
		{
			name: "trainer overlap",
			req: models.DummyCreateSchedule{
				Title: "Evening Yoga", Date: "2025-03-10",
				StartTime: "11:00", EndTime: "13:00", TrainerID: trainerID,
			},
			setupMocks: func(r *RepoMock, u *UsersMock, _ *CacheMock) {
				u.On("GetUserByID", mock.Anything, trainerID).Return(trainerUser(), nil).Once()
				r.On("CountSchedulesOnDate", mock.Anything, mock.Anything, mock.Anything).Return(1, nil).Once()
				r.On("ListTrainerSchedulesOnDate", mock.Anything, trainerID, mock.Anything, mock.Anything).
					Return([]*models.ClassSchedule{{
						ID:        "existing",
						StartTime: mustCombine(t, "2025-03-10", "10:00"),
						EndTime:   mustCombine(t, "2025-03-10", "12:00"),
					}}, nil).Once()
			},
			wantErr: ErrTrainerConflict,
		},
		{
			name: "touching intervals do not conflict",
			req: models.DummyCreateSchedule{
				Title: "Evening Yoga", Date: "2025-03-10",
				StartTime: "12:00", EndTime: "14:00", TrainerID: trainerID,
			},
			setupMocks: func(r *RepoMock, u *UsersMock, _ *CacheMock) {
				u.On("GetUserByID", mock.Anything, trainerID).Return(trainerUser(), nil).Once()
				r.On("CountSchedulesOnDate", mock.Anything, mock.Anything, mock.Anything).Return(1, nil).Once()
				r.On("ListTrainerSchedulesOnDate", mock.Anything, trainerID, mock.Anything, mock.Anything).
					Return([]*models.ClassSchedule{{
						ID:        "existing",
						StartTime: mustCombine(t, "2025-03-10", "10:00"),
						EndTime:   mustCombine(t, "2025-03-10", "12:00"),
					}}, nil).Once()
				r.On("CreateSchedule", mock.Anything, mock.Anything).
					Return(&models.ClassSchedule{ID: "s2"}, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			users := new(UsersMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, users, cache)

			svc := NewScheduleService(repo, users, cache, newNoopLogger())
			got, err := svc.Create(context.Background(), tt.req, adminID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, got)
			}
			repo.AssertExpectations(t)
			users.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestScheduleService_Update(t *testing.T) {
	existing := &models.ClassSchedule{
		ID:          "s1",
		Title:       "Morning Yoga",
		Date:        mustCombine(t, "2025-03-10", "00:00"),
		StartTime:   mustCombine(t, "2025-03-10", "10:00"),
		EndTime:     mustCombine(t, "2025-03-10", "12:00"),
		MaxTrainees: 10,
		TrainerID:   trainerID,
	}

	t.Run("blocked when schedule has bookings", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetSchedule", mock.Anything, "s1").Return(existing, nil).Once()
		repo.On("CountConfirmedBookings", mock.Anything, "s1").Return(3, nil).Once()

		svc := NewScheduleService(repo, new(UsersMock), new(CacheMock), newNoopLogger())
		_, err := svc.Update(context.Background(), "s1", models.DummyUpdateSchedule{Title: "New title"})
		require.ErrorIs(t, err, ErrScheduleHasBookings)
		repo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetSchedule", mock.Anything, "missing").Return(nil, repository.ErrNotFound).Once()

		svc := NewScheduleService(repo, new(UsersMock), new(CacheMock), newNoopLogger())
		_, err := svc.Update(context.Background(), "missing", models.DummyUpdateSchedule{})
		require.ErrorIs(t, err, ErrScheduleNotFound)
	})

	t.Run("title only update skips conflict checks", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("GetSchedule", mock.Anything, "s1").Return(existing, nil).Once()
		repo.On("CountConfirmedBookings", mock.Anything, "s1").Return(0, nil).Once()
		repo.On("UpdateSchedule", mock.Anything, mock.MatchedBy(func(s models.ClassSchedule) bool {
			return s.Title == "Pilates" && s.StartTime.Equal(existing.StartTime)
		})).Return(&models.ClassSchedule{ID: "s1", Title: "Pilates"}, nil).Once()
		cache.On("Invalidate", "schedule:s1").Return(nil).Once()

		svc := NewScheduleService(repo, new(UsersMock), cache, newNoopLogger())
		updated, err := svc.Update(context.Background(), "s1", models.DummyUpdateSchedule{Title: "Pilates"})
		require.NoError(t, err)
		assert.Equal(t, "Pilates", updated.Title)
		repo.AssertExpectations(t)
	})

	t.Run("time change rechecks overlap", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetSchedule", mock.Anything, "s1").Return(existing, nil).Once()
		repo.On("CountConfirmedBookings", mock.Anything, "s1").Return(0, nil).Once()
		repo.On("ListTrainerSchedulesOnDate", mock.Anything, trainerID, mock.Anything, mock.Anything).
			Return([]*models.ClassSchedule{
				{ID: "s1", StartTime: existing.StartTime, EndTime: existing.EndTime},
				{
					ID:        "other",
					StartTime: mustCombine(t, "2025-03-10", "14:00"),
					EndTime:   mustCombine(t, "2025-03-10", "16:00"),
				},
			}, nil).Once()

		svc := NewScheduleService(repo, new(UsersMock), new(CacheMock), newNoopLogger())
		_, err := svc.Update(context.Background(), "s1", models.DummyUpdateSchedule{
			StartTime: "15:00", EndTime: "17:00",
		})
		require.ErrorIs(t, err, ErrTrainerConflict)
		repo.AssertExpectations(t)
	})
}

func TestScheduleService_Delete(t *testing.T) {
	t.Run("blocked when schedule has bookings", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CountConfirmedBookings", mock.Anything, "s1").Return(1, nil).Once()

		svc := NewScheduleService(repo, new(UsersMock), new(CacheMock), newNoopLogger())
		err := svc.Delete(context.Background(), "s1")
		require.ErrorIs(t, err, ErrScheduleHasBookings)
	})

	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("CountConfirmedBookings", mock.Anything, "s1").Return(0, nil).Once()
		cache.On("Invalidate", "schedule:s1").Return(nil).Once()
		repo.On("DeleteSchedule", mock.Anything, "s1").Return(nil).Once()

		svc := NewScheduleService(repo, new(UsersMock), cache, newNoopLogger())
		err := svc.Delete(context.Background(), "s1")
		require.NoError(t, err)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		repo.On("CountConfirmedBookings", mock.Anything, "missing").Return(0, nil).Once()
		cache.On("Invalidate", "schedule:missing").Return(nil).Once()
		repo.On("DeleteSchedule", mock.Anything, "missing").Return(repository.ErrNotFound).Once()

		svc := NewScheduleService(repo, new(UsersMock), cache, newNoopLogger())
		err := svc.Delete(context.Background(), "missing")
		require.ErrorIs(t, err, ErrScheduleNotFound)
	})
}

func TestScheduleService_GetByID(t *testing.T) {
	t.Run("cache hit skips repository", func(t *testing.T) {
		cache := new(CacheMock)
		cache.On("Get", "schedule:s1", mock.Anything).Return(true, nil).Once()

		svc := NewScheduleService(new(RepoMock), new(UsersMock), cache, newNoopLogger())
		_, err := svc.GetByID(context.Background(), "s1")
		require.NoError(t, err)
		cache.AssertExpectations(t)
	})

	t.Run("cache miss falls back to repository", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		expected := &models.ScheduleWithSlots{
			ClassSchedule:  models.ClassSchedule{ID: "s1", MaxTrainees: 10},
			AvailableSlots: 7,
		}
		cache.On("Get", "schedule:s1", mock.Anything).Return(false, nil).Once()
		repo.On("GetScheduleWithSlots", mock.Anything, "s1").Return(expected, nil).Once()
		cache.On("Set", "schedule:s1", expected, time.Hour).Return(nil).Once()

		svc := NewScheduleService(repo, new(UsersMock), cache, newNoopLogger())
		got, err := svc.GetByID(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		cache.On("Get", "schedule:missing", mock.Anything).Return(false, nil).Once()
		repo.On("GetScheduleWithSlots", mock.Anything, "missing").Return(nil, repository.ErrNotFound).Once()

		svc := NewScheduleService(repo, new(UsersMock), cache, newNoopLogger())
		_, err := svc.GetByID(context.Background(), "missing")
		require.ErrorIs(t, err, ErrScheduleNotFound)
	})
}

// Проверяет на настоящем Redis, что чтение сразу после создания занятия
// возвращает тренера и свободные места, а не пустую запись из кэша.
func TestScheduleService_GetByIDAfterCreate(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisCache, err := cache.InitServer(context.Background(), config.RedisConnection{
		AddressRedis: mr.Addr(),
	})
	require.NoError(t, err)

	repo := new(RepoMock)
	users := new(UsersMock)
	users.On("GetUserByID", mock.Anything, trainerID).Return(trainerUser(), nil).Once()
	repo.On("CountSchedulesOnDate", mock.Anything, mock.Anything, mock.Anything).Return(0, nil).Once()
	repo.On("ListTrainerSchedulesOnDate", mock.Anything, trainerID, mock.Anything, mock.Anything).
		Return([]*models.ClassSchedule{}, nil).Once()
	repo.On("CreateSchedule", mock.Anything, mock.Anything).
		Return(&models.ClassSchedule{ID: "s1", MaxTrainees: 10, TrainerID: trainerID}, nil).Once()
	repo.On("GetScheduleWithSlots", mock.Anything, "s1").
		Return(&models.ScheduleWithSlots{
			ClassSchedule:  models.ClassSchedule{ID: "s1", MaxTrainees: 10, TrainerID: trainerID},
			Trainer:        models.UserSummary{ID: trainerID, Email: "trainer@example.com"},
			AvailableSlots: 10,
		}, nil).Once()

	svc := NewScheduleService(repo, users, redisCache, newNoopLogger())
	created, err := svc.Create(context.Background(), models.DummyCreateSchedule{
		Title:     "Morning Yoga",
		Date:      "2025-03-10",
		StartTime: "10:00",
		EndTime:   "12:00",
		TrainerID: trainerID,
	}, adminID)
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 10, got.AvailableSlots)
	assert.Equal(t, "trainer@example.com", got.Trainer.Email)

	// Повторное чтение идет из кэша (GetScheduleWithSlots объявлен Once)
	// и сохраняет ту же форму данных.
	again, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, again.AvailableSlots)
	assert.Equal(t, "trainer@example.com", again.Trainer.Email)
	repo.AssertExpectations(t)
}

func TestScheduleService_ListAvailable(t *testing.T) {
	now := mustCombine(t, "2025-03-10", "09:00")
	full := &models.ScheduleWithSlots{
		ClassSchedule:  models.ClassSchedule{ID: "full", StartTime: mustCombine(t, "2025-03-10", "10:00")},
		AvailableSlots: 0,
	}
	past := &models.ScheduleWithSlots{
		ClassSchedule:  models.ClassSchedule{ID: "past", StartTime: mustCombine(t, "2025-03-09", "10:00")},
		AvailableSlots: 5,
	}
	open := &models.ScheduleWithSlots{
		ClassSchedule:  models.ClassSchedule{ID: "open", StartTime: mustCombine(t, "2025-03-10", "10:00")},
		AvailableSlots: 3,
	}

	repo := new(RepoMock)
	repo.On("ListSchedulesWithSlots", mock.Anything).
		Return([]*models.ScheduleWithSlots{full, past, open}, nil).Once()

	svc := NewScheduleService(repo, new(UsersMock), new(CacheMock), newNoopLogger())
	got, err := svc.ListAvailable(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "open", got[0].ID)

	t.Run("repository error", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListSchedulesWithSlots", mock.Anything).Return(nil, errors.New("db down")).Once()

		svc := NewScheduleService(repo, new(UsersMock), new(CacheMock), newNoopLogger())
		_, err := svc.ListAvailable(context.Background(), now)
		require.Error(t, err)
	})
}
