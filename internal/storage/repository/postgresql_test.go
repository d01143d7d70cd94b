package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-class-booking/internal/models"
)

func TestCreateAndGetUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	created, err := storage.CreateUser(ctx, models.User{
		Email:        "trainee@example.com",
		PasswordHash: "hashedpassword",
		FirstName:    "Ivan",
		LastName:     "Petrov",
		Role:         models.RoleTrainee,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := storage.GetUserByEmail(ctx, "trainee@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hashedpassword", byEmail.PasswordHash)
	assert.Equal(t, models.RoleTrainee, byEmail.Role)
	assert.Nil(t, byEmail.AdminID)

	byID, err := storage.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ivan", byID.FirstName)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	user := models.User{
		Email:        "same@example.com",
		PasswordHash: "hash",
		FirstName:    "First",
		LastName:     "User",
		Role:         models.RoleTrainee,
	}
	_, err := storage.CreateUser(ctx, user)
	require.NoError(t, err)

	_, err = storage.CreateUser(ctx, user)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestGetUserByID_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := storage.GetUserByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListTrainersByAdmin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	adminID := factory.CreateUser(t, "admin@example.com", "ADMIN")
	otherAdminID := factory.CreateUser(t, "admin2@example.com", "ADMIN")
	factory.CreateTrainer(t, "trainer1@example.com", adminID)
	factory.CreateTrainer(t, "trainer2@example.com", adminID)
	factory.CreateTrainer(t, "trainer3@example.com", otherAdminID)

	mine, err := storage.ListTrainersByAdmin(ctx, adminID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, trainer := range mine {
		require.NotNil(t, trainer.AdminID)
		assert.Equal(t, adminID, *trainer.AdminID)
	}

	all, err := storage.ListUsersByRole(ctx, models.RoleTrainer)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	count, err := storage.CountUsersByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpdateUserProfile_PartialFields(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "profile@example.com", "TRAINEE")

	updated, err := storage.UpdateUserProfile(ctx, userID, "Novoe", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Novoe", updated.FirstName)
	// Пустые поля остаются прежними
	assert.Equal(t, "User", updated.LastName)
	assert.Equal(t, "profile@example.com", updated.Email)
}

func TestUpdateUserProfile_DuplicateEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	factory.CreateUser(t, "taken@example.com", "TRAINEE")
	userID := factory.CreateUser(t, "mine@example.com", "TRAINEE")

	_, err := storage.UpdateUserProfile(ctx, userID, "", "", "taken@example.com")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestDeleteUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "delete-me@example.com", "TRAINEE")

	require.NoError(t, storage.DeleteUser(ctx, userID))
	_, err := storage.GetUserByID(ctx, userID)
	require.ErrorIs(t, err, ErrNotFound)

	err = storage.DeleteUser(ctx, userID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	adminID := factory.CreateUser(t, "admin@example.com", "ADMIN")
	trainerID := factory.CreateTrainer(t, "trainer@example.com", adminID)

	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	start := date.Add(10 * time.Hour)
	description := "Силовая тренировка"
	created, err := storage.CreateSchedule(ctx, models.ClassSchedule{
		Title:       "Strength",
		Description: &description,
		Date:        date,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		MaxTrainees: 10,
		TrainerID:   trainerID,
		CreatedBy:   adminID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := storage.GetSchedule(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Strength", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, description, *got.Description)
	assert.True(t, got.StartTime.Equal(start))

	withSlots, err := storage.GetScheduleWithSlots(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, withSlots.AvailableSlots)
	assert.Equal(t, trainerID, withSlots.Trainer.ID)

	got.Title = "Strength Pro"
	got.MaxTrainees = 15
	updated, err := storage.UpdateSchedule(ctx, *got)
	require.NoError(t, err)
	assert.Equal(t, "Strength Pro", updated.Title)
	assert.Equal(t, 15, updated.MaxTrainees)

	require.NoError(t, storage.DeleteSchedule(ctx, created.ID))
	_, err = storage.GetSchedule(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCountSchedulesOnDate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	adminID := factory.CreateUser(t, "admin@example.com", "ADMIN")
	trainerID := factory.CreateTrainer(t, "trainer@example.com", adminID)

	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	for hour := 8; hour < 14; hour += 2 {
		start := day.Add(time.Duration(hour) * time.Hour)
		factory.CreateSchedule(t, trainerID, adminID, start, start.Add(2*time.Hour), 10)
	}
	nextDay := day.AddDate(0, 0, 1)
	factory.CreateSchedule(t, trainerID, adminID, nextDay.Add(10*time.Hour), nextDay.Add(12*time.Hour), 10)

	count, err := storage.CountSchedulesOnDate(ctx, day, day.Add(24*time.Hour-time.Nanosecond))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	sameDay, err := storage.ListTrainerSchedulesOnDate(ctx, trainerID, day, day.Add(24*time.Hour-time.Nanosecond))
	require.NoError(t, err)
	assert.Len(t, sameDay, 3)
}
