package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-class-booking/internal/models"
)

// Общий SELECT занятия с тренером и количеством подтвержденных бронирований.
const scheduleWithSlotsQuery = `
	SELECT s.id, s.title, s.description, s.date, s.start_time, s.end_time,
	       s.max_trainees, s.trainer_id, s.created_by, s.created_at, s.updated_at,
	       t.id, t.first_name, t.last_name, t.email,
	       (SELECT COUNT(*) FROM bookings b
	        WHERE b.schedule_id = s.id AND b.status = 'CONFIRMED') AS confirmed
	FROM class_schedules s
	JOIN users t ON t.id = s.trainer_id`

// CreateSchedule вставляет новое занятие и возвращает его с заполненными
// идентификатором и временными метками.
func (s *Storage) CreateSchedule(ctx context.Context, sched models.ClassSchedule) (*models.ClassSchedule, error) {
	const op = "storage.CreateSchedule"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO class_schedules (title, description, date, start_time, end_time,
			      max_trainees, trainer_id, created_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id, created_at, updated_at`
	if err := s.DB.QueryRowContext(ctx, query,
		sched.Title, sched.Description, sched.Date, sched.StartTime, sched.EndTime,
		sched.MaxTrainees, sched.TrainerID, sched.CreatedBy).
		Scan(&sched.ID, &sched.CreatedAt, &sched.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sched, nil
}

// GetSchedule возвращает занятие по идентификатору без дополнительных данных.
func (s *Storage) GetSchedule(ctx context.Context, scheduleID string) (*models.ClassSchedule, error) {
	const op = "storage.GetSchedule"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, date, start_time, end_time,
			      max_trainees, trainer_id, created_by, created_at, updated_at
			  FROM class_schedules
			  WHERE id = $1`
	sched := &models.ClassSchedule{}
	var description sql.NullString
	if err := s.DB.QueryRowContext(ctx, query, scheduleID).Scan(
		&sched.ID, &sched.Title, &description, &sched.Date, &sched.StartTime, &sched.EndTime,
		&sched.MaxTrainees, &sched.TrainerID, &sched.CreatedBy,
		&sched.CreatedAt, &sched.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if description.Valid {
		sched.Description = &description.String
	}
	return sched, nil
}

// GetScheduleWithSlots возвращает занятие вместе с тренером
// и количеством свободных мест.
func (s *Storage) GetScheduleWithSlots(ctx context.Context, scheduleID string) (*models.ScheduleWithSlots, error) {
	const op = "storage.GetScheduleWithSlots"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, scheduleWithSlotsQuery+` WHERE s.id = $1`, scheduleID)
	sched, err := scanScheduleWithSlots(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sched, nil
}

// ListSchedulesWithSlots возвращает все занятия, отсортированные по дате и времени начала.
func (s *Storage) ListSchedulesWithSlots(ctx context.Context) ([]*models.ScheduleWithSlots, error) {
	const op = "storage.ListSchedulesWithSlots"
	return s.listSchedulesWithSlots(ctx, op,
		scheduleWithSlotsQuery+` ORDER BY s.date, s.start_time`)
}

// ListSchedulesByTrainerWithSlots возвращает занятия заданного тренера.
func (s *Storage) ListSchedulesByTrainerWithSlots(ctx context.Context, trainerID string) ([]*models.ScheduleWithSlots, error) {
	const op = "storage.ListSchedulesByTrainerWithSlots"
	return s.listSchedulesWithSlots(ctx, op,
		scheduleWithSlotsQuery+` WHERE s.trainer_id = $1 ORDER BY s.date, s.start_time`, trainerID)
}

func (s *Storage) listSchedulesWithSlots(ctx context.Context, op, query string, args ...any) ([]*models.ScheduleWithSlots, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ScheduleWithSlots
	for rows.Next() {
		sched, err := scanScheduleWithSlots(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sched)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// rowScanner покрывает *sql.Row и *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduleWithSlots(row rowScanner) (*models.ScheduleWithSlots, error) {
	sched := &models.ScheduleWithSlots{}
	var description sql.NullString
	var confirmed int
	if err := row.Scan(
		&sched.ID, &sched.Title, &description, &sched.Date, &sched.StartTime, &sched.EndTime,
		&sched.MaxTrainees, &sched.TrainerID, &sched.CreatedBy, &sched.CreatedAt, &sched.UpdatedAt,
		&sched.Trainer.ID, &sched.Trainer.FirstName, &sched.Trainer.LastName, &sched.Trainer.Email,
		&confirmed); err != nil {
		return nil, err
	}
	if description.Valid {
		sched.Description = &description.String
	}
	sched.AvailableSlots = sched.MaxTrainees - confirmed
	return sched, nil
}

// CountSchedulesOnDate подсчитывает занятия, дата которых попадает
// в заданный календарный день.
func (s *Storage) CountSchedulesOnDate(ctx context.Context, dayStart, dayEnd time.Time) (int, error) {
	const op = "storage.CountSchedulesOnDate"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM class_schedules WHERE date >= $1 AND date <= $2`
	if err := s.DB.QueryRowContext(ctx, query, dayStart, dayEnd).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListTrainerSchedulesOnDate возвращает занятия тренера в заданный календарный день.
func (s *Storage) ListTrainerSchedulesOnDate(ctx context.Context, trainerID string, dayStart, dayEnd time.Time) ([]*models.ClassSchedule, error) {
	const op = "storage.ListTrainerSchedulesOnDate"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, date, start_time, end_time,
			      max_trainees, trainer_id, created_by, created_at, updated_at
			  FROM class_schedules
			  WHERE trainer_id = $1 AND date >= $2 AND date <= $3`
	rows, err := s.DB.QueryContext(ctx, query, trainerID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ClassSchedule
	for rows.Next() {
		var sched models.ClassSchedule
		var description sql.NullString
		if err = rows.Scan(
			&sched.ID, &sched.Title, &description, &sched.Date, &sched.StartTime, &sched.EndTime,
			&sched.MaxTrainees, &sched.TrainerID, &sched.CreatedBy,
			&sched.CreatedAt, &sched.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if description.Valid {
			sched.Description = &description.String
		}
		result = append(result, &sched)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSchedule сохраняет обновленное занятие целиком.
func (s *Storage) UpdateSchedule(ctx context.Context, sched models.ClassSchedule) (*models.ClassSchedule, error) {
	const op = "storage.UpdateSchedule"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE class_schedules
			  SET title = $2, description = $3, date = $4, start_time = $5, end_time = $6,
			      max_trainees = $7, trainer_id = $8, updated_at = now()
			  WHERE id = $1
			  RETURNING created_at, updated_at`
	if err := s.DB.QueryRowContext(ctx, query,
		sched.ID, sched.Title, sched.Description, sched.Date, sched.StartTime, sched.EndTime,
		sched.MaxTrainees, sched.TrainerID).
		Scan(&sched.CreatedAt, &sched.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sched, nil
}

// DeleteSchedule удаляет занятие по идентификатору.
func (s *Storage) DeleteSchedule(ctx context.Context, scheduleID string) error {
	const op = "storage.DeleteSchedule"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM class_schedules WHERE id = $1`, scheduleID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
