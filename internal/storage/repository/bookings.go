package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-class-booking/internal/models"
)

// Общий SELECT бронирования с участником, занятием и тренером занятия.
const bookingInfoQuery = `
	SELECT b.id, b.trainee_id, b.schedule_id, b.status, b.booked_at, b.updated_at,
	       u.id, u.first_name, u.last_name, u.email,
	       s.id, s.title, s.description, s.date, s.start_time, s.end_time,
	       s.max_trainees, s.trainer_id, s.created_by, s.created_at, s.updated_at,
	       t.id, t.first_name, t.last_name, t.email,
	       (SELECT COUNT(*) FROM bookings cb
	        WHERE cb.schedule_id = s.id AND cb.status = 'CONFIRMED') AS confirmed
	FROM bookings b
	JOIN users u ON u.id = b.trainee_id
	JOIN class_schedules s ON s.id = b.schedule_id
	JOIN users t ON t.id = s.trainer_id`

// CreateBooking создает подтвержденное бронирование. Проверка вместимости
// и вставка выполняются в одной транзакции: строка занятия блокируется
// FOR UPDATE, поэтому два одновременных бронирования последнего места
// не могут пройти проверку оба.
func (s *Storage) CreateBooking(ctx context.Context, traineeID, scheduleID string) (*models.Booking, error) {
	const op = "storage.CreateBooking"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var maxTrainees int
	err = tx.QueryRowContext(ctx,
		`SELECT max_trainees FROM class_schedules WHERE id = $1 FOR UPDATE`,
		scheduleID).Scan(&maxTrainees)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var confirmed int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE schedule_id = $1 AND status = 'CONFIRMED'`,
		scheduleID).Scan(&confirmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if confirmed >= maxTrainees {
		return nil, fmt.Errorf("%s: %w", op, ErrCapacityExceeded)
	}

	booking := &models.Booking{
		TraineeID:  traineeID,
		ScheduleID: scheduleID,
		Status:     models.BookingConfirmed,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO bookings (trainee_id, schedule_id, status)
		 VALUES ($1, $2, 'CONFIRMED')
		 RETURNING id, booked_at, updated_at`,
		traineeID, scheduleID).Scan(&booking.ID, &booking.BookedAt, &booking.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return booking, nil
}

// CountConfirmedBookings подсчитывает подтвержденные бронирования занятия.
func (s *Storage) CountConfirmedBookings(ctx context.Context, scheduleID string) (int, error) {
	const op = "storage.CountConfirmedBookings"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE schedule_id = $1 AND status = 'CONFIRMED'`
	if err := s.DB.QueryRowContext(ctx, query, scheduleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// HasConfirmedBooking проверяет, есть ли у участника подтвержденное
// бронирование этого занятия.
func (s *Storage) HasConfirmedBooking(ctx context.Context, scheduleID, traineeID string) (bool, error) {
	const op = "storage.HasConfirmedBooking"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (
			      SELECT 1 FROM bookings
			      WHERE schedule_id = $1 AND trainee_id = $2 AND status = 'CONFIRMED')`
	if err := s.DB.QueryRowContext(ctx, query, scheduleID, traineeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// GetBookingInfo возвращает бронирование с развернутыми данными
// участника и занятия.
func (s *Storage) GetBookingInfo(ctx context.Context, bookingID string) (*models.BookingInfo, error) {
	const op = "storage.GetBookingInfo"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, bookingInfoQuery+` WHERE b.id = $1`, bookingID)
	info, err := scanBookingInfo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return info, nil
}

// ListAllBookings возвращает все бронирования в обратном хронологическом порядке.
func (s *Storage) ListAllBookings(ctx context.Context) ([]*models.BookingInfo, error) {
	const op = "storage.ListAllBookings"
	return s.listBookingInfos(ctx, op, bookingInfoQuery+` ORDER BY b.booked_at DESC`)
}

// ListBookingsByTrainee возвращает бронирования участника.
func (s *Storage) ListBookingsByTrainee(ctx context.Context, traineeID string) ([]*models.BookingInfo, error) {
	const op = "storage.ListBookingsByTrainee"
	return s.listBookingInfos(ctx, op,
		bookingInfoQuery+` WHERE b.trainee_id = $1 ORDER BY b.booked_at DESC`, traineeID)
}

// ListConfirmedBySchedule возвращает подтвержденные бронирования занятия
// в порядке записи.
func (s *Storage) ListConfirmedBySchedule(ctx context.Context, scheduleID string) ([]*models.BookingInfo, error) {
	const op = "storage.ListConfirmedBySchedule"
	return s.listBookingInfos(ctx, op,
		bookingInfoQuery+` WHERE b.schedule_id = $1 AND b.status = 'CONFIRMED'
		 ORDER BY b.booked_at`, scheduleID)
}

// ListUpcomingByTrainee возвращает подтвержденные бронирования участника
// на будущие занятия, отсортированные по времени начала.
func (s *Storage) ListUpcomingByTrainee(ctx context.Context, traineeID string, now time.Time) ([]*models.BookingInfo, error) {
	const op = "storage.ListUpcomingByTrainee"
	return s.listBookingInfos(ctx, op,
		bookingInfoQuery+` WHERE b.trainee_id = $1 AND b.status = 'CONFIRMED'
		   AND s.start_time > $2
		 ORDER BY s.start_time`, traineeID, now)
}

// ListHistoryByTrainee возвращает историю участника: отмененные бронирования
// и подтвержденные на уже завершившиеся занятия.
func (s *Storage) ListHistoryByTrainee(ctx context.Context, traineeID string, now time.Time) ([]*models.BookingInfo, error) {
	const op = "storage.ListHistoryByTrainee"
	return s.listBookingInfos(ctx, op,
		bookingInfoQuery+` WHERE b.trainee_id = $1
		   AND (b.status = 'CANCELLED' OR (b.status = 'CONFIRMED' AND s.end_time < $2))
		 ORDER BY b.booked_at DESC`, traineeID, now)
}

func (s *Storage) listBookingInfos(ctx context.Context, op, query string, args ...any) ([]*models.BookingInfo, error) {
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

	var result []*models.BookingInfo
	for rows.Next() {
		info, err := scanBookingInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, info)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanBookingInfo(row rowScanner) (*models.BookingInfo, error) {
	info := &models.BookingInfo{
		Trainee:  &models.UserSummary{},
		Schedule: &models.ScheduleWithSlots{},
	}
	var description sql.NullString
	var confirmed int
	if err := row.Scan(
		&info.ID, &info.TraineeID, &info.ScheduleID, &info.Status, &info.BookedAt, &info.UpdatedAt,
		&info.Trainee.ID, &info.Trainee.FirstName, &info.Trainee.LastName, &info.Trainee.Email,
		&info.Schedule.ID, &info.Schedule.Title, &description, &info.Schedule.Date,
		&info.Schedule.StartTime, &info.Schedule.EndTime, &info.Schedule.MaxTrainees,
		&info.Schedule.TrainerID, &info.Schedule.CreatedBy,
		&info.Schedule.CreatedAt, &info.Schedule.UpdatedAt,
		&info.Schedule.Trainer.ID, &info.Schedule.Trainer.FirstName,
		&info.Schedule.Trainer.LastName, &info.Schedule.Trainer.Email,
		&confirmed); err != nil {
		return nil, err
	}
	if description.Valid {
		info.Schedule.Description = &description.String
	}
	info.Schedule.AvailableSlots = info.Schedule.MaxTrainees - confirmed
	return info, nil
}

// CancelBooking переводит подтвержденное бронирование в статус CANCELLED.
// Обновление охраняется статусом: уже отмененное бронирование не находится.
func (s *Storage) CancelBooking(ctx context.Context, bookingID string) error {
	const op = "storage.CancelBooking"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE bookings
			  SET status = 'CANCELLED', updated_at = now()
			  WHERE id = $1 AND status = 'CONFIRMED'`
	result, err := s.DB.ExecContext(ctx, query, bookingID)
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

// ListRostersByTrainer возвращает занятия тренера вместе со списками
// записавшихся участников.
func (s *Storage) ListRostersByTrainer(ctx context.Context, trainerID string) ([]*models.ScheduleRoster, error) {
	const op = "storage.ListRostersByTrainer"

	schedules, err := s.ListSchedulesByTrainerWithSlots(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	attendees, err := s.listBookingInfos(ctx, op,
		bookingInfoQuery+` WHERE s.trainer_id = $1 AND b.status = 'CONFIRMED'
		 ORDER BY b.booked_at`, trainerID)
	if err != nil {
		return nil, err
	}

	byScheduleID := make(map[string][]models.BookingInfo)
	for _, a := range attendees {
		// В списке участников занятие не дублируем
		entry := *a
		entry.Schedule = nil
		byScheduleID[a.ScheduleID] = append(byScheduleID[a.ScheduleID], entry)
	}

	result := make([]*models.ScheduleRoster, 0, len(schedules))
	for _, sched := range schedules {
		roster := &models.ScheduleRoster{
			ClassSchedule:  sched.ClassSchedule,
			Attendees:      byScheduleID[sched.ID],
			AvailableSlots: sched.AvailableSlots,
		}
		if roster.Attendees == nil {
			roster.Attendees = []models.BookingInfo{}
		}
		result = append(result, roster)
	}
	return result, nil
}
