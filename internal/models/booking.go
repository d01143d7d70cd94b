package models

import "time"

// BookingStatus статус бронирования.
type BookingStatus string

// Статусы бронирования. CANCELLED — терминальный, обратного перехода нет.
const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking представляет бронирование места на занятии.
// Ссылки на пользователя и занятие хранятся по идентификаторам.
type Booking struct {
	ID         string        `json:"id"`
	TraineeID  string        `json:"traineeId"`
	ScheduleID string        `json:"scheduleId"`
	Status     BookingStatus `json:"status"`
	BookedAt   time.Time     `json:"bookedAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// BookingInfo бронирование с развернутыми данными участника и занятия.
type BookingInfo struct {
	Booking
	Trainee  *UserSummary       `json:"trainee,omitempty"`
	Schedule *ScheduleWithSlots `json:"schedule,omitempty"`
}

// ScheduleRoster занятие тренера вместе со списком записавшихся.
type ScheduleRoster struct {
	ClassSchedule
	Attendees      []BookingInfo `json:"attendees"`
	AvailableSlots int           `json:"availableSlots"`
}

// BookingEvent событие бронирования, публикуемое в очередь уведомлений.
type BookingEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"` // booking.confirmed или booking.cancelled
	BookingID  string    `json:"booking_id"`
	TraineeID  string    `json:"trainee_id"`
	ScheduleID string    `json:"schedule_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DummyCreateBooking используется для приёма данных бронирования из JSON-запроса.
type DummyCreateBooking struct {
	ScheduleID string `json:"scheduleId" validate:"required,uuid"`
}
