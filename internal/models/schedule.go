package models

import "time"

// DefaultMaxTrainees вместимость занятия по умолчанию.
const DefaultMaxTrainees = 10

// ClassSchedule представляет собой занятие в расписании зала.
// Поля StartTime и EndTime — полные моменты времени, собранные из
// календарной даты и времени начала/окончания.
type ClassSchedule struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Date        time.Time `json:"date"`      // Календарная дата занятия
	StartTime   time.Time `json:"startTime"` // Момент начала
	EndTime     time.Time `json:"endTime"`   // Момент окончания
	MaxTrainees int       `json:"maxTrainees"`
	TrainerID   string    `json:"trainerId"` // Тренер, ведущий занятие
	CreatedBy   string    `json:"createdBy"` // Администратор, создавший занятие
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ScheduleWithSlots занятие вместе с тренером и количеством свободных мест.
type ScheduleWithSlots struct {
	ClassSchedule
	Trainer        UserSummary `json:"trainer"`
	AvailableSlots int         `json:"availableSlots"`
}

// DummyCreateSchedule используется для приёма данных занятия из JSON-запроса.
// Дата и время приходят строками и парсятся вручную.
type DummyCreateSchedule struct {
	Title       string `json:"title" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Date        string `json:"date" validate:"required"`      // Формат 2006-01-02
	StartTime   string `json:"startTime" validate:"required"` // Формат HH:MM
	EndTime     string `json:"endTime" validate:"required"`   // Формат HH:MM
	TrainerID   string `json:"trainerId" validate:"required,uuid"`
	MaxTrainees int    `json:"maxTrainees" validate:"omitempty,gte=1,lte=20"`
}

// DummyUpdateSchedule используется для частичного обновления занятия.
type DummyUpdateSchedule struct {
	Title       string `json:"title" validate:"omitempty,min=3,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Date        string `json:"date" validate:"omitempty"`
	StartTime   string `json:"startTime" validate:"omitempty"`
	EndTime     string `json:"endTime" validate:"omitempty"`
	TrainerID   string `json:"trainerId" validate:"omitempty,uuid"`
	MaxTrainees int    `json:"maxTrainees" validate:"omitempty,gte=1,lte=20"`
}
