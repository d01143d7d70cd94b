// Package models содержит доменные структуры системы бронирования занятий:
// пользователей, расписания и бронирования, а также вспомогательные типы
// для приёма данных из JSON-запросов.
package models

import "time"

// Role роль пользователя в системе.
type Role string

// Допустимые роли.
const (
	RoleAdmin   Role = "ADMIN"
	RoleTrainer Role = "TRAINER"
	RoleTrainee Role = "TRAINEE"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string     `json:"id"`        // Уникальный идентификатор пользователя
	Email        string     `json:"email"`     // Электронная почта (уникальная)
	PasswordHash string     `json:"-"`         // Хэш пароля, наружу не отдается
	FirstName    string     `json:"firstName"` // Имя
	LastName     string     `json:"lastName"`  // Фамилия
	Role         Role       `json:"role"`      // Роль: ADMIN, TRAINER или TRAINEE
	AdminID      *string    `json:"adminId,omitempty"` // Администратор, создавший тренера
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UserSummary краткая карточка пользователя для вложенных ответов.
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Summary возвращает краткую карточку пользователя.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// DummyRegisterUser используется для приёма данных регистрации из
// JSON-запроса. Роль не принимается снаружи: каждая точка регистрации
// назначает ее сама.
type DummyRegisterUser struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
}

// DummyLogin используется для приёма учетных данных из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyUpdateProfile используется для частичного обновления профиля.
type DummyUpdateProfile struct {
	FirstName string `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName  string `json:"lastName" validate:"omitempty,min=2,max=50"`
	Email     string `json:"email" validate:"omitempty,email"`
}
