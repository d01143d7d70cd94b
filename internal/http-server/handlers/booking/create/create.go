// Package create реализует HTTP-обработчик бронирования места на занятии.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/mware"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	bookingservice "github.com/magabrotheeeer/gym-class-booking/internal/services/booking"
)

// Handler управляет HTTP-запросами на создание бронирований.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс создания бронирования.
type Service interface {
	Create(ctx context.Context, scheduleID, traineeID string, now time.Time) (*models.Booking, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Забронировать место на занятии
// @Description Создает подтвержденное бронирование при наличии свободных мест.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body models.DummyCreateBooking true "Данные бронирования"
// @Success 201 {object} response.Response "Бронирование создано"
// @Failure 400 {object} response.Response "Ошибка валидации или занятие уже началось"
// @Failure 404 {object} response.Response "Занятие не найдено"
// @Failure 409 {object} response.Response "Дубликат или нет свободных мест"
// @Security BearerAuth
// @Router /bookings [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	traineeID, ok := r.Context().Value(mware.UserUID).(string)
	if !ok || traineeID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	var req models.DummyCreateBooking
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(http.StatusBadRequest, "Invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	booking, err := h.service.Create(r.Context(), req.ScheduleID, traineeID, time.Now().UTC())
	if err != nil {
		code, msg := mapCreateError(err)
		if code == http.StatusInternalServerError {
			log.Error("failed to create booking", sl.Err(err))
		} else {
			log.Warn("booking rejected", sl.Err(err))
		}
		w.WriteHeader(code)
		render.JSON(w, r, response.Error(code, msg))
		return
	}

	log.Info("created booking",
		slog.String("id", booking.ID),
		slog.String("schedule_id", req.ScheduleID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(http.StatusCreated, "Booking created successfully", booking))
}

func mapCreateError(err error) (int, string) {
	switch {
	case errors.Is(err, bookingservice.ErrScheduleNotFound):
		return http.StatusNotFound, "Schedule not found"
	case errors.Is(err, bookingservice.ErrScheduleInPast):
		return http.StatusBadRequest, "Cannot book a class that has already started"
	case errors.Is(err, bookingservice.ErrDuplicateBooking):
		return http.StatusConflict, "You already have a booking for this class"
	case errors.Is(err, bookingservice.ErrNoAvailableSlots):
		return http.StatusConflict, "No available slots for this class"
	}
	return http.StatusInternalServerError, "Internal server error"
}
