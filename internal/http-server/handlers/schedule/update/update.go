// Package update реализует HTTP-обработчик частичного обновления занятия.
// Занятие с подтвержденными бронированиями менять нельзя.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	scheduleservice "github.com/magabrotheeeer/gym-class-booking/internal/services/schedule"
)

// Handler управляет HTTP-запросами на обновление занятий.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс обновления занятия.
type Service interface {
	Update(ctx context.Context, scheduleID string, req models.DummyUpdateSchedule) (*models.ClassSchedule, error)
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
// @Summary Обновить занятие
// @Description Частично обновляет занятие без подтвержденных бронирований.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "ID занятия"
// @Param request body models.DummyUpdateSchedule true "Изменяемые поля"
// @Success 200 {object} response.Response "Занятие обновлено"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 404 {object} response.Response "Занятие не найдено"
// @Failure 409 {object} response.Response "Конфликт расписания или есть бронирования"
// @Security BearerAuth
// @Router /schedules/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUpdateSchedule
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

	scheduleID := chi.URLParam(r, "id")
	sched, err := h.service.Update(r.Context(), scheduleID, req)
	if err != nil {
		code, msg := mapUpdateError(err)
		if code == http.StatusInternalServerError {
			log.Error("failed to update schedule", sl.Err(err))
		} else {
			log.Warn("schedule update rejected", sl.Err(err))
		}
		w.WriteHeader(code)
		render.JSON(w, r, response.Error(code, msg))
		return
	}

	log.Info("updated schedule", slog.String("id", scheduleID))
	render.JSON(w, r, response.OK(http.StatusOK, "Schedule updated successfully", sched))
}

func mapUpdateError(err error) (int, string) {
	switch {
	case errors.Is(err, scheduleservice.ErrScheduleNotFound):
		return http.StatusNotFound, "Schedule not found"
	case errors.Is(err, scheduleservice.ErrScheduleHasBookings):
		return http.StatusConflict, "Schedule has confirmed bookings and cannot be modified"
	case errors.Is(err, scheduleservice.ErrInvalidTrainer):
		return http.StatusBadRequest, "Trainer not found or user is not a trainer"
	case errors.Is(err, scheduleservice.ErrInvalidDateTime):
		return http.StatusBadRequest, "Invalid date or time format"
	case errors.Is(err, scheduleservice.ErrInvalidDuration):
		return http.StatusBadRequest, "Class duration must be exactly 2 hours"
	case errors.Is(err, scheduleservice.ErrTrainerConflict):
		return http.StatusConflict, "Trainer already has a class at this time"
	}
	return http.StatusInternalServerError, "Internal server error"
}
