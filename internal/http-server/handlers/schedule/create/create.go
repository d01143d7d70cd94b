// Package create реализует HTTP-обработчик создания занятия.
//
// Handler принимает JSON с данными занятия, валидирует их и вызывает
// бизнес-логику, которая проверяет тренера, длительность, дневной лимит
// и пересечения.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/mware"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	scheduleservice "github.com/magabrotheeeer/gym-class-booking/internal/services/schedule"
)

// Handler управляет HTTP-запросами на создание занятий.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания занятия.
type Service interface {
	Create(ctx context.Context, req models.DummyCreateSchedule, creatorID string) (*models.ClassSchedule, error)
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
// @Summary Создать занятие
// @Description Создает занятие с проверкой тренера, длительности, дневного лимита и пересечений.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param request body models.DummyCreateSchedule true "Данные занятия"
// @Success 201 {object} response.Response "Занятие создано"
// @Failure 400 {object} response.Response "Ошибка валидации или длительности"
// @Failure 409 {object} response.Response "Конфликт расписания"
// @Security BearerAuth
// @Router /schedules [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCreateSchedule
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

	creatorID, ok := r.Context().Value(mware.UserUID).(string)
	if !ok || creatorID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	sched, err := h.service.Create(r.Context(), req, creatorID)
	if err != nil {
		code, msg := mapCreateError(err)
		if code == http.StatusInternalServerError {
			log.Error("failed to create schedule", sl.Err(err))
		} else {
			log.Warn("schedule rejected", sl.Err(err))
		}
		w.WriteHeader(code)
		render.JSON(w, r, response.Error(code, msg))
		return
	}

	log.Info("created schedule", slog.String("id", sched.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(http.StatusCreated, "Schedule created successfully", sched))
}

func mapCreateError(err error) (int, string) {
	switch {
	case errors.Is(err, scheduleservice.ErrInvalidTrainer):
		return http.StatusBadRequest, "Trainer not found or user is not a trainer"
	case errors.Is(err, scheduleservice.ErrInvalidDateTime):
		return http.StatusBadRequest, "Invalid date or time format"
	case errors.Is(err, scheduleservice.ErrInvalidDuration):
		return http.StatusBadRequest, "Class duration must be exactly 2 hours"
	case errors.Is(err, scheduleservice.ErrDailyCapExceeded):
		return http.StatusConflict, "Daily schedule limit reached"
	case errors.Is(err, scheduleservice.ErrTrainerConflict):
		return http.StatusConflict, "Trainer already has a class at this time"
	}
	return http.StatusInternalServerError, "Internal server error"
}
