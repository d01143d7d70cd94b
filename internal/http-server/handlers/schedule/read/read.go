// Package read реализует HTTP-обработчик чтения занятия по ID.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	scheduleservice "github.com/magabrotheeeer/gym-class-booking/internal/services/schedule"
)

// Handler управляет HTTP-запросами на чтение занятия.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения занятия.
type Service interface {
	GetByID(ctx context.Context, scheduleID string) (*models.ScheduleWithSlots, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Занятие по ID
// @Tags Schedules
// @Produce json
// @Param id path string true "ID занятия"
// @Success 200 {object} response.Response "Занятие"
// @Failure 404 {object} response.Response "Занятие не найдено"
// @Security BearerAuth
// @Router /schedules/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	scheduleID := chi.URLParam(r, "id")
	sched, err := h.service.GetByID(r.Context(), scheduleID)
	if err != nil {
		if errors.Is(err, scheduleservice.ErrScheduleNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(http.StatusNotFound, "Schedule not found"))
			return
		}
		log.Error("failed to read schedule", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Schedule retrieved successfully", sched))
}
