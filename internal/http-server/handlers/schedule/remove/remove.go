// Package remove реализует HTTP-обработчик удаления занятия.
package remove

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
	scheduleservice "github.com/magabrotheeeer/gym-class-booking/internal/services/schedule"
)

// Handler управляет HTTP-запросами на удаление занятий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс удаления занятия.
type Service interface {
	Delete(ctx context.Context, scheduleID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить занятие
// @Description Удаляет занятие без подтвержденных бронирований.
// @Tags Schedules
// @Produce json
// @Param id path string true "ID занятия"
// @Success 200 {object} response.Response "Занятие удалено"
// @Failure 404 {object} response.Response "Занятие не найдено"
// @Failure 409 {object} response.Response "Есть подтвержденные бронирования"
// @Security BearerAuth
// @Router /schedules/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	scheduleID := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), scheduleID); err != nil {
		switch {
		case errors.Is(err, scheduleservice.ErrScheduleNotFound):
			log.Warn("schedule not found", slog.String("id", scheduleID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(http.StatusNotFound, "Schedule not found"))
		case errors.Is(err, scheduleservice.ErrScheduleHasBookings):
			log.Warn("schedule has bookings", slog.String("id", scheduleID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(http.StatusConflict, "Schedule has confirmed bookings and cannot be deleted"))
		default:
			log.Error("failed to delete schedule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		}
		return
	}

	log.Info("deleted schedule", slog.String("id", scheduleID))
	render.JSON(w, r, response.OK(http.StatusOK, "Schedule deleted successfully", nil))
}
