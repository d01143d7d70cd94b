// Package list реализует HTTP-обработчики списков занятий:
// всех занятий и занятий со свободными местами.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
)

// Handler управляет HTTP-запросами на списки занятий.
type Handler struct {
	log           *slog.Logger
	service       Service
	onlyAvailable bool
}

// Service описывает интерфейс чтения списков занятий.
type Service interface {
	List(ctx context.Context) ([]*models.ScheduleWithSlots, error)
	ListAvailable(ctx context.Context, now time.Time) ([]*models.ScheduleWithSlots, error)
}

// New создает Handler, возвращающий все занятия.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// NewAvailable создает Handler, возвращающий занятия со свободными местами.
func NewAvailable(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, onlyAvailable: true}
}

// ServeHTTP godoc
// @Summary Список занятий
// @Description Возвращает занятия со свободными местами и данными тренера.
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Response "Список занятий"
// @Security BearerAuth
// @Router /schedules [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var schedules []*models.ScheduleWithSlots
	var err error
	if h.onlyAvailable {
		schedules, err = h.service.ListAvailable(r.Context(), time.Now().UTC())
	} else {
		schedules, err = h.service.List(r.Context())
	}
	if err != nil {
		log.Error("failed to list schedules", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Schedules retrieved successfully", schedules))
}
