// Package bytrainer реализует HTTP-обработчики списков занятий тренера:
// по ID из URL и для текущего тренера.
package bytrainer

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/mware"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
)

// Handler управляет HTTP-запросами на списки занятий тренера.
type Handler struct {
	log     *slog.Logger
	service Service
	mine    bool
}

// Service описывает интерфейс чтения занятий тренера.
type Service interface {
	ListByTrainer(ctx context.Context, trainerID string) ([]*models.ScheduleWithSlots, error)
}

// New создает Handler, берущий ID тренера из URL.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// NewMine создает Handler для занятий текущего тренера.
func NewMine(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, mine: true}
}

// ServeHTTP godoc
// @Summary Занятия тренера
// @Tags Schedules
// @Produce json
// @Param trainerId path string false "ID тренера"
// @Success 200 {object} response.Response "Список занятий"
// @Security BearerAuth
// @Router /schedules/trainer/{trainerId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.schedule.bytrainer"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var trainerID string
	if h.mine {
		uid, ok := r.Context().Value(mware.UserUID).(string)
		if !ok || uid == "" {
			log.Error("user uid not found in context")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(http.StatusUnauthorized, "Unauthorized"))
			return
		}
		trainerID = uid
	} else {
		trainerID = chi.URLParam(r, "trainerId")
	}

	schedules, err := h.service.ListByTrainer(r.Context(), trainerID)
	if err != nil {
		log.Error("failed to list trainer schedules", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Schedules retrieved successfully", schedules))
}
