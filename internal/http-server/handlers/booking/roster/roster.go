// Package roster реализует HTTP-обработчики списков участников по занятиям
// тренера: для самого тренера и для администратора по ID тренера.
package roster

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

// Handler управляет HTTP-запросами на списки участников занятий тренера.
type Handler struct {
	log     *slog.Logger
	service Service
	mine    bool
}

// Service описывает интерфейс выборки занятий тренера с участниками.
type Service interface {
	Rosters(ctx context.Context, trainerID string) ([]*models.ScheduleRoster, error)
}

// New создает Handler, берущий ID тренера из параметра пути.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// NewMine создает Handler, берущий ID тренера из контекста запроса.
func NewMine(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, mine: true}
}

// ServeHTTP godoc
// @Summary Занятия тренера с участниками
// @Description Возвращает занятия тренера вместе со списками записавшихся участников.
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Response "Занятия с участниками"
// @Security BearerAuth
// @Router /bookings/trainer/schedules [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.roster"
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

	rosters, err := h.service.Rosters(r.Context(), trainerID)
	if err != nil {
		log.Error("failed to list rosters", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Class rosters retrieved successfully", rosters))
}
