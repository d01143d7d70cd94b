// Package trainers реализует HTTP-обработчики списков тренеров:
// всех тренеров и тренеров, созданных текущим администратором.
package trainers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/mware"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
)

// Handler управляет HTTP-запросами на списки тренеров.
type Handler struct {
	log      *slog.Logger
	service  Service
	onlyMine bool
}

// Service описывает интерфейс чтения списков тренеров.
type Service interface {
	ListTrainers(ctx context.Context) ([]*models.User, error)
	ListMyTrainers(ctx context.Context, adminID string) ([]*models.User, error)
}

// New создает Handler, возвращающий всех тренеров.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// NewMine создает Handler, возвращающий тренеров текущего администратора.
func NewMine(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, onlyMine: true}
}

// ServeHTTP godoc
// @Summary Список тренеров
// @Description Возвращает всех тренеров или тренеров текущего администратора.
// @Tags Users
// @Produce json
// @Success 200 {object} response.Response "Список тренеров"
// @Security BearerAuth
// @Router /users/trainers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.trainers"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var trainers []*models.User
	var err error
	if h.onlyMine {
		adminID, ok := r.Context().Value(mware.UserUID).(string)
		if !ok || adminID == "" {
			log.Error("user uid not found in context")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(http.StatusUnauthorized, "Unauthorized"))
			return
		}
		trainers, err = h.service.ListMyTrainers(r.Context(), adminID)
	} else {
		trainers, err = h.service.ListTrainers(r.Context())
	}
	if err != nil {
		log.Error("failed to list trainers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Trainers retrieved successfully", trainers))
}
