// Package bytrainee реализует HTTP-обработчик списка бронирований участника.
package bytrainee

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
)

// Handler управляет HTTP-запросами на бронирования конкретного участника.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки бронирований участника.
type Service interface {
	ListByTrainee(ctx context.Context, traineeID string) ([]*models.BookingInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Бронирования участника
// @Description Возвращает все бронирования указанного участника. Доступно администратору.
// @Tags Bookings
// @Produce json
// @Param traineeId path string true "ID участника"
// @Success 200 {object} response.Response "Список бронирований"
// @Security BearerAuth
// @Router /bookings/trainee/{traineeId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.bytrainee"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	traineeID := chi.URLParam(r, "traineeId")
	bookings, err := h.service.ListByTrainee(r.Context(), traineeID)
	if err != nil {
		log.Error("failed to list bookings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Bookings retrieved successfully", bookings))
}
