// Package list реализует HTTP-обработчик списка всех бронирований.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
)

// Handler управляет HTTP-запросами на получение списка бронирований.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения всех бронирований.
type Service interface {
	ListAll(ctx context.Context) ([]*models.BookingInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список всех бронирований
// @Description Возвращает все бронирования со статусами. Доступно администратору.
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Response "Список бронирований"
// @Security BearerAuth
// @Router /bookings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	bookings, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list bookings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Bookings retrieved successfully", bookings))
}
