// Package read реализует HTTP-обработчик чтения бронирования по идентификатору.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/mware"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	bookingservice "github.com/magabrotheeeer/gym-class-booking/internal/services/booking"
)

// Handler управляет HTTP-запросами на чтение бронирования.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения бронирования.
type Service interface {
	GetByID(ctx context.Context, bookingID, actorID string, actorRole models.Role) (*models.BookingInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить бронирование
// @Description Возвращает бронирование с данными участника и занятия.
// @Tags Bookings
// @Produce json
// @Param id path string true "ID бронирования"
// @Success 200 {object} response.Response "Бронирование"
// @Failure 403 {object} response.Response "Нет доступа к бронированию"
// @Failure 404 {object} response.Response "Бронирование не найдено"
// @Security BearerAuth
// @Router /bookings/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actorID, ok := r.Context().Value(mware.UserUID).(string)
	if !ok || actorID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	role, _ := r.Context().Value(mware.Role).(string)

	bookingID := chi.URLParam(r, "id")
	info, err := h.service.GetByID(r.Context(), bookingID, actorID, models.Role(role))
	if err != nil {
		switch {
		case errors.Is(err, bookingservice.ErrBookingNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(http.StatusNotFound, "Booking not found"))
		case errors.Is(err, bookingservice.ErrAccessDenied):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(http.StatusForbidden, "Access to this booking is denied"))
		default:
			log.Error("failed to get booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		}
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Booking retrieved successfully", info))
}
