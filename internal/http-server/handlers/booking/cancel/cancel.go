// Package cancel реализует HTTP-обработчик отмены бронирования.
package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/mware"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	bookingservice "github.com/magabrotheeeer/gym-class-booking/internal/services/booking"
)

// Handler управляет HTTP-запросами на отмену бронирований.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс отмены бронирования.
type Service interface {
	Cancel(ctx context.Context, bookingID, actorID string, actorRole models.Role, now time.Time) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить бронирование
// @Description Отменяет бронирование не позднее чем за два часа до начала занятия.
// @Tags Bookings
// @Produce json
// @Param id path string true "ID бронирования"
// @Success 200 {object} response.Response "Бронирование отменено"
// @Failure 400 {object} response.Response "Слишком поздно для отмены"
// @Failure 403 {object} response.Response "Нет доступа к бронированию"
// @Failure 404 {object} response.Response "Бронирование не найдено"
// @Security BearerAuth
// @Router /bookings/{id}/cancel [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.cancel"
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
	err := h.service.Cancel(r.Context(), bookingID, actorID, models.Role(role), time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, bookingservice.ErrBookingNotFound):
			log.Warn("booking not found", slog.String("id", bookingID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(http.StatusNotFound, "Booking not found"))
		case errors.Is(err, bookingservice.ErrAccessDenied):
			log.Warn("access denied", slog.String("id", bookingID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(http.StatusForbidden, "You can only cancel your own bookings"))
		case errors.Is(err, bookingservice.ErrTooLateToCancel):
			log.Warn("too late to cancel", slog.String("id", bookingID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(http.StatusBadRequest,
				"Bookings can only be cancelled more than 2 hours before class start"))
		default:
			log.Error("failed to cancel booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		}
		return
	}

	log.Info("cancelled booking", slog.String("id", bookingID))
	render.JSON(w, r, response.OK(http.StatusOK, "Booking cancelled successfully", nil))
}
