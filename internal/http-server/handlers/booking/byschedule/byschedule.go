// Package byschedule реализует HTTP-обработчик списка бронирований занятия.
package byschedule

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

// Handler управляет HTTP-запросами на бронирования конкретного занятия.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки бронирований занятия.
type Service interface {
	ListBySchedule(ctx context.Context, scheduleID, actorID string, actorRole models.Role) ([]*models.BookingInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Бронирования занятия
// @Description Возвращает подтвержденные бронирования занятия. Тренер видит только свои занятия.
// @Tags Bookings
// @Produce json
// @Param scheduleId path string true "ID занятия"
// @Success 200 {object} response.Response "Список бронирований"
// @Failure 403 {object} response.Response "Чужое занятие"
// @Failure 404 {object} response.Response "Занятие не найдено"
// @Security BearerAuth
// @Router /bookings/schedule/{scheduleId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.byschedule"
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

	scheduleID := chi.URLParam(r, "scheduleId")
	bookings, err := h.service.ListBySchedule(r.Context(), scheduleID, actorID, models.Role(role))
	if err != nil {
		switch {
		case errors.Is(err, bookingservice.ErrScheduleNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(http.StatusNotFound, "Schedule not found"))
		case errors.Is(err, bookingservice.ErrAccessDenied):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(http.StatusForbidden, "You can only view bookings for your own classes"))
		default:
			log.Error("failed to list bookings", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		}
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Bookings retrieved successfully", bookings))
}
