// Package my реализует HTTP-обработчики бронирований текущего участника:
// все, предстоящие и история.
package my

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/mware"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
)

// Режимы выборки бронирований участника.
type mode int

const (
	modeAll mode = iota
	modeUpcoming
	modeHistory
)

// Handler управляет HTTP-запросами на бронирования текущего участника.
type Handler struct {
	log     *slog.Logger
	service Service
	mode    mode
}

// Service описывает интерфейс выборки бронирований участника.
type Service interface {
	ListMy(ctx context.Context, traineeID string) ([]*models.BookingInfo, error)
	ListUpcoming(ctx context.Context, traineeID string, now time.Time) ([]*models.BookingInfo, error)
	ListHistory(ctx context.Context, traineeID string, now time.Time) ([]*models.BookingInfo, error)
}

// New создает Handler, возвращающий все бронирования участника.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, mode: modeAll}
}

// NewUpcoming создает Handler, возвращающий будущие подтвержденные бронирования.
func NewUpcoming(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, mode: modeUpcoming}
}

// NewHistory создает Handler, возвращающий прошедшие и отмененные бронирования.
func NewHistory(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, mode: modeHistory}
}

// ServeHTTP godoc
// @Summary Мои бронирования
// @Description Возвращает бронирования текущего участника: все, предстоящие или историю.
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Response "Список бронирований"
// @Security BearerAuth
// @Router /bookings/my [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.my"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	traineeID, ok := r.Context().Value(mware.UserUID).(string)
	if !ok || traineeID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	var (
		bookings []*models.BookingInfo
		err      error
	)
	switch h.mode {
	case modeUpcoming:
		bookings, err = h.service.ListUpcoming(r.Context(), traineeID, time.Now().UTC())
	case modeHistory:
		bookings, err = h.service.ListHistory(r.Context(), traineeID, time.Now().UTC())
	default:
		bookings, err = h.service.ListMy(r.Context(), traineeID)
	}
	if err != nil {
		log.Error("failed to list bookings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Bookings retrieved successfully", bookings))
}
