// Package remove реализует HTTP-обработчик удаления учетной записи
// администратором. Удаление собственной записи запрещено.
package remove

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
	userservice "github.com/magabrotheeeer/gym-class-booking/internal/services/user"
)

// Handler управляет HTTP-запросами на удаление пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс удаления пользователя.
type Service interface {
	Delete(ctx context.Context, targetID, actorID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить пользователя
// @Description Удаляет учетную запись по ID. Администратор не может удалить себя.
// @Tags Users
// @Produce json
// @Param userId path string true "ID пользователя"
// @Success 200 {object} response.Response "Пользователь удален"
// @Failure 400 {object} response.Response "Попытка удалить себя"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Security BearerAuth
// @Router /users/{userId} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	targetID := chi.URLParam(r, "userId")
	actorID, ok := r.Context().Value(mware.UserUID).(string)
	if !ok || actorID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	if err := h.service.Delete(r.Context(), targetID, actorID); err != nil {
		switch {
		case errors.Is(err, userservice.ErrSelfDeletion):
			log.Warn("self deletion refused", slog.String("id", actorID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(http.StatusBadRequest,
				"Admin cannot delete their own account"))
		case errors.Is(err, userservice.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(http.StatusNotFound, "User not found"))
		default:
			log.Error("failed to delete user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		}
		return
	}

	log.Info("deleted user", slog.String("id", targetID))
	render.JSON(w, r, response.OK(http.StatusOK, "User deleted successfully", nil))
}
