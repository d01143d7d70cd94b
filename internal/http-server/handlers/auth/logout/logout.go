// Package logout реализует HTTP-обработчик выхода пользователя.
// Сервер не хранит сессии, поэтому выход — подтверждение для клиента,
// который должен удалить токен у себя.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/mware"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
)

// Handler управляет HTTP-запросами на выход.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Подтверждает выход; клиент должен удалить сохраненный токен.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Выход выполнен"
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	userUID, _ := r.Context().Value(mware.UserUID).(string)
	h.log.Info("user logged out",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_uid", userUID))

	render.JSON(w, r, response.OK(http.StatusOK,
		"Logout successful. Please remove the token on the client side.", nil))
}
