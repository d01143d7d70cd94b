// Package verify реализует HTTP-обработчик проверки JWT-токена.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	authservice "github.com/magabrotheeeer/gym-class-booking/internal/services/auth"
)

// Handler управляет HTTP-запросами на проверку токена.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс проверки токена. Сервис заново читает
// пользователя из базы, так что ответ отражает его актуальное состояние.
type Service interface {
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверить токен
// @Description Проверяет токен из заголовка Authorization и возвращает актуальные данные пользователя.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response "Токен валиден"
// @Failure 401 {object} response.Response "Токен отсутствует, недействителен или пользователь удален"
// @Security BearerAuth
// @Router /auth/verify-token [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Error("missing or invalid authorization header")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized,
			"Missing or invalid authorization header"))
		return
	}

	user, err := h.service.VerifyToken(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidToken) {
			log.Warn("invalid or expired token", sl.Err(err))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(http.StatusUnauthorized, "Invalid or expired token"))
			return
		}
		log.Error("failed to verify token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	render.JSON(w, r, response.OK(http.StatusOK, "Token is valid", user))
}
