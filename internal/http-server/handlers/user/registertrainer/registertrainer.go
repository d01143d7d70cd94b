// Package registertrainer реализует HTTP-обработчик создания тренера
// администратором.
package registertrainer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/mware"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	userservice "github.com/magabrotheeeer/gym-class-booking/internal/services/user"
)

// Handler управляет HTTP-запросами на создание тренеров.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания тренера.
type Service interface {
	RegisterTrainer(ctx context.Context, req models.DummyRegisterUser, adminID string) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать тренера
// @Description Создает учетную запись тренера от имени текущего администратора.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.DummyRegisterUser true "Данные тренера"
// @Success 201 {object} response.Response "Тренер создан"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 409 {object} response.Response "Email уже занят"
// @Security BearerAuth
// @Router /users/trainers [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.registertrainer"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRegisterUser
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(http.StatusBadRequest, "Invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	adminID, ok := r.Context().Value(mware.UserUID).(string)
	if !ok || adminID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	trainer, err := h.service.RegisterTrainer(r.Context(), req, adminID)
	if err != nil {
		if errors.Is(err, userservice.ErrDuplicateEmail) {
			log.Warn("email already taken", slog.String("email", req.Email))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(http.StatusConflict, "Email is already taken"))
			return
		}
		log.Error("failed to register trainer", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		return
	}

	log.Info("registered trainer", slog.String("id", trainer.ID), slog.String("admin_id", adminID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(http.StatusCreated, "Trainer registered successfully", trainer))
}
