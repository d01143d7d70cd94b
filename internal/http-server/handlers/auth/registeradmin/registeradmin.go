// Package registeradmin реализует HTTP-обработчик создания первой
// учетной записи администратора. Доступен только пока в системе нет
// ни одного администратора.
package registeradmin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
	userservice "github.com/magabrotheeeer/gym-class-booking/internal/services/user"
)

// Handler управляет HTTP-запросами на создание администратора.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания администратора.
type Service interface {
	RegisterAdmin(ctx context.Context, req models.DummyRegisterUser) (*models.User, error)
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
// @Summary Создать первого администратора
// @Description Создает учетную запись администратора. Отклоняется, если администратор уже существует.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.DummyRegisterUser true "Данные администратора"
// @Success 201 {object} response.Response "Администратор создан"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 403 {object} response.Response "Администратор уже существует"
// @Failure 409 {object} response.Response "Email уже занят"
// @Router /auth/register-admin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.registeradmin"
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

	user, err := h.service.RegisterAdmin(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrAdminExists):
			log.Warn("admin registration refused: admin already exists")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(http.StatusForbidden,
				"Admin account already exists"))
		case errors.Is(err, userservice.ErrDuplicateEmail):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(http.StatusConflict, "Email is already taken"))
		default:
			log.Error("failed to register admin", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(http.StatusInternalServerError, "Internal server error"))
		}
		return
	}

	log.Info("registered admin", slog.String("id", user.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(http.StatusCreated, "Admin registered successfully", user))
}
