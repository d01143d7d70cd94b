// Package mware содержит middleware для HTTP-сервера.
// Здесь реализована проверка JWT-токена, извлечение данных пользователя
// в контекст запроса и ролевые ограничения доступа.
package mware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/response"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/sl"
	"github.com/magabrotheeeer/gym-class-booking/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
	// Email — ключ для email пользователя в контексте
	Email Key = "email"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
)

// TokenParser описывает проверку JWT-токена.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// JWTMiddleware возвращает middleware, которое проверяет JWT-токен
// в заголовке Authorization и кладет идентификатор, email и роль
// пользователя в контекст запроса.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.JWTMiddleware"

			log := log.With(
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
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(http.StatusUnauthorized,
					"Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, Email, claims.Email)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles возвращает middleware, которое пропускает запрос только
// если роль пользователя в контексте входит в разрешенный набор.
func RequireRoles(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "mware.RequireRoles"

			role, ok := r.Context().Value(Role).(string)
			if !ok || role == "" {
				log.Error("role missing in request context", slog.String("op", op))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(http.StatusUnauthorized, "Unauthorized"))
				return
			}
			if _, ok := allowed[models.Role(role)]; !ok {
				log.Warn("access denied by role",
					slog.String("op", op), slog.String("role", role))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(http.StatusForbidden,
					"Access denied: insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly пропускает только администраторов.
func AdminOnly(log *slog.Logger) func(http.Handler) http.Handler {
	return RequireRoles(log, models.RoleAdmin)
}

// TrainerOrAdmin пропускает тренеров и администраторов.
func TrainerOrAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return RequireRoles(log, models.RoleTrainer, models.RoleAdmin)
}

// TraineeOnly пропускает только участников.
func TraineeOnly(log *slog.Logger) func(http.Handler) http.Handler {
	return RequireRoles(log, models.RoleTrainee)
}
