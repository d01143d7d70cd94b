// Package gymclassbooking предоставляет маршруты для основного приложения.
package gymclassbooking

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/auth/login"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/auth/logout"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/auth/registeradmin"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/auth/verify"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/booking/byschedule"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/booking/bytrainee"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/booking/cancel"
	bookingcreate "github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/booking/create"
	bookinglist "github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/booking/list"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/booking/my"
	bookingread "github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/booking/read"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/booking/roster"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/schedule/bytrainer"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/schedule/create"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/schedule/list"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/schedule/read"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/schedule/remove"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/schedule/update"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/user/profile"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/user/register"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/user/registertrainer"
	userremove "github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/user/remove"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/user/trainers"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/handlers/user/updateprofile"
	"github.com/magabrotheeeer/gym-class-booking/internal/http-server/mware"
	authservice "github.com/magabrotheeeer/gym-class-booking/internal/services/auth"
	bookingservice "github.com/magabrotheeeer/gym-class-booking/internal/services/booking"
	scheduleservice "github.com/magabrotheeeer/gym-class-booking/internal/services/schedule"
	userservice "github.com/magabrotheeeer/gym-class-booking/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	apiVersion string,
	corsOrigin string,
	authService *authservice.AuthService,
	userService *userservice.UserService,
	scheduleService *scheduleservice.ScheduleService,
	bookingService *bookingservice.BookingService,
	tokenParser mware.TokenParser,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/"+apiVersion, func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Post("/auth/register-admin", registeradmin.New(logger, userService).ServeHTTP)
		r.Post("/users/register", register.New(logger, userService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(mware.JWTMiddleware(tokenParser, logger))

			r.Post("/auth/verify-token", verify.New(logger, authService).ServeHTTP)
			r.Post("/auth/logout", logout.New(logger).ServeHTTP)

			r.Get("/users/profile", profile.New(logger, userService).ServeHTTP)
			r.Put("/users/update-profile", updateprofile.New(logger, userService).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(mware.AdminOnly(logger))
				r.Post("/users/trainers", registertrainer.New(logger, userService).ServeHTTP)
				r.Get("/users/trainers", trainers.New(logger, userService).ServeHTTP)
				r.Get("/users/my-trainers", trainers.NewMine(logger, userService).ServeHTTP)
				r.Delete("/users/{userId}", userremove.New(logger, userService).ServeHTTP)

				r.Post("/schedules", create.New(logger, scheduleService).ServeHTTP)
				r.Put("/schedules/{id}", update.New(logger, scheduleService).ServeHTTP)
				r.Delete("/schedules/{id}", remove.New(logger, scheduleService).ServeHTTP)

				r.Get("/bookings", bookinglist.New(logger, bookingService).ServeHTTP)
				r.Get("/bookings/trainee/{traineeId}", bytrainee.New(logger, bookingService).ServeHTTP)
				r.Get("/bookings/trainer/{trainerId}/schedules", roster.New(logger, bookingService).ServeHTTP)
			})

			r.Get("/schedules", list.New(logger, scheduleService).ServeHTTP)
			r.Get("/schedules/available", list.NewAvailable(logger, scheduleService).ServeHTTP)
			r.With(mware.TrainerOrAdmin(logger)).
				Get("/schedules/my", bytrainer.NewMine(logger, scheduleService).ServeHTTP)
			r.Get("/schedules/trainer/{trainerId}", bytrainer.New(logger, scheduleService).ServeHTTP)
			r.Get("/schedules/{id}", read.New(logger, scheduleService).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(mware.TraineeOnly(logger))
				r.Post("/bookings", bookingcreate.New(logger, bookingService).ServeHTTP)
				r.Get("/bookings/my", my.New(logger, bookingService).ServeHTTP)
				r.Get("/bookings/my/upcoming", my.NewUpcoming(logger, bookingService).ServeHTTP)
				r.Get("/bookings/my/history", my.NewHistory(logger, bookingService).ServeHTTP)
			})

			r.With(mware.TrainerOrAdmin(logger)).
				Get("/bookings/trainer/schedules", roster.NewMine(logger, bookingService).ServeHTTP)
			r.With(mware.TrainerOrAdmin(logger)).
				Get("/bookings/schedule/{scheduleId}", byschedule.New(logger, bookingService).ServeHTTP)
			r.Get("/bookings/{id}", bookingread.New(logger, bookingService).ServeHTTP)
			r.Put("/bookings/{id}/cancel", cancel.New(logger, bookingService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
