package gymclassbooking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/gym-class-booking/internal/cache"
	"github.com/magabrotheeeer/gym-class-booking/internal/config"
	"github.com/magabrotheeeer/gym-class-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-class-booking/internal/migrations"
	"github.com/magabrotheeeer/gym-class-booking/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/gym-class-booking/internal/services/auth"
	bookingservice "github.com/magabrotheeeer/gym-class-booking/internal/services/booking"
	scheduleservice "github.com/magabrotheeeer/gym-class-booking/internal/services/schedule"
	userservice "github.com/magabrotheeeer/gym-class-booking/internal/services/user"
	"github.com/magabrotheeeer/gym-class-booking/internal/storage/repository"

	"github.com/streadway/amqp"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	rabbit *amqp.Connection
}

// New собирает приложение: подключает хранилище, выполняет миграции,
// поднимает кеш и брокер сообщений, регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Без брокера приложение работает, события бронирований не публикуются.
	var rabbitConn *amqp.Connection
	var events bookingservice.EventPublisher
	if cfg.RabbitURL != "" {
		rabbitConn, err = rabbitmq.Connect(cfg.RabbitURL, 5, 3*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetBookingQueues())
		if err != nil {
			return nil, err
		}
		events = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbit url is empty, booking events disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	userService := userservice.NewUserService(db, cfg.PasswordHashCost, logger)
	scheduleService := scheduleservice.NewScheduleService(db, db, cacheRedis, logger)
	bookingService := bookingservice.NewBookingService(db, cacheRedis, events, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.APIVersion, cfg.CORSOrigin,
		authService, userService, scheduleService, bookingService, jwtMaker)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		rabbit: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.rabbit != nil {
			_ = a.rabbit.Close()
		}
		_ = a.cache.Db.Close()
		_ = a.db.DB.Close()
		return err
	}
}
