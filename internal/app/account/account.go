// Package account собирает приложение сервиса аккаунтов: хранилище,
// кэш, бизнес-логику и HTTP-сервер с маршрутами.
package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/account-service/internal/cache"
	"github.com/magabrotheeeer/account-service/internal/config"
	"github.com/magabrotheeeer/account-service/internal/lib/avatar"
	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	usersvc "github.com/magabrotheeeer/account-service/internal/services/user"
	"github.com/magabrotheeeer/account-service/internal/storage/mongo"
)

// App держит вместе HTTP-сервер и подключения к внешним системам.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *mongo.Storage
	cache  *cache.Cache
}

// New инициализирует все зависимости приложения и настраивает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := mongo.New(ctx, cfg.StorageConnectionString, cfg.StorageDBName)
	if err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	transcoder := avatar.NewTranscoder(cfg.TargetSize)
	userService := usersvc.New(logger, db, jwtMaker, transcoder, cacheRedis)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, userService, cfg.MaxFileSizeBytes)

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
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
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
		if dbErr := a.db.Close(timeoutCtx); dbErr != nil {
			a.logger.Error("failed to close storage", slog.Any("err", dbErr))
		}
		return err
	}
}
