// Package account предоставляет маршруты сервиса аккаунтов.
package account

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	avatarfetch "github.com/magabrotheeeer/account-service/internal/http/handlers/avatar/fetch"
	avatarremove "github.com/magabrotheeeer/account-service/internal/http/handlers/avatar/remove"
	avatarupload "github.com/magabrotheeeer/account-service/internal/http/handlers/avatar/upload"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/login"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/logout"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/logoutall"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/register"
	userremove "github.com/magabrotheeeer/account-service/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	usersvc "github.com/magabrotheeeer/account-service/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, userService *usersvc.Service, maxUploadBytes int64) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(1, 3)

	// Открытые конечные точки
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
		r.Post("/users", register.New(logger, userService).ServeHTTP)
		r.Post("/users/login", login.New(logger, userService).ServeHTTP)
	})
	r.Get("/users/{id}/avatar", avatarfetch.New(logger, userService).ServeHTTP)

	// Группа с проверкой токена сессии
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.AuthMiddleware(userService, logger))
		r.Get("/users/me", me.New(logger).ServeHTTP)
		r.Patch("/users/me", update.New(logger, userService).ServeHTTP)
		r.Delete("/users/me", userremove.New(logger, userService).ServeHTTP)
		r.Post("/users/logout", logout.New(logger, userService).ServeHTTP)
		r.Post("/users/logoutAll", logoutall.New(logger, userService).ServeHTTP)
		r.Post("/users/me/avatar", avatarupload.New(logger, userService, maxUploadBytes).ServeHTTP)
		r.Delete("/users/me/avatar", avatarremove.New(logger, userService).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
