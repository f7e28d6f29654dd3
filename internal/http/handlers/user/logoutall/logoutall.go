// Package logoutall реализует HTTP-обработчик завершения всех сессий
// пользователя разом: после него ни один ранее выпущенный токен не действует.
package logoutall

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Handler обрабатывает запросы на завершение всех сессий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики завершения всех сессий.
type Service interface {
	LogoutAll(ctx context.Context, user *models.User) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.logoutall"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.service.LogoutAll(r.Context(), user); err != nil {
		log.Error("failed to logout from all sessions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("all sessions closed", slog.String("id", user.ID.Hex()))
	w.WriteHeader(http.StatusOK)
}
