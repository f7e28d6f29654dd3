// Package logout реализует HTTP-обработчик завершения текущей сессии.
// Завершается ровно та сессия, токен которой предъявлен в запросе;
// остальные сессии пользователя продолжают действовать.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Handler обрабатывает запросы на завершение текущей сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики завершения сессии.
type Service interface {
	Logout(ctx context.Context, user *models.User, token string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.logout"

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
	token, ok := middlewarectx.TokenFromContext(r.Context())
	if !ok {
		log.Error("token not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.service.Logout(r.Context(), user, token); err != nil {
		log.Error("failed to logout", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("session closed", slog.String("id", user.ID.Hex()))
	w.WriteHeader(http.StatusOK)
}
