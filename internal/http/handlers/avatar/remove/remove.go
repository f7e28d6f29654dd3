// Package remove реализует HTTP-обработчик удаления аватара
// текущего пользователя.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Handler обрабатывает запросы на удаление аватара.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления аватара.
type Service interface {
	RemoveAvatar(ctx context.Context, user *models.User) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.avatar.remove"

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

	if err := h.service.RemoveAvatar(r.Context(), user); err != nil {
		log.Error("failed to remove avatar", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("avatar removed", slog.String("id", user.ID.Hex()))
	w.WriteHeader(http.StatusOK)
}
