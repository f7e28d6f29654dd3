// Package remove реализует HTTP-обработчик удаления учётной записи
// текущего пользователя. В ответе возвращается последнее публичное
// представление уже удалённого пользователя.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Handler обрабатывает запросы на удаление учётной записи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления.
type Service interface {
	Remove(ctx context.Context, user *models.User) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить учётную запись текущего пользователя
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.PublicUser "Последнее представление удалённого пользователя"
// @Failure 401 {string} string "Пустое тело"
// @Failure 500 {string} string "Пустое тело"
// @Router /users/me [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.remove"

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

	if err := h.service.Remove(r.Context(), user); err != nil {
		log.Error("failed to remove user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("user removed", slog.String("id", user.ID.Hex()))
	render.JSON(w, r, user.Public())
}
