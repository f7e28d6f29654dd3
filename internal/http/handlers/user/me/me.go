// Package me реализует HTTP-обработчик чтения профиля текущего пользователя.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
)

// Handler возвращает публичное представление аутентифицированного пользователя.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Профиль текущего пользователя
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.PublicUser "Публичное представление пользователя"
// @Failure 401 {string} string "Пустое тело"
// @Router /users/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.me"

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

	render.JSON(w, r, user.Public())
}
