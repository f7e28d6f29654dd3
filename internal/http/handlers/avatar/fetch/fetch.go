// Package fetch реализует публичный HTTP-обработчик раздачи аватара
// по идентификатору пользователя.
//
// Отсутствие пользователя и отсутствие аватара для клиента неразличимы:
// оба случая дают 404 с пустым телом.
package fetch

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/account-service/internal/lib/sl"
)

// Handler раздаёт сохранённые байты аватара.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения аватара.
type Service interface {
	Avatar(ctx context.Context, id string) ([]byte, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить аватар пользователя
// @Description Публичная конечная точка. Возвращает PNG-байты аватара.
// @Tags Avatars
// @Produce  png
// @Param id path string true "Идентификатор пользователя"
// @Success 200 {file} file "PNG 250x250"
// @Failure 404 {string} string "Пустое тело: нет пользователя или нет аватара"
// @Router /users/{id}/avatar [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.avatar.fetch"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	data, err := h.service.Avatar(r.Context(), id)
	if err != nil {
		log.Error("failed to fetch avatar", sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write avatar bytes", sl.Err(err))
	}
}
