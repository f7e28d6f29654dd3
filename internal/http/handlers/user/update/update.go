// Package update реализует HTTP-обработчик частичного обновления профиля.
//
// Тело запроса должно содержать только разрешённые поля: name, password,
// age, email. Любой посторонний ключ отклоняет запрос целиком, без
// частичного применения. Итоговое состояние профиля заново проверяется
// бизнес-логикой перед сохранением.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
	usersvc "github.com/magabrotheeeer/account-service/internal/services/user"
)

// allowedFields — единственные ключи, которые принимает PATCH /users/me.
var allowedFields = map[string]struct{}{
	"name":     {},
	"email":    {},
	"password": {},
	"age":      {},
}

// Handler обрабатывает запросы на обновление профиля текущего пользователя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Бизнес-логика обновления профиля
}

// Service описывает интерфейс бизнес-логики обновления.
type Service interface {
	Update(ctx context.Context, user *models.User, upd usersvc.Updates) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновить профиль текущего пользователя
// @Description Принимает подмножество полей {name, email, password, age}. Посторонний ключ отклоняет запрос целиком.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} models.PublicUser "Обновлённый профиль"
// @Failure 400 {object} response.ErrorResponse "Недопустимые ключи или невалидные значения"
// @Failure 401 {string} string "Пустое тело"
// @Router /users/me [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.update"

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

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	for key := range fields {
		if _, ok := allowedFields[key]; !ok {
			log.Error("request contains forbidden field", slog.String("field", key))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid Updates!"))
			return
		}
	}

	var upd usersvc.Updates
	if err := json.Unmarshal(body, &upd); err != nil {
		log.Error("failed to decode updates", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	updated, err := h.service.Update(r.Context(), user, upd)
	if err != nil {
		log.Error("failed to update user", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		switch {
		case errors.Is(err, usersvc.ErrEmailTaken):
			render.JSON(w, r, response.Error("email already taken"))
		case errors.Is(err, usersvc.ErrValidation):
			render.JSON(w, r, response.Error(err.Error()))
		default:
			render.JSON(w, r, response.Error("failed to update user"))
		}
		return
	}

	log.Info("user updated", slog.String("id", updated.ID.Hex()))
	render.JSON(w, r, updated.Public())
}
