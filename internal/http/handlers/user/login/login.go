// Package login реализует HTTP-обработчик входа пользователей.
//
// Обработчик принимает почту и пароль, делегирует проверку учётных данных
// бизнес-логике и при успехе возвращает пользователя и токен новой сессии.
// Любая ошибка проверки даёт 400 с пустым телом: какая именно проверка
// не прошла, клиенту не сообщается.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Request — структура входных данных для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Handler обрабатывает HTTP-запросы на вход.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Бизнес-логика проверки учётных данных
	validate *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	Login(ctx context.Context, email, rawPassword string) (*models.User, string, error)
}

// New создает новый экземпляр Handler с указанными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет почту и пароль, выпускает токен новой сессии.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.AuthResponse "Успешный вход"
// @Failure 400 {string} string "Пустое тело: детали отказа не раскрываются"
// @Router /users/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	log.Info("login success", slog.String("id", user.ID.Hex()))
	render.JSON(w, r, response.Auth(user, token))
}
