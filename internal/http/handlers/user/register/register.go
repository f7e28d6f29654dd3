// Package register реализует HTTP-обработчик регистрации пользователей.
//
// В нём определяется структура Request для входных данных, выполняется
// декодирование JSON, проверка и валидация полей, а также делегирование
// операции создания учётной записи бизнес-логике. При успехе возвращается
// JSON с публичным представлением пользователя и токеном первой сессии.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
	usersvc "github.com/magabrotheeeer/account-service/internal/services/user"
)

// Request — входные данные для регистрации.
type Request struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=7"`
	Age      int    `json:"age" validate:"omitempty,gte=0"`
}

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Бизнес-логика создания учётной записи
	validate *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, name, email, rawPassword string, age int) (*models.User, string, error)
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
// @Summary Регистрация пользователя
// @Description Создает учётную запись и выпускает токен первой сессии.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные новой учётной записи"
// @Success 201 {object} response.AuthResponse "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные или занятая почта"
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, token, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		switch {
		case errors.Is(err, usersvc.ErrEmailTaken):
			render.JSON(w, r, response.Error("email already taken"))
		case errors.Is(err, usersvc.ErrValidation):
			render.JSON(w, r, response.Error(err.Error()))
		default:
			render.JSON(w, r, response.Error("failed to register user"))
		}
		return
	}

	log.Info("user registered", slog.String("id", user.ID.Hex()))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.Auth(user, token))
}
