// Package response содержит вспомогательные типы и функции для формирования
// JSON‑ответов HTTP‑обработчиков. Клиенту ошибка отдаётся единственным
// полем error; успешные ответы аутентификации несут пользователя и токен.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// ErrorResponse — структура ошибки, возвращаемая клиенту.
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid Updates!"`
}

// AuthResponse — ответ регистрации и входа: публичное представление
// пользователя и токен новой сессии.
type AuthResponse struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// Auth возвращает AuthResponse для пользователя и выпущенного токена.
func Auth(user *models.User, token string) AuthResponse {
	return AuthResponse{
		User:  user.Public(),
		Token: token,
	}
}

// ValidationError формирует ErrorResponse на основе ошибок валидации.
// Каждое нарушение превращается в человеко‑читаемый текст,
// объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email address", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a positive number", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return ErrorResponse{Error: strings.Join(errsMsgs, ", ")}
}
