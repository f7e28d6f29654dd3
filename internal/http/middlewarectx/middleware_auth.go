// Package middlewarectx содержит HTTP middleware сервиса аккаунтов.
//
// AuthMiddleware проверяет токен сессии из заголовка Authorization,
// находит его владельца и кладёт пользователя вместе с исходной строкой
// токена в контекст запроса для дальнейшего использования в обработчиках.
//
// Любая ошибка проверки даёт HTTP 401 с пустым телом: причину отказа
// клиенту не сообщаем.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserKey — ключ для пользователя в контексте
	UserKey Key = "user"
	// TokenKey — ключ для строки токена текущей сессии в контексте
	TokenKey Key = "token"
)

// Service описывает контракт проверки токена сессии.
type Service interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware возвращает HTTP middleware, которое проверяет токен сессии
// в заголовке Authorization.
//
// Если токен валиден и всё ещё числится среди активных сессий владельца,
// пользователь и токен добавляются в контекст запроса; иначе запрос
// обрывается с кодом 401 без тела.
func AuthMiddleware(service Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := service.Authenticate(r.Context(), tokenStr)
			if err != nil {
				log.Error("failed to authenticate request", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, TokenKey, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext достаёт аутентифицированного пользователя из контекста.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok
}

// TokenFromContext достаёт строку токена текущей сессии из контекста.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
