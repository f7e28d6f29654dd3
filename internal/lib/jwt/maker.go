// Package jwt реализует выпуск и разбор токенов сессий.
//
// Maker определяет интерфейс для создания и проверки JWT с идентификатором
// пользователя в качестве subject. MakerImpl — конкретная реализация с
// использованием секретного ключа и срока жизни токена.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для выпуска и разбора токенов сессий.
//
// GenerateToken выпускает токен для пользователя с указанным идентификатором,
// ParseToken разбирает токен и извлекает из него claims.
type Maker interface {
	GenerateToken(userID string) (string, error)
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
