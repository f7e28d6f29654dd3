package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims описывает данные, хранящиеся в токене сессии.
// Subject — hex-идентификатор пользователя, ID — уникальный
// идентификатор конкретной сессии.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken создает JWT для пользователя с указанным идентификатором,
// подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL. Каждый выпущенный токен
// получает собственный jti, поэтому два входа одного пользователя дают
// разные строки токенов.
func (j *MakerImpl) GenerateToken(userID string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT, проверяет его подпись и срок действия,
// возвращает Claims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
