// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// GetHash создает bcrypt-хеш пароля для безопасного хранения.
// CompareHash сравнивает исходный bcrypt-хеш с введённым паролем, проверяя их соответствие.
package password

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// MinLength — минимальная длина пароля.
const MinLength = 7

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш.
//
// Используется для безопасного хранения паролей в базе данных.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе — ошибку.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Check проверяет пароль на соответствие правилам сервиса:
// длина не меньше MinLength и отсутствие подстроки "password"
// без учёта регистра.
func Check(rawPassword string) error {
	if len(rawPassword) < MinLength {
		return fmt.Errorf("password must be at least %d characters", MinLength)
	}
	if strings.Contains(strings.ToLower(rawPassword), "password") {
		return fmt.Errorf("password must not contain the word \"password\"")
	}
	return nil
}
