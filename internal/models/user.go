// Package models содержит доменную модель пользователя сервиса аккаунтов:
// данные учётной записи, хэш пароля, аватар и список активных сессий.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// SessionToken — одна активная сессия пользователя.
// Каждый успешный вход добавляет новую запись в список Tokens.
type SessionToken struct {
	Token string `bson:"token"`
}

// User представляет документ пользователя в хранилище.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`    // Уникальный идентификатор документа
	Name         string             `bson:"name"`             // Имя пользователя
	Email        string             `bson:"email"`            // Электронная почта (уникальная, в нижнем регистре)
	PasswordHash string             `bson:"password_hash"`    // bcrypt-хэш пароля
	Age          int                `bson:"age"`              // Возраст, неотрицательный, по умолчанию 0
	Avatar       []byte             `bson:"avatar,omitempty"` // PNG 250x250, задаётся отдельной операцией
	Tokens       []SessionToken     `bson:"tokens"`           // Активные сессии
}

// PublicUser — клиентское представление пользователя.
// Пароль, список токенов и аватар наружу не отдаются.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

// Public возвращает представление пользователя для выдачи клиенту.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Age:   u.Age,
	}
}

// HasToken сообщает, числится ли токен среди активных сессий пользователя.
// Сравнение строгое, по полному совпадению строки.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t.Token == token {
			return true
		}
	}
	return false
}
