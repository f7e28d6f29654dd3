// Package mongo реализует хранилище пользователей поверх MongoDB.
//
// Каждый пользователь — отдельный документ коллекции users; список
// активных сессий и аватар хранятся внутри документа. Уникальность
// электронной почты обеспечивается уникальным индексом коллекции.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollectionName — имя коллекции с документами пользователей.
const UsersCollectionName = "users"

// ErrNotFound возвращается, когда пользователь с указанным
// идентификатором или почтой отсутствует в коллекции.
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken возвращается при нарушении уникального индекса почты.
var ErrEmailTaken = errors.New("email already taken")

// Storage инкапсулирует подключение к MongoDB и коллекцию пользователей.
type Storage struct {
	client *mongo.Client
	users  *mongo.Collection
}

// New подключается к MongoDB по строке подключения, проверяет доступность
// сервера и создает уникальный индекс по полю email.
func New(ctx context.Context, connectionString, dbName string) (*Storage, error) {
	const op = "storage.mongo.New"

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := client.Database(dbName).Collection(UsersCollectionName)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := users.Indexes().CreateOne(ctx, indexModel); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{client: client, users: users}, nil
}

// Close разрывает подключение к MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	const op = "storage.mongo.Close"
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
