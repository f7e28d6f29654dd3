package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/magabrotheeeer/account-service/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает его идентификатор.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.mongo.CreateUser"

	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("%s: unexpected inserted id type %T", op, res.InsertedID)
	}
	return id.Hex(), nil
}

// FindUserByID возвращает пользователя по hex-идентификатору документа.
func (s *Storage) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.mongo.FindUserByID"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// FindUserByEmail возвращает пользователя по электронной почте.
// Ожидается почта, уже приведённая к нижнему регистру.
func (s *Storage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongo.FindUserByEmail"

	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// UpdateUser полностью заменяет документ пользователя.
// Замена идёт по принципу last-write-wins, без проверки версий:
// согласованность на уровне отдельного документа обеспечивает сама MongoDB.
func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	const op = "storage.mongo.UpdateUser"

	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteUser удаляет документ пользователя целиком.
func (s *Storage) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	const op = "storage.mongo.DeleteUser"

	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
