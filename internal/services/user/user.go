// Package user содержит логику бизнес-уровня для работы с учётными записями:
// регистрация, вход, проверка токена сессии, обновление и удаление профиля,
// управление сессиями и аватаром.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/account-service/internal/lib/jwt"
	"github.com/magabrotheeeer/account-service/internal/lib/password"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
	"github.com/magabrotheeeer/account-service/internal/storage/mongo"
)

// Ошибки бизнес-уровня. Обработчики сопоставляют их с HTTP-статусами
// через errors.Is, не разбирая текст.
var (
	// ErrInvalidCredentials — неизвестная почта или неверный пароль.
	// Какая именно проверка не прошла, наружу не сообщается.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated — токен не прошёл проверку подписи, истёк,
	// либо уже не числится среди активных сессий пользователя.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrEmailTaken — почта уже занята другим пользователем.
	ErrEmailTaken = errors.New("email already taken")
	// ErrValidation — данные не прошли проверку предметных правил.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound — пользователь не найден.
	ErrNotFound = errors.New("user not found")
	// ErrNoAvatar — у пользователя не задан аватар.
	ErrNoAvatar = errors.New("avatar not set")
)

// avatarCacheTTL — время жизни байтов аватара в кэше.
const avatarCacheTTL = 10 * time.Minute

// Repository описывает контракт для работы с пользователями в хранилище.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
}

// Transcoder нормализует загруженное изображение в PNG фиксированного размера.
type Transcoder interface {
	Transcode(data []byte) ([]byte, error)
}

// AvatarCache кэширует байты аватаров для публичной раздачи.
type AvatarCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service отвечает за жизненный цикл учётной записи и её сессий.
type Service struct {
	log        *slog.Logger
	users      Repository
	jwtMaker   jwt.Maker
	transcoder Transcoder
	cache      AvatarCache // может быть nil, тогда кэширование выключено
	validate   *validator.Validate
}

// New создает новый экземпляр Service.
func New(log *slog.Logger, users Repository, jwtMaker jwt.Maker, transcoder Transcoder, cache AvatarCache) *Service {
	return &Service{
		log:        log,
		users:      users,
		jwtMaker:   jwtMaker,
		transcoder: transcoder,
		cache:      cache,
		validate:   validator.New(),
	}
}

// userState — проверяемое состояние учётной записи перед каждой записью
// в хранилище. Правила едины для регистрации и обновления.
type userState struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
	Age   int    `validate:"gte=0"`
}

// validateUser проверяет итоговое состояние пользователя перед сохранением.
func (s *Service) validateUser(u *models.User) error {
	state := userState{Name: u.Name, Email: u.Email, Age: u.Age}
	if err := s.validate.Struct(state); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	return nil
}

// NormalizeEmail приводит почту к каноническому для хранилища виду:
// без пробелов по краям и в нижнем регистре.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает нового пользователя, хэширует пароль и выпускает
// первый токен сессии. Возвращает сохранённого пользователя и токен.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string, age int) (*models.User, string, error) {
	const op = "services.user.Register"

	if err := password.Check(rawPassword); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: hashed,
		Age:          age,
		Tokens:       []models.SessionToken{},
	}
	if err := s.validateUser(user); err != nil {
		return nil, "", err
	}

	id, err := s.users.CreateUser(ctx, *user)
	if err != nil {
		if errors.Is(err, mongo.ErrEmailTaken) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.issueToken(ctx, created)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return created, token, nil
}

// Login проверяет пароль пользователя и выпускает новый токен сессии.
// Неизвестная почта и неверный пароль дают одну и ту же ошибку.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "services.user.Login"

	user, err := s.users.FindUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// issueToken выпускает токен, добавляет его в список сессий и сохраняет документ.
func (s *Service) issueToken(ctx context.Context, user *models.User) (string, error) {
	token, err := s.jwtMaker.GenerateToken(user.ID.Hex())
	if err != nil {
		return "", err
	}
	user.Tokens = append(user.Tokens, models.SessionToken{Token: token})
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate разбирает токен, находит его владельца и убеждается,
// что токен всё ещё числится среди активных сессий.
func (s *Service) Authenticate(ctx context.Context, tokenStr string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(tokenStr)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.users.FindUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if !user.HasToken(tokenStr) {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// Updates — частичное обновление профиля. Нулевой указатель означает,
// что поле не меняется.
type Updates struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// Update применяет изменения к пользователю, заново проверяет итоговое
// состояние и сохраняет документ. Частичное применение исключено:
// при любой ошибке документ в хранилище не меняется.
func (s *Service) Update(ctx context.Context, user *models.User, upd Updates) (*models.User, error) {
	const op = "services.user.Update"

	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Email != nil {
		user.Email = NormalizeEmail(*upd.Email)
	}
	if upd.Age != nil {
		user.Age = *upd.Age
	}
	if upd.Password != nil {
		if err := password.Check(*upd.Password); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
		hashed, err := password.GetHash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = hashed
	}

	if err := s.validateUser(user); err != nil {
		return nil, err
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, mongo.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Remove удаляет учётную запись целиком вместе с сессиями и аватаром.
func (s *Service) Remove(ctx context.Context, user *models.User) error {
	const op = "services.user.Remove"

	if err := s.users.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateAvatar(ctx, user.ID.Hex())
	return nil
}

// Logout завершает ровно ту сессию, токен которой предъявлен в запросе.
// Остальные сессии пользователя продолжают действовать.
func (s *Service) Logout(ctx context.Context, user *models.User, token string) error {
	const op = "services.user.Logout"

	remaining := make([]models.SessionToken, 0, len(user.Tokens))
	for _, t := range user.Tokens {
		if t.Token != token {
			remaining = append(remaining, t)
		}
	}
	user.Tokens = remaining

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// LogoutAll завершает все сессии пользователя разом.
func (s *Service) LogoutAll(ctx context.Context, user *models.User) error {
	const op = "services.user.LogoutAll"

	user.Tokens = []models.SessionToken{}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetAvatar прогоняет загруженный буфер через транскодер и сохраняет
// результат в документе пользователя.
func (s *Service) SetAvatar(ctx context.Context, user *models.User, data []byte) error {
	const op = "services.user.SetAvatar"

	transcoded, err := s.transcoder.Transcode(data)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, "unsupported image data")
	}
	user.Avatar = transcoded
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateAvatar(ctx, user.ID.Hex())
	return nil
}

// RemoveAvatar очищает поле аватара и сохраняет документ.
func (s *Service) RemoveAvatar(ctx context.Context, user *models.User) error {
	const op = "services.user.RemoveAvatar"

	user.Avatar = nil
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateAvatar(ctx, user.ID.Hex())
	return nil
}

// Avatar возвращает байты аватара по идентификатору пользователя.
// Отсутствие пользователя и отсутствие аватара отдаются разными
// ошибками, но обе отображаются обработчиком в один и тот же 404.
func (s *Service) Avatar(ctx context.Context, id string) ([]byte, error) {
	const op = "services.user.Avatar"

	key := avatarCacheKey(id)
	if s.cache != nil {
		var data []byte
		found, err := s.cache.Get(ctx, key, &data)
		if err != nil {
			s.log.Warn("avatar cache read failed", sl.Err(err))
		}
		if found && len(data) > 0 {
			return data, nil
		}
	}

	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(user.Avatar) == 0 {
		return nil, ErrNoAvatar
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, user.Avatar, avatarCacheTTL); err != nil {
			s.log.Warn("avatar cache write failed", sl.Err(err))
		}
	}
	return user.Avatar, nil
}

func (s *Service) invalidateAvatar(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, avatarCacheKey(id)); err != nil {
		s.log.Warn("avatar cache invalidate failed", sl.Err(err))
	}
}

func avatarCacheKey(id string) string {
	return "avatar:" + id
}
