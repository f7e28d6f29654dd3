// Package upload реализует HTTP-обработчик загрузки аватара.
//
// Файл принимается из multipart-поля "avatar". До обработки проверяются
// ограничение размера и расширение имени файла; принятый буфер проходит
// через транскодер и сохраняется в документе пользователя. Любая ошибка
// на этом конвейере отдаётся клиенту как 400 с текстом причины.
package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/http/response"
	"github.com/magabrotheeeer/account-service/internal/lib/sl"
	"github.com/magabrotheeeer/account-service/internal/models"
	usersvc "github.com/magabrotheeeer/account-service/internal/services/user"
)

// FieldName — имя multipart-поля с файлом аватара.
const FieldName = "avatar"

// allowedExtensions — допустимые окончания имени файла.
// Проверка чувствительна к регистру.
var allowedExtensions = []string{".jpg", ".jpeg", ".png"}

// Handler обрабатывает загрузку аватара текущего пользователя.
type Handler struct {
	log         *slog.Logger
	service     Service
	maxFileSize int64 // Ограничение размера файла в байтах
}

// Service описывает интерфейс бизнес-логики сохранения аватара.
type Service interface {
	SetAvatar(ctx context.Context, user *models.User, data []byte) error
}

// New создает новый Handler. Ограничение размера файла передаётся явно
// из конфигурации приложения.
func New(log *slog.Logger, service Service, maxFileSize int64) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		maxFileSize: maxFileSize,
	}
}

// ServeHTTP godoc
// @Summary Загрузить аватар текущего пользователя
// @Description Принимает multipart-поле "avatar" (jpg, jpeg или png, не больше 1 МБ) и сохраняет его как PNG 250x250.
// @Tags Avatars
// @Accept  mpfd
// @Produce  json
// @Security BearerAuth
// @Success 200 {string} string "Пустое тело"
// @Failure 400 {object} response.ErrorResponse "Файл отклонён или не обработан"
// @Failure 401 {string} string "Пустое тело"
// @Router /users/me/avatar [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.avatar.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	file, header, err := r.FormFile(FieldName)
	if err != nil {
		log.Error("failed to read avatar file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("avatar file is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if header.Size > h.maxFileSize {
		log.Error("avatar file is too large", slog.Int64("size", header.Size))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("File too large"))
		return
	}
	if !hasAllowedExtension(header.Filename) {
		log.Error("avatar file has forbidden extension", slog.String("filename", header.Filename))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("Please upload an image file"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize))
	if err != nil {
		log.Error("failed to read avatar payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read avatar file"))
		return
	}

	if err := h.service.SetAvatar(r.Context(), user, data); err != nil {
		log.Error("failed to set avatar", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		if errors.Is(err, usersvc.ErrValidation) {
			render.JSON(w, r, response.Error("Please upload an image file"))
			return
		}
		render.JSON(w, r, response.Error("failed to process avatar"))
		return
	}

	log.Info("avatar updated", slog.String("id", user.ID.Hex()))
	w.WriteHeader(http.StatusOK)
}

func hasAllowedExtension(filename string) bool {
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}
