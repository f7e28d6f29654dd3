package logout_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/logout"
	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Logout(ctx context.Context, user *models.User, token string) error {
	args := m.Called(ctx, user, token)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(user *models.User, token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	ctx := req.Context()
	if user != nil {
		ctx = context.WithValue(ctx, middlewarectx.UserKey, user)
	}
	if token != "" {
		ctx = context.WithValue(ctx, middlewarectx.TokenKey, token)
	}
	return req.WithContext(ctx)
}

func TestHandler_ServeHTTP(t *testing.T) {
	id := primitive.NewObjectID()
	currentUser := &models.User{ID: id, Tokens: []models.SessionToken{{Token: "current-session"}}}

	t.Run("closes the presented session", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Logout", mock.Anything, currentUser, "current-session").Return(nil).Once()
		handler := logout.New(newNoopLogger(), svc)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, newRequest(currentUser, "current-session"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Logout", mock.Anything, currentUser, "current-session").
			Return(errors.New("storage down")).Once()
		handler := logout.New(newNoopLogger(), svc)

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, newRequest(currentUser, "current-session"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("no user in context", func(t *testing.T) {
		handler := logout.New(newNoopLogger(), new(ServiceMock))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, newRequest(nil, "current-session"))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
