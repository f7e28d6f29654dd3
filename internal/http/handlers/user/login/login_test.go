package login_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/login"
	"github.com/magabrotheeeer/account-service/internal/models"
	usersvc "github.com/magabrotheeeer/account-service/internal/services/user"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	args := m.Called(ctx, email, rawPassword)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestHandler_ServeHTTP(t *testing.T) {
	id := primitive.NewObjectID()
	knownUser := &models.User{ID: id, Name: "tester", Email: "tester@example.com"}

	tests := []struct {
		name       string
		body       string
		setupMock  func(m *ServiceMock)
		wantStatus int
		wantToken  string
	}{
		{
			name: "successful login",
			body: `{"email":"tester@example.com","password":"redpanda7"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "tester@example.com", "redpanda7").
					Return(knownUser, "session-token", nil).Once()
			},
			wantStatus: http.StatusOK,
			wantToken:  "session-token",
		},
		{
			name: "wrong credentials",
			body: `{"email":"tester@example.com","password":"wrong-pass7"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Login", mock.Anything, "tester@example.com", "wrong-pass7").
					Return(nil, "", usersvc.ErrInvalidCredentials).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			body:       `{"email":`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing password",
			body:       `{"email":"tester@example.com"}`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := login.New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantStatus == http.StatusOK {
				var resp struct {
					User struct {
						ID string `json:"id"`
					} `json:"user"`
					Token string `json:"token"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantToken, resp.Token)
				assert.Equal(t, id.Hex(), resp.User.ID)
			} else {
				// Неудачный вход не объясняется: тело пустое.
				assert.Empty(t, rr.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}
