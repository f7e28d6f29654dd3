package register_test

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

	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/register"
	"github.com/magabrotheeeer/account-service/internal/models"
	usersvc "github.com/magabrotheeeer/account-service/internal/services/user"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, name, email, rawPassword string, age int) (*models.User, string, error) {
	args := m.Called(ctx, name, email, rawPassword, age)
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
	createdUser := &models.User{ID: id, Name: "tester", Email: "tester@example.com", Age: 30}

	tests := []struct {
		name       string
		body       string
		setupMock  func(m *ServiceMock)
		wantStatus int
		wantError  string
		wantToken  string
	}{
		{
			name: "successful registration",
			body: `{"name":"tester","email":"tester@example.com","password":"redpanda7","age":30}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, "tester", "tester@example.com", "redpanda7", 30).
					Return(createdUser, "session-token", nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantToken:  "session-token",
		},
		{
			name:       "invalid json",
			body:       `{"name":`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "missing email",
			body:       `{"name":"tester","password":"redpanda7"}`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "field Email is a required field",
		},
		{
			name:       "malformed email",
			body:       `{"name":"tester","email":"not-an-email","password":"redpanda7"}`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "field Email must be a valid email address",
		},
		{
			name:       "password shorter than seven characters",
			body:       `{"name":"tester","email":"tester@example.com","password":"short"}`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "email already taken",
			body: `{"name":"tester","email":"taken@example.com","password":"redpanda7"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Register", mock.Anything, "tester", "taken@example.com", "redpanda7", 0).
					Return(nil, "", usersvc.ErrEmailTaken).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "email already taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := register.New(newNoopLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantToken != "" {
				var resp struct {
					User struct {
						ID    string `json:"id"`
						Name  string `json:"name"`
						Email string `json:"email"`
						Age   int    `json:"age"`
					} `json:"user"`
					Token string `json:"token"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantToken, resp.Token)
				assert.Equal(t, id.Hex(), resp.User.ID)
				assert.Equal(t, "tester", resp.User.Name)
				// Хэш пароля и токены сессий наружу не уходят.
				assert.NotContains(t, rr.Body.String(), "password")
				assert.NotContains(t, rr.Body.String(), "tokens")
			}
			if tt.wantError != "" {
				var resp struct {
					Error string `json:"error"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Contains(t, resp.Error, tt.wantError)
			}
			svc.AssertExpectations(t)
		})
	}
}
