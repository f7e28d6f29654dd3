package update_test

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

	"github.com/magabrotheeeer/account-service/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/account-service/internal/models"
	usersvc "github.com/magabrotheeeer/account-service/internal/services/user"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Update(ctx context.Context, user *models.User, upd usersvc.Updates) (*models.User, error) {
	args := m.Called(ctx, user, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(body string, user *models.User) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/users/me", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		ctx := context.WithValue(req.Context(), middlewarectx.UserKey, user)
		req = req.WithContext(ctx)
	}
	return req
}

func TestHandler_ServeHTTP(t *testing.T) {
	id := primitive.NewObjectID()
	currentUser := &models.User{ID: id, Name: "tester", Email: "tester@example.com", Age: 30}

	strPtr := func(s string) *string { return &s }
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name       string
		body       string
		setupMock  func(m *ServiceMock)
		wantStatus int
		wantError  string
	}{
		{
			name: "updates allowed fields",
			body: `{"name":"renamed","age":31}`,
			setupMock: func(m *ServiceMock) {
				m.On("Update", mock.Anything, currentUser, usersvc.Updates{
					Name: strPtr("renamed"),
					Age:  intPtr(31),
				}).Return(&models.User{ID: id, Name: "renamed", Email: "tester@example.com", Age: 31}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "forbidden key rejects whole request",
			body:       `{"name":"renamed","location":"Berlin"}`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid Updates!",
		},
		{
			name:       "unknown key alone",
			body:       `{"foo":"bar"}`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid Updates!",
		},
		{
			name:       "invalid json",
			body:       `{"name":`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name: "duplicate email",
			body: `{"email":"taken@example.com"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Update", mock.Anything, currentUser, usersvc.Updates{
					Email: strPtr("taken@example.com"),
				}).Return(nil, usersvc.ErrEmailTaken).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "email already taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := update.New(newNoopLogger(), svc)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, newRequest(tt.body, currentUser))

			assert.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Name string `json:"name"`
					Age  int    `json:"age"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "renamed", resp.Name)
				assert.Equal(t, 31, resp.Age)
			}
			if tt.wantError != "" {
				var resp struct {
					Error string `json:"error"`
				}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantError, resp.Error)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ServeHTTP_NoUserInContext(t *testing.T) {
	handler := update.New(newNoopLogger(), new(ServiceMock))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newRequest(`{"name":"renamed"}`, nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, rr.Body.String())
}
