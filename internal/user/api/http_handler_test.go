package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/e-commerce-checkout/internal/user/domain"
	"github.com/ridloal/e-commerce-checkout/internal/user/service"
	"github.com/ridloal/e-commerce-checkout/internal/user/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(svc service.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewUserHandler(svc).RegisterRoutes(&router.RouterGroup)
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUserHandler_Register(t *testing.T) {
	mockService := new(mocks.MockUserService)
	router := setupRouter(mockService)

	t.Run("Success", func(t *testing.T) {
		mockService.On("Register", mock.Anything, mock.MatchedBy(func(r domain.RegisterRequest) bool {
			return r.Username == "cliente1"
		})).Return(&domain.User{ID: 5, Username: "cliente1", Role: domain.RoleClient, PasswordHash: "secret"}, nil).Once()

		w := post(router, "/auth/register", `{"username":"cliente1","email":"c1@mail.com","password":"123456"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "User registered", body["msg"])
		mockService.AssertExpectations(t)
	})

	t.Run("Short password", func(t *testing.T) {
		w := post(router, "/auth/register", `{"username":"cliente1","email":"c1@mail.com","password":"123"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Duplicate username", func(t *testing.T) {
		mockService.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrUserAlreadyExists).Once()

		w := post(router, "/auth/register", `{"username":"cliente1","email":"c1@mail.com","password":"123456"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Unexpected error is hidden", func(t *testing.T) {
		mockService.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection refused")).Once()

		w := post(router, "/auth/register", `{"username":"cliente1","email":"c1@mail.com","password":"123456"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
		mockService.AssertExpectations(t)
	})
}

func TestUserHandler_Login(t *testing.T) {
	mockService := new(mocks.MockUserService)
	router := setupRouter(mockService)

	t.Run("Success", func(t *testing.T) {
		mockService.On("Login", mock.Anything, domain.LoginRequest{Username: "admin", Password: "admin123"}).
			Return(&domain.LoginResponse{Token: "jwt"}, nil).Once()

		w := post(router, "/auth/login", `{"username":"admin","password":"admin123"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"token":"jwt"}`, w.Body.String())
	})

	t.Run("Invalid credentials", func(t *testing.T) {
		mockService.On("Login", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidCredentials).Once()

		w := post(router, "/auth/login", `{"username":"admin","password":"nope"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing fields", func(t *testing.T) {
		w := post(router, "/auth/login", `{"username":"admin"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
