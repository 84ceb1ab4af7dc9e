package api

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/e-commerce-checkout/internal/platform/auth"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/domain"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/repository"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/service"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/service/mocks"
	userDomain "github.com/ridloal/e-commerce-checkout/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	clientPrincipal = userDomain.Principal{UserID: 7, Role: userDomain.RoleClient}
	adminPrincipal  = userDomain.Principal{UserID: 1, Role: userDomain.RoleAdmin}
)

func setup(t *testing.T) (*gin.Engine, *mocks.MockPurchaseService, string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	clientToken, err := tokens.Issue(userDomain.User{ID: clientPrincipal.UserID, Role: clientPrincipal.Role})
	require.NoError(t, err)
	adminToken, err := tokens.Issue(userDomain.User{ID: adminPrincipal.UserID, Role: adminPrincipal.Role})
	require.NoError(t, err)

	svc := new(mocks.MockPurchaseService)
	router := gin.New()
	NewPurchaseHandler(svc, auth.NewGate(tokens)).RegisterRoutes(&router.RouterGroup)
	return router, svc, clientToken, adminToken
}

func do(router *gin.Engine, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPurchaseHandler_Checkout(t *testing.T) {
	router, svc, clientToken, adminToken := setup(t)
	body := `{"items":[{"productId":1,"cantidad":2},{"productId":2,"cantidad":1}]}`

	t.Run("Client checks out", func(t *testing.T) {
		svc.On("Checkout", mock.Anything, clientPrincipal, domain.CheckoutRequest{Items: []domain.CheckoutItem{
			{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1},
		}}).Return(&domain.Purchase{ID: 10, ClientID: 7}, nil).Once()

		w := do(router, http.MethodPost, "/purchases", clientToken, strings.NewReader(body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":10`)
		svc.AssertExpectations(t)
	})

	t.Run("Admin is refused", func(t *testing.T) {
		w := do(router, http.MethodPost, "/purchases", adminToken, strings.NewReader(body))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("No token", func(t *testing.T) {
		w := do(router, http.MethodPost, "/purchases", "", strings.NewReader(body))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Empty cart", func(t *testing.T) {
		w := do(router, http.MethodPost, "/purchases", clientToken, strings.NewReader(`{"items":[]}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Non-positive quantity", func(t *testing.T) {
		w := do(router, http.MethodPost, "/purchases", clientToken, strings.NewReader(`{"items":[{"productId":1,"cantidad":-1}]}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown product is a bad request", func(t *testing.T) {
		svc.On("Checkout", mock.Anything, clientPrincipal, mock.Anything).
			Return(nil, fmt.Errorf("product 9: %w", service.ErrProductNotFound)).Once()

		w := do(router, http.MethodPost, "/purchases", clientToken, strings.NewReader(`{"items":[{"productId":9,"cantidad":1}]}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"product 9: product not found"}`, w.Body.String())
	})

	t.Run("Insufficient stock", func(t *testing.T) {
		svc.On("Checkout", mock.Anything, clientPrincipal, mock.Anything).
			Return(nil, fmt.Errorf("A (product 1): %w", service.ErrInsufficientStock)).Once()

		w := do(router, http.MethodPost, "/purchases", clientToken, strings.NewReader(body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Token of a deleted account", func(t *testing.T) {
		svc.On("Checkout", mock.Anything, clientPrincipal, mock.Anything).
			Return(nil, repository.ErrUnknownClient).Once()

		w := do(router, http.MethodPost, "/purchases", clientToken, strings.NewReader(body))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPurchaseHandler_Reads(t *testing.T) {
	router, svc, clientToken, adminToken := setup(t)

	t.Run("Own invoice", func(t *testing.T) {
		svc.On("GetInvoice", mock.Anything, int64(10), clientPrincipal).Return(&domain.Purchase{ID: 10, ClientID: 7}, nil).Once()
		w := do(router, http.MethodGet, "/purchases/10", clientToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Someone else's invoice", func(t *testing.T) {
		svc.On("GetInvoice", mock.Anything, int64(11), clientPrincipal).Return(nil, service.ErrInvoiceForbidden).Once()
		w := do(router, http.MethodGet, "/purchases/11", clientToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Missing invoice", func(t *testing.T) {
		svc.On("GetInvoice", mock.Anything, int64(12), adminPrincipal).Return(nil, repository.ErrPurchaseNotFound).Once()
		w := do(router, http.MethodGet, "/purchases/12", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Mine is not captured by :id", func(t *testing.T) {
		svc.On("ListMine", mock.Anything, int64(7)).Return([]domain.Purchase{{ID: 10}}, nil).Once()
		w := do(router, http.MethodGet, "/purchases/mine", clientToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Admin history", func(t *testing.T) {
		svc.On("ListAll", mock.Anything).Return([]domain.Purchase{{ID: 10}, {ID: 11}}, nil).Once()
		w := do(router, http.MethodGet, "/admin/purchases", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Client cannot see admin history", func(t *testing.T) {
		w := do(router, http.MethodGet, "/admin/purchases", clientToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
