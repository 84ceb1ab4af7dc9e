package mocks

import (
	"context"

	"github.com/ridloal/e-commerce-checkout/internal/purchase/domain"
	userDomain "github.com/ridloal/e-commerce-checkout/internal/user/domain"
	"github.com/stretchr/testify/mock"
)

type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Checkout(ctx context.Context, principal userDomain.Principal, req domain.CheckoutRequest) (*domain.Purchase, error) {
	args := m.Called(ctx, principal, req)
	if p := args.Get(0); p != nil {
		return p.(*domain.Purchase), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseService) GetInvoice(ctx context.Context, purchaseID int64, principal userDomain.Principal) (*domain.Purchase, error) {
	args := m.Called(ctx, purchaseID, principal)
	if p := args.Get(0); p != nil {
		return p.(*domain.Purchase), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseService) ListMine(ctx context.Context, clientID int64) ([]domain.Purchase, error) {
	args := m.Called(ctx, clientID)
	if p := args.Get(0); p != nil {
		return p.([]domain.Purchase), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseService) ListAll(ctx context.Context) ([]domain.Purchase, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]domain.Purchase), args.Error(1)
	}
	return nil, args.Error(1)
}
