package mocks

import (
	"context"

	"github.com/ridloal/e-commerce-checkout/internal/platform/database"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(database.DBTX), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseRepository) CreatePurchase(ctx context.Context, tx database.Queryer, p *domain.Purchase) error {
	args := m.Called(ctx, tx, p)
	if args.Error(0) == nil && p.ID == 0 {
		p.ID = 100
	}
	return args.Error(0)
}

func (m *MockPurchaseRepository) CreatePurchaseItem(ctx context.Context, tx database.Queryer, item *domain.PurchaseItem) error {
	return m.Called(ctx, tx, item).Error(0)
}

func (m *MockPurchaseRepository) UpdatePurchaseTotal(ctx context.Context, tx database.Queryer, purchaseID int64, total decimal.Decimal) error {
	return m.Called(ctx, tx, purchaseID, total).Error(0)
}

func (m *MockPurchaseRepository) GetPurchaseByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Purchase), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseRepository) ListPurchasesByClient(ctx context.Context, clientID int64) ([]domain.Purchase, error) {
	args := m.Called(ctx, clientID)
	if p := args.Get(0); p != nil {
		return p.([]domain.Purchase), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseRepository) ListAllPurchases(ctx context.Context) ([]domain.Purchase, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]domain.Purchase), args.Error(1)
	}
	return nil, args.Error(1)
}
