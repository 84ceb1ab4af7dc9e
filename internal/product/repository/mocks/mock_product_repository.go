package mocks

import (
	"context"

	"github.com/ridloal/e-commerce-checkout/internal/platform/database"
	pDomain "github.com/ridloal/e-commerce-checkout/internal/product/domain"

	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) CreateProduct(ctx context.Context, p *pDomain.Product) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil && p != nil && p.ID == 0 {
		p.ID = 1
	}
	return args.Error(0)
}

func (m *MockProductRepository) ListProducts(ctx context.Context) ([]pDomain.Product, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id int64) (*pDomain.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) UpdateProduct(ctx context.Context, id int64, req pDomain.UpdateProductRequest) (*pDomain.Product, error) {
	args := m.Called(ctx, id, req)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ListLowStock(ctx context.Context, threshold int) ([]pDomain.Product, error) {
	args := m.Called(ctx, threshold)
	if res := args.Get(0); res != nil {
		return res.([]pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) GetProductForUpdate(ctx context.Context, tx database.Queryer, id int64) (*pDomain.Product, error) {
	args := m.Called(ctx, tx, id)
	if res := args.Get(0); res != nil {
		return res.(*pDomain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) DecreaseStock(ctx context.Context, tx database.Queryer, id int64, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}
