package service

import (
	"context"
	"time"

	"github.com/ridloal/e-commerce-checkout/internal/platform/apperr"
	"github.com/ridloal/e-commerce-checkout/internal/platform/logger"
	"github.com/ridloal/e-commerce-checkout/internal/product/domain"
	"github.com/ridloal/e-commerce-checkout/internal/product/repository"
	"go.uber.org/zap"
)

var (
	ErrNegativePrice    = apperr.New(apperr.ErrInvalidInput, "price must not be negative")
	ErrNegativeQuantity = apperr.New(apperr.ErrInvalidInput, "available_quantity must not be negative")
	ErrEmptyUpdate      = apperr.New(apperr.ErrInvalidInput, "no fields to update")
)

type ProductService interface {
	CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductDetails(ctx context.Context, productID int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, productID int64, req domain.UpdateProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID int64) error
}

type productServiceImpl struct {
	repo repository.ProductRepository
	now  func() time.Time
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productServiceImpl{repo: repo, now: time.Now}
}

func validate(p *domain.Product) error {
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.AvailableQuantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

func validateUpdate(req domain.UpdateProductRequest) error {
	if req.Price != nil && req.Price.IsNegative() {
		return ErrNegativePrice
	}
	if req.AvailableQuantity != nil && *req.AvailableQuantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	p := &domain.Product{
		Batch:             req.Batch,
		Name:              req.Name,
		Price:             req.Price,
		AvailableQuantity: req.AvailableQuantity,
		IntakeDate:        s.now().UTC(),
	}
	if req.IntakeDate != nil {
		p.IntakeDate = req.IntakeDate.UTC()
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	logger.Info("CreateProduct: product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *productServiceImpl) GetProductDetails(ctx context.Context, productID int64) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, productID)
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, productID int64, req domain.UpdateProductRequest) (*domain.Product, error) {
	if req.Empty() {
		return nil, ErrEmptyUpdate
	}
	if err := validateUpdate(req); err != nil {
		return nil, err
	}
	return s.repo.UpdateProduct(ctx, productID, req)
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, productID int64) error {
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	logger.Info("DeleteProduct: product deleted", zap.Int64("product_id", productID))
	return nil
}
