package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/e-commerce-checkout/internal/platform/apperr"
	"github.com/ridloal/e-commerce-checkout/internal/platform/database"
	"github.com/ridloal/e-commerce-checkout/internal/platform/logger"
	productRepo "github.com/ridloal/e-commerce-checkout/internal/product/repository"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/domain"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/repository"
	userDomain "github.com/ridloal/e-commerce-checkout/internal/user/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNotClient         = apperr.New(apperr.ErrForbidden, "only clients can purchase")
	ErrEmptyCart         = apperr.New(apperr.ErrInvalidInput, "items must not be empty")
	ErrInvalidItem       = apperr.New(apperr.ErrInvalidInput, "each item needs a productId and a positive quantity")
	ErrProductNotFound   = apperr.New(apperr.ErrNotFound, "product not found")
	ErrInsufficientStock = apperr.New(apperr.ErrInsufficientStock, "insufficient stock")
	ErrInvoiceForbidden  = apperr.New(apperr.ErrForbidden, "not authorized to view this purchase")
)

// Checkout outcome labels.
const (
	OutcomeSuccess           = "success"
	OutcomeForbidden         = "forbidden"
	OutcomeUnauthorized      = "unauthorized"
	OutcomeInvalid           = "invalid"
	OutcomeProductNotFound   = "product_not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeError             = "error"
)

// CheckoutRecorder counts checkout attempts by outcome.
type CheckoutRecorder interface {
	ObserveCheckout(outcome string)
}

type PurchaseService interface {
	Checkout(ctx context.Context, principal userDomain.Principal, req domain.CheckoutRequest) (*domain.Purchase, error)
	GetInvoice(ctx context.Context, purchaseID int64, principal userDomain.Principal) (*domain.Purchase, error)
	ListMine(ctx context.Context, clientID int64) ([]domain.Purchase, error)
	ListAll(ctx context.Context) ([]domain.Purchase, error)
}

type purchaseServiceImpl struct {
	repo        repository.PurchaseRepository
	products    productRepo.ProductRepository
	numbers     InvoiceNumbers
	recorder    CheckoutRecorder
	maxAttempts int
	now         func() time.Time
}

func NewPurchaseService(repo repository.PurchaseRepository, products productRepo.ProductRepository, numbers InvoiceNumbers, recorder CheckoutRecorder, maxAttempts int) PurchaseService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &purchaseServiceImpl{
		repo:        repo,
		products:    products,
		numbers:     numbers,
		recorder:    recorder,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (s *purchaseServiceImpl) observe(outcome string) {
	if s.recorder != nil {
		s.recorder.ObserveCheckout(outcome)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrProductNotFound):
		return OutcomeProductNotFound
	case errors.Is(err, apperr.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, apperr.ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, apperr.ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, apperr.ErrInvalidInput):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// Checkout turns the requested items into a purchase. The role is checked here as
// well as at the HTTP gate so no other entry point can skip it.
func (s *purchaseServiceImpl) Checkout(ctx context.Context, principal userDomain.Principal, req domain.CheckoutRequest) (*domain.Purchase, error) {
	committed, err := s.checkout(ctx, principal, req.Items)
	s.observe(outcomeOf(err))
	if err != nil {
		return nil, err
	}

	logger.Info("Checkout: purchase committed", zap.Int64("purchase_id", committed.ID), zap.Int64("client_id", principal.UserID))
	invoice, err := s.repo.GetPurchaseByID(ctx, committed.ID)
	if err != nil {
		// Already committed: report it even when the reload fails.
		logger.Warn("Checkout: reload after commit failed, returning committed purchase",
			zap.Int64("purchase_id", committed.ID), zap.Error(err))
		return committed, nil
	}
	return invoice, nil
}

func (s *purchaseServiceImpl) checkout(ctx context.Context, principal userDomain.Principal, items []domain.CheckoutItem) (*domain.Purchase, error) {
	if principal.Role != userDomain.RoleClient {
		return nil, ErrNotClient
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range items {
		if item.ProductID <= 0 || item.Quantity <= 0 {
			return nil, ErrInvalidItem
		}
	}

	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var purchase *domain.Purchase
		purchase, err = s.checkoutOnce(ctx, principal.UserID, items)
		if err == nil {
			return purchase, nil
		}
		if !database.IsRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
		logger.Warn("Checkout: transient store conflict, retrying",
			zap.Int("attempt", attempt), zap.Int64("client_id", principal.UserID), zap.Error(err))
	}
	return nil, err
}

// checkoutOnce runs one all-or-nothing attempt. Every statement goes through tx; any
// early return rolls back the purchase header, its items and all stock changes.
func (s *purchaseServiceImpl) checkoutOnce(ctx context.Context, clientID int64, items []domain.CheckoutItem) (*domain.Purchase, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	purchase := &domain.Purchase{
		ClientID:      clientID,
		InvoiceNumber: s.numbers.Next(),
		PurchasedAt:   s.now().UTC(),
		Total:         decimal.Zero,
	}
	if err := s.repo.CreatePurchase(ctx, tx, purchase); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range items {
		product, err := s.products.GetProductForUpdate(ctx, tx, item.ProductID)
		if err != nil {
			if errors.Is(err, productRepo.ErrProductNotFound) {
				return nil, fmt.Errorf("product %d: %w", item.ProductID, ErrProductNotFound)
			}
			return nil, err
		}
		if product.AvailableQuantity < item.Quantity {
			return nil, fmt.Errorf("%s (product %d): requested %d, available %d: %w",
				product.Name, product.ID, item.Quantity, product.AvailableQuantity, ErrInsufficientStock)
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)

		productID := product.ID
		line := &domain.PurchaseItem{
			PurchaseID: purchase.ID,
			ProductID:  &productID,
			Quantity:   item.Quantity,
			UnitPrice:  product.Price,
			Subtotal:   subtotal,
			Product: &domain.ProductSummary{
				ID:    product.ID,
				Batch: product.Batch,
				Name:  product.Name,
				Price: product.Price,
			},
		}
		if err := s.repo.CreatePurchaseItem(ctx, tx, line); err != nil {
			return nil, err
		}
		purchase.Items = append(purchase.Items, *line)

		if err := s.products.DecreaseStock(ctx, tx, product.ID, item.Quantity); err != nil {
			if errors.Is(err, productRepo.ErrInsufficientStock) {
				return nil, fmt.Errorf("%s (product %d): %w", product.Name, product.ID, ErrInsufficientStock)
			}
			return nil, err
		}
	}

	if err := s.repo.UpdatePurchaseTotal(ctx, tx, purchase.ID, total); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		logger.Error("Checkout: failed to commit transaction", err, zap.Int64("purchase_id", purchase.ID))
		return nil, err
	}
	purchase.Total = total
	return purchase, nil
}

func (s *purchaseServiceImpl) GetInvoice(ctx context.Context, purchaseID int64, principal userDomain.Principal) (*domain.Purchase, error) {
	purchase, err := s.repo.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && purchase.ClientID != principal.UserID {
		return nil, ErrInvoiceForbidden
	}
	return purchase, nil
}

func (s *purchaseServiceImpl) ListMine(ctx context.Context, clientID int64) ([]domain.Purchase, error) {
	return s.repo.ListPurchasesByClient(ctx, clientID)
}

func (s *purchaseServiceImpl) ListAll(ctx context.Context) ([]domain.Purchase, error) {
	return s.repo.ListAllPurchases(ctx)
}
