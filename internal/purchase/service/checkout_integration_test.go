package service

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/ridloal/e-commerce-checkout/internal/platform/apperr"
	"github.com/ridloal/e-commerce-checkout/internal/platform/database/dbtest"
	pDomain "github.com/ridloal/e-commerce-checkout/internal/product/domain"
	pRepo "github.com/ridloal/e-commerce-checkout/internal/product/repository"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/domain"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/repository"
	userDomain "github.com/ridloal/e-commerce-checkout/internal/user/domain"
	userRepo "github.com/ridloal/e-commerce-checkout/internal/user/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store struct {
	db       *sqlx.DB
	products pRepo.ProductRepository
	svc      PurchaseService
}

func newStore(t *testing.T) *store {
	t.Helper()
	db := dbtest.Open(t)
	products := pRepo.NewSQLProductRepository(db)
	numbers, err := NewInvoiceNumbers(1)
	require.NoError(t, err)
	return &store{
		db:       db,
		products: products,
		svc:      NewPurchaseService(repository.NewSQLPurchaseRepository(db), products, numbers, nil, 3),
	}
}

func (s *store) client(t *testing.T, username string) userDomain.Principal {
	t.Helper()
	u := &userDomain.User{Username: username, Email: username + "@mail.com", PasswordHash: "x", Role: userDomain.RoleClient}
	require.NoError(t, userRepo.NewSQLUserRepository(s.db).CreateUser(context.Background(), u))
	return userDomain.Principal{UserID: u.ID, Role: u.Role}
}

func (s *store) product(t *testing.T, name, price string, qty int) *pDomain.Product {
	t.Helper()
	p := &pDomain.Product{Name: name, Price: decimal.RequireFromString(price), AvailableQuantity: qty}
	require.NoError(t, s.products.CreateProduct(context.Background(), p))
	return p
}

func (s *store) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := s.products.GetProductByID(context.Background(), id)
	require.NoError(t, err)
	return p.AvailableQuantity
}

func (s *store) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func TestCheckoutAgainstSQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("Totals, snapshots and stock", func(t *testing.T) {
		s := newStore(t)
		buyer := s.client(t, "cliente1")
		a := s.product(t, "A", "10", 5)
		b := s.product(t, "B", "5", 3)

		invoice, err := s.svc.Checkout(ctx, buyer, domain.CheckoutRequest{Items: []domain.CheckoutItem{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 1},
		}})

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(25).Equal(invoice.Total), "total %s", invoice.Total)
		assert.Equal(t, buyer.UserID, invoice.ClientID)
		require.NotNil(t, invoice.Client)
		assert.Equal(t, "cliente1", invoice.Client.Username)
		assert.NotEmpty(t, invoice.InvoiceNumber)
		require.Len(t, invoice.Items, 2)
		assert.True(t, decimal.NewFromInt(10).Equal(invoice.Items[0].UnitPrice))
		assert.True(t, decimal.NewFromInt(20).Equal(invoice.Items[0].Subtotal))
		assert.True(t, decimal.NewFromInt(5).Equal(invoice.Items[1].UnitPrice))
		require.NotNil(t, invoice.Items[0].Product)
		assert.Equal(t, "A", invoice.Items[0].Product.Name)
		assert.Equal(t, 3, s.stock(t, a.ID))
		assert.Equal(t, 2, s.stock(t, b.ID))
	})

	t.Run("Insufficient stock leaves nothing behind", func(t *testing.T) {
		s := newStore(t)
		buyer := s.client(t, "cliente1")
		a := s.product(t, "A", "10", 5)
		b := s.product(t, "B", "5", 1)

		_, err := s.svc.Checkout(ctx, buyer, domain.CheckoutRequest{Items: []domain.CheckoutItem{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 2},
		}})

		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, 5, s.stock(t, a.ID))
		assert.Equal(t, 1, s.stock(t, b.ID))
		assert.Zero(t, s.count(t, "purchases"))
		assert.Zero(t, s.count(t, "purchase_items"))
	})

	t.Run("Unknown product leaves nothing behind", func(t *testing.T) {
		s := newStore(t)
		buyer := s.client(t, "cliente1")
		a := s.product(t, "A", "10", 5)

		_, err := s.svc.Checkout(ctx, buyer, domain.CheckoutRequest{Items: []domain.CheckoutItem{
			{ProductID: a.ID, Quantity: 1},
			{ProductID: a.ID + 100, Quantity: 1},
		}})

		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Equal(t, 5, s.stock(t, a.ID))
		assert.Zero(t, s.count(t, "purchases"))
	})

	t.Run("Repeated checkout creates a new purchase each time", func(t *testing.T) {
		s := newStore(t)
		buyer := s.client(t, "cliente1")
		a := s.product(t, "A", "10", 5)
		req := domain.CheckoutRequest{Items: []domain.CheckoutItem{{ProductID: a.ID, Quantity: 2}}}

		first, err := s.svc.Checkout(ctx, buyer, req)
		require.NoError(t, err)
		second, err := s.svc.Checkout(ctx, buyer, req)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.NotEqual(t, first.InvoiceNumber, second.InvoiceNumber)
		assert.Equal(t, 1, s.stock(t, a.ID))

		mine, err := s.svc.ListMine(ctx, buyer.UserID)
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, first.ID, mine[0].ID)
	})

	t.Run("Concurrent checkouts for the last unit", func(t *testing.T) {
		s := newStore(t)
		a := s.product(t, "A", "10", 1)
		buyers := []userDomain.Principal{s.client(t, "cliente1"), s.client(t, "cliente2")}

		errs := make([]error, len(buyers))
		var wg sync.WaitGroup
		for i, buyer := range buyers {
			wg.Add(1)
			go func(i int, buyer userDomain.Principal) {
				defer wg.Done()
				_, errs[i] = s.svc.Checkout(ctx, buyer, domain.CheckoutRequest{Items: []domain.CheckoutItem{{ProductID: a.ID, Quantity: 1}}})
			}(i, buyer)
		}
		wg.Wait()

		succeeded, rejected := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, ErrInsufficientStock):
				rejected++
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, rejected)
		assert.Equal(t, 0, s.stock(t, a.ID))
		assert.Equal(t, 1, s.count(t, "purchases"))
	})

	t.Run("Price snapshot survives price change and deletion", func(t *testing.T) {
		s := newStore(t)
		buyer := s.client(t, "cliente1")
		a := s.product(t, "A", "10", 5)

		invoice, err := s.svc.Checkout(ctx, buyer, domain.CheckoutRequest{Items: []domain.CheckoutItem{{ProductID: a.ID, Quantity: 1}}})
		require.NoError(t, err)

		newPrice := decimal.NewFromInt(99)
		_, err = s.products.UpdateProduct(ctx, a.ID, pDomain.UpdateProductRequest{Price: &newPrice})
		require.NoError(t, err)

		again, err := s.svc.GetInvoice(ctx, invoice.ID, buyer)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(10).Equal(again.Items[0].UnitPrice))
		assert.True(t, decimal.NewFromInt(99).Equal(again.Items[0].Product.Price))
		assert.True(t, decimal.NewFromInt(10).Equal(again.Total))

		require.NoError(t, s.products.DeleteProduct(ctx, a.ID))
		again, err = s.svc.GetInvoice(ctx, invoice.ID, buyer)
		require.NoError(t, err)
		require.Len(t, again.Items, 1)
		assert.Nil(t, again.Items[0].ProductID)
		assert.Nil(t, again.Items[0].Product)
		assert.True(t, decimal.NewFromInt(10).Equal(again.Items[0].UnitPrice))
	})

	t.Run("Invoice visibility", func(t *testing.T) {
		s := newStore(t)
		owner := s.client(t, "cliente1")
		other := s.client(t, "cliente2")
		a := s.product(t, "A", "10", 5)

		invoice, err := s.svc.Checkout(ctx, owner, domain.CheckoutRequest{Items: []domain.CheckoutItem{{ProductID: a.ID, Quantity: 1}}})
		require.NoError(t, err)

		_, err = s.svc.GetInvoice(ctx, invoice.ID, other)
		assert.ErrorIs(t, err, ErrInvoiceForbidden)

		_, err = s.svc.GetInvoice(ctx, invoice.ID, userDomain.Principal{UserID: 999, Role: userDomain.RoleAdmin})
		assert.NoError(t, err)

		_, err = s.svc.GetInvoice(ctx, invoice.ID+1, owner)
		assert.ErrorIs(t, err, repository.ErrPurchaseNotFound)

		all, err := s.svc.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		none, err := s.svc.ListMine(ctx, other.UserID)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Deleted client account is unauthorized", func(t *testing.T) {
		s := newStore(t)
		a := s.product(t, "A", "10", 5)
		ghost := userDomain.Principal{UserID: 4242, Role: userDomain.RoleClient}

		_, err := s.svc.Checkout(ctx, ghost, domain.CheckoutRequest{Items: []domain.CheckoutItem{{ProductID: a.ID, Quantity: 1}}})

		assert.ErrorIs(t, err, repository.ErrUnknownClient)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		assert.Equal(t, 5, s.stock(t, a.ID))
		assert.Equal(t, 0, s.count(t, "purchases"))
	})

	t.Run("Renaming a product keeps sold stock", func(t *testing.T) {
		s := newStore(t)
		buyer := s.client(t, "cliente1")
		a := s.product(t, "A", "10", 5)

		_, err := s.svc.Checkout(ctx, buyer, domain.CheckoutRequest{Items: []domain.CheckoutItem{{ProductID: a.ID, Quantity: 2}}})
		require.NoError(t, err)

		name := "A v2"
		updated, err := s.products.UpdateProduct(ctx, a.ID, pDomain.UpdateProductRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, 3, updated.AvailableQuantity)
		assert.Equal(t, 3, s.stock(t, a.ID))
	})
}
