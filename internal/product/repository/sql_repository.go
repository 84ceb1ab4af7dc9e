package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/ridloal/e-commerce-checkout/internal/platform/apperr"
	"github.com/ridloal/e-commerce-checkout/internal/platform/database"
	"github.com/ridloal/e-commerce-checkout/internal/platform/logger"
	"github.com/ridloal/e-commerce-checkout/internal/product/domain"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound   = apperr.New(apperr.ErrNotFound, "product not found")
	ErrInsufficientStock = apperr.New(apperr.ErrInsufficientStock, "insufficient stock")
	ErrInvalidProduct    = apperr.New(apperr.ErrInvalidInput, "product violates a constraint")
)

const productColumns = `id, batch, name, price, available_quantity, intake_date, created_at, updated_at`

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	// UpdateProduct writes only the fields set in req and returns the stored row.
	UpdateProduct(ctx context.Context, id int64, req domain.UpdateProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error)

	// Checkout helpers, always called with an open transaction.
	GetProductForUpdate(ctx context.Context, tx database.Queryer, id int64) (*domain.Product, error)
	DecreaseStock(ctx context.Context, tx database.Queryer, id int64, quantity int) error
}

type sqlProductRepository struct {
	db *sqlx.DB
}

func NewSQLProductRepository(db *sqlx.DB) ProductRepository {
	return &sqlProductRepository{db: db}
}

func (r *sqlProductRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.IntakeDate.IsZero() {
		p.IntakeDate = now
	}

	query := r.db.Rebind(`INSERT INTO products (batch, name, price, available_quantity, intake_date, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.GetContext(ctx, &p.ID, query, p.Batch, p.Name, p.Price, p.AvailableQuantity, p.IntakeDate.UTC(), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if database.IsCheckViolation(err) {
			return ErrInvalidProduct
		}
		logger.Error("CreateProduct: failed to insert product", err)
		return errors.Wrap(err, "insert product")
	}
	return nil
}

func (r *sqlProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := r.db.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM products ORDER BY id`); err != nil {
		logger.Error("ListProducts: query failed", err)
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

func (r *sqlProductRepository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.getProduct(ctx, r.db, id, "")
}

func (r *sqlProductRepository) GetProductForUpdate(ctx context.Context, tx database.Queryer, id int64) (*domain.Product, error) {
	return r.getProduct(ctx, tx, id, database.ForUpdate(tx.DriverName()))
}

func (r *sqlProductRepository) getProduct(ctx context.Context, q database.Queryer, id int64, lock string) (*domain.Product, error) {
	query := q.Rebind(`SELECT ` + productColumns + ` FROM products WHERE id = ?` + lock)
	p := &domain.Product{}
	if err := q.GetContext(ctx, p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetProduct: query failed", err, zap.Int64("product_id", id))
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return p, nil
}

func (r *sqlProductRepository) UpdateProduct(ctx context.Context, id int64, req domain.UpdateProductRequest) (*domain.Product, error) {
	sets := []string{}
	args := []interface{}{}
	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if req.Batch != nil {
		set("batch", *req.Batch)
	}
	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Price != nil {
		set("price", *req.Price)
	}
	if req.AvailableQuantity != nil {
		set("available_quantity", *req.AvailableQuantity)
	}
	if req.IntakeDate != nil {
		set("intake_date", req.IntakeDate.UTC())
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id)

	// Columns absent from req are left untouched.
	query := r.db.Rebind(`UPDATE products SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsCheckViolation(err) {
			return nil, ErrInvalidProduct
		}
		logger.Error("UpdateProduct: failed to update product", err, zap.Int64("product_id", id))
		return nil, errors.Wrapf(err, "update product %d", id)
	}
	if err := expectOneRow(result, ErrProductNotFound); err != nil {
		return nil, err
	}
	return r.GetProductByID(ctx, id)
}

func (r *sqlProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		logger.Error("DeleteProduct: failed to delete product", err, zap.Int64("product_id", id))
		return errors.Wrapf(err, "delete product %d", id)
	}
	return expectOneRow(result, ErrProductNotFound)
}

func (r *sqlProductRepository) ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	products := []domain.Product{}
	query := r.db.Rebind(`SELECT ` + productColumns + ` FROM products WHERE available_quantity <= ? ORDER BY available_quantity, id`)
	if err := r.db.SelectContext(ctx, &products, query, threshold); err != nil {
		logger.Error("ListLowStock: query failed", err)
		return nil, errors.Wrap(err, "list low stock")
	}
	return products, nil
}

// DecreaseStock only succeeds when enough stock remains, so a decrement can never
// drive available_quantity below zero even without a prior row lock.
func (r *sqlProductRepository) DecreaseStock(ctx context.Context, tx database.Queryer, id int64, quantity int) error {
	query := tx.Rebind(`UPDATE products SET available_quantity = available_quantity - ?, updated_at = ?
              WHERE id = ? AND available_quantity >= ?`)
	result, err := tx.ExecContext(ctx, query, quantity, time.Now().UTC(), id, quantity)
	if err != nil {
		logger.Error("DecreaseStock: failed to update stock", err, zap.Int64("product_id", id))
		return errors.Wrapf(err, "decrease stock of product %d", id)
	}
	return expectOneRow(result, ErrInsufficientStock)
}

func expectOneRow(result sql.Result, none error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if rowsAffected == 0 {
		return none
	}
	return nil
}
