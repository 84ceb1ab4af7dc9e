package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/ridloal/e-commerce-checkout/internal/platform/apperr"
	"github.com/ridloal/e-commerce-checkout/internal/platform/database"
	"github.com/ridloal/e-commerce-checkout/internal/platform/logger"
	"github.com/ridloal/e-commerce-checkout/internal/purchase/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrPurchaseNotFound = apperr.New(apperr.ErrNotFound, "purchase not found")
	// ErrUnknownClient means the buyer's account was removed while its token is still valid.
	ErrUnknownClient    = apperr.New(apperr.ErrUnauthorized, "client account no longer exists")
)

type PurchaseRepository interface {
	BeginTx(ctx context.Context) (database.DBTX, error)
	CreatePurchase(ctx context.Context, tx database.Queryer, p *domain.Purchase) error
	CreatePurchaseItem(ctx context.Context, tx database.Queryer, item *domain.PurchaseItem) error
	UpdatePurchaseTotal(ctx context.Context, tx database.Queryer, purchaseID int64, total decimal.Decimal) error

	GetPurchaseByID(ctx context.Context, id int64) (*domain.Purchase, error)
	ListPurchasesByClient(ctx context.Context, clientID int64) ([]domain.Purchase, error)
	ListAllPurchases(ctx context.Context) ([]domain.Purchase, error)
}

type sqlPurchaseRepository struct {
	db *sqlx.DB
}

func NewSQLPurchaseRepository(db *sqlx.DB) PurchaseRepository {
	return &sqlPurchaseRepository{db: db}
}

func (r *sqlPurchaseRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	tx, err := r.db.BeginTxx(ctx, database.TxOptions(r.db.DriverName()))
	if err != nil {
		logger.Error("BeginTx: failed to start transaction", err)
		return nil, errors.Wrap(err, "begin transaction")
	}
	return tx, nil
}

func (r *sqlPurchaseRepository) CreatePurchase(ctx context.Context, tx database.Queryer, p *domain.Purchase) error {
	query := tx.Rebind(`INSERT INTO purchases (client_id, invoice_number, purchased_at, total)
              VALUES (?, ?, ?, ?) RETURNING id`)
	if err := tx.GetContext(ctx, &p.ID, query, p.ClientID, p.InvoiceNumber, p.PurchasedAt, p.Total); err != nil {
		if database.IsForeignKeyViolation(err) {
			logger.Warn("CreatePurchase: unknown client", zap.Int64("client_id", p.ClientID))
			return ErrUnknownClient
		}
		logger.Error("CreatePurchase: failed to insert purchase", err, zap.Int64("client_id", p.ClientID))
		return errors.Wrap(err, "insert purchase")
	}
	return nil
}

func (r *sqlPurchaseRepository) CreatePurchaseItem(ctx context.Context, tx database.Queryer, item *domain.PurchaseItem) error {
	query := tx.Rebind(`INSERT INTO purchase_items (purchase_id, product_id, quantity, unit_price)
              VALUES (?, ?, ?, ?) RETURNING id`)
	if err := tx.GetContext(ctx, &item.ID, query, item.PurchaseID, item.ProductID, item.Quantity, item.UnitPrice); err != nil {
		logger.Error("CreatePurchaseItem: failed to insert item", err, zap.Int64("purchase_id", item.PurchaseID))
		return errors.Wrap(err, "insert purchase item")
	}
	return nil
}

func (r *sqlPurchaseRepository) UpdatePurchaseTotal(ctx context.Context, tx database.Queryer, purchaseID int64, total decimal.Decimal) error {
	result, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE purchases SET total = ? WHERE id = ?`), total, purchaseID)
	if err != nil {
		logger.Error("UpdatePurchaseTotal: failed to update total", err, zap.Int64("purchase_id", purchaseID))
		return errors.Wrapf(err, "update total of purchase %d", purchaseID)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if rowsAffected == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}

const purchaseSelect = `SELECT p.id, p.client_id, p.invoice_number, p.purchased_at, p.total,
        u.username AS client_username, u.email AS client_email, u.role AS client_role
    FROM purchases p JOIN users u ON u.id = p.client_id`

type purchaseRow struct {
	domain.Purchase
	ClientUsername string `db:"client_username"`
	ClientEmail    string `db:"client_email"`
	ClientRole     string `db:"client_role"`
}

type itemRow struct {
	domain.PurchaseItem
	ProductBatch sql.NullString      `db:"product_batch"`
	ProductName  sql.NullString      `db:"product_name"`
	ProductPrice decimal.NullDecimal `db:"product_price"`
}

func (r *sqlPurchaseRepository) GetPurchaseByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	purchases, err := r.listPurchases(ctx, purchaseSelect+` WHERE p.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return nil, ErrPurchaseNotFound
	}
	return &purchases[0], nil
}

func (r *sqlPurchaseRepository) ListPurchasesByClient(ctx context.Context, clientID int64) ([]domain.Purchase, error) {
	return r.listPurchases(ctx, purchaseSelect+` WHERE p.client_id = ? ORDER BY p.id`, clientID)
}

func (r *sqlPurchaseRepository) ListAllPurchases(ctx context.Context) ([]domain.Purchase, error) {
	return r.listPurchases(ctx, purchaseSelect+` ORDER BY p.id`)
}

// listPurchases loads the headers matching query, then all of their items in one
// batched query.
func (r *sqlPurchaseRepository) listPurchases(ctx context.Context, query string, args ...interface{}) ([]domain.Purchase, error) {
	rows := []purchaseRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		logger.Error("ListPurchases: query failed", err)
		return nil, errors.Wrap(err, "list purchases")
	}

	purchases := make([]domain.Purchase, len(rows))
	if len(rows) == 0 {
		return purchases, nil
	}
	index := make(map[int64]int, len(rows))
	ids := make([]int64, len(rows))
	for i, row := range rows {
		p := row.Purchase
		p.Client = &domain.ClientSummary{
			ID:       p.ClientID,
			Username: row.ClientUsername,
			Email:    row.ClientEmail,
			Role:     row.ClientRole,
		}
		p.Items = []domain.PurchaseItem{}
		purchases[i] = p
		index[p.ID] = i
		ids[i] = p.ID
	}

	itemQuery, itemArgs, err := sqlx.In(`SELECT pi.id, pi.purchase_id, pi.product_id, pi.quantity, pi.unit_price,
            pr.batch AS product_batch, pr.name AS product_name, pr.price AS product_price
        FROM purchase_items pi LEFT JOIN products pr ON pr.id = pi.product_id
        WHERE pi.purchase_id IN (?) ORDER BY pi.id`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "build item query")
	}
	items := []itemRow{}
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(itemQuery), itemArgs...); err != nil {
		logger.Error("ListPurchases: item query failed", err)
		return nil, errors.Wrap(err, "list purchase items")
	}

	for _, row := range items {
		item := row.PurchaseItem
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if item.ProductID != nil && row.ProductName.Valid {
			item.Product = &domain.ProductSummary{
				ID:    *item.ProductID,
				Batch: row.ProductBatch.String,
				Name:  row.ProductName.String,
				Price: row.ProductPrice.Decimal,
			}
		}
		i := index[item.PurchaseID]
		purchases[i].Items = append(purchases[i].Items, item)
	}
	return purchases, nil
}
