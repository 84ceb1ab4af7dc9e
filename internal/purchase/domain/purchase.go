package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is an order header. Total is derived from its items at checkout and
// never edited afterwards.
type Purchase struct {
	ID            int64           `json:"id" db:"id"`
	ClientID      int64           `json:"client_id" db:"client_id"`
	InvoiceNumber string          `json:"invoice_number" db:"invoice_number"`
	PurchasedAt   time.Time       `json:"purchased_at" db:"purchased_at"`
	Total         decimal.Decimal `json:"total" db:"total"`

	Client *ClientSummary `json:"client,omitempty" db:"-"`
	Items  []PurchaseItem `json:"items" db:"-"`
}

// PurchaseItem keeps the unit price at purchase time. ProductID is nil once the
// product has been deleted from the catalog.
type PurchaseItem struct {
	ID         int64           `json:"id" db:"id"`
	PurchaseID int64           `json:"purchase_id" db:"purchase_id"`
	ProductID  *int64          `json:"product_id" db:"product_id"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`

	Subtotal decimal.Decimal `json:"subtotal" db:"-"`
	Product  *ProductSummary `json:"product" db:"-"`
}

type ProductSummary struct {
	ID    int64           `json:"id"`
	Batch string          `json:"batch"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type ClientSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type CheckoutItem struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"cantidad" binding:"required,gt=0"`
}

type CheckoutRequest struct {
	Items []CheckoutItem `json:"items" binding:"required,min=1,dive"`
}
