package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID                int64           `json:"id" db:"id"`
	Batch             string          `json:"batch" db:"batch"`
	Name              string          `json:"name" db:"name"`
	Price             decimal.Decimal `json:"price" db:"price"`
	AvailableQuantity int             `json:"available_quantity" db:"available_quantity"`
	IntakeDate        time.Time       `json:"intake_date" db:"intake_date"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateProductRequest struct {
	Batch             string          `json:"batch" binding:"max=64"`
	Name              string          `json:"name" binding:"required,max=255"`
	Price             decimal.Decimal `json:"price" binding:"money"`
	AvailableQuantity int             `json:"available_quantity" binding:"gte=0"`
	IntakeDate        *time.Time      `json:"intake_date"` // defaults to now
}

// UpdateProductRequest is a partial update: nil fields are left untouched.
type UpdateProductRequest struct {
	Batch             *string          `json:"batch" binding:"omitempty,max=64"`
	Name              *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Price             *decimal.Decimal `json:"price" binding:"omitempty,money"`
	AvailableQuantity *int             `json:"available_quantity" binding:"omitempty,gte=0"`
	IntakeDate        *time.Time       `json:"intake_date"`
}

func (r UpdateProductRequest) Empty() bool {
	return r.Batch == nil && r.Name == nil && r.Price == nil && r.AvailableQuantity == nil && r.IntakeDate == nil
}

type DeleteProductResponse struct {
	Message string `json:"msg"`
}
