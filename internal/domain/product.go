package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product products table. ERPCode references the item (MTRL) in the ERP.
type Product struct {
	ID         string          `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Code       string          `json:"code" db:"code"`
	EAN        *string         `json:"ean,omitempty" db:"ean"`
	ERPCode    *string         `json:"erp_code,omitempty" db:"erp_code"`
	BrandID    *string         `json:"brand_id,omitempty" db:"brand_id"`
	CategoryID *string         `json:"category_id,omitempty" db:"category_id"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	Unit       string          `json:"unit" db:"unit"`
	IsActive   bool            `json:"is_active" db:"is_active"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`

	// joined, read-only
	BrandName    *string `json:"brand_name,omitempty" db:"-"`
	CategoryName *string `json:"category_name,omitempty" db:"-"`
}

type ProductFilter struct {
	Search     string
	BrandID    string
	CategoryID string
	Active     *bool
}
