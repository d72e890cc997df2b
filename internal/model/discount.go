package model

import "github.com/shopspring/decimal"

// DiscountType enumerates the supported discount strategies.
type DiscountType string

const (
	// DiscountPercentage discounts a percentage in (0, 100] of the base amount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed discounts a fixed amount in (0, base].
	DiscountFixed DiscountType = "fixed"
)

// Discount is a descriptor embedded in a cart line or a sale, not an entity
// with its own lifecycle.
type Discount struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}
