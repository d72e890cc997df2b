package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client represents a customer with a store-credit account.
//
// Balance is a cache over the client's transactions; it must always equal
// the sum of their transaction amounts and never goes negative.
type Client struct {
	ID        string          `json:"id" gorm:"type:varchar(36);primarykey"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	Phone     string          `json:"phone" gorm:"type:varchar(32)"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:numeric(12,2);not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}
