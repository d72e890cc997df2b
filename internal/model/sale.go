package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a point-of-sale purchase was paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// Sale is an immutable record of a completed checkout. Once appended to the
// sales ledger it is never updated.
type Sale struct {
	ID            string           `json:"id" gorm:"type:varchar(36);primarykey"`
	Items         []SaleItem       `json:"items" gorm:"foreignKey:SaleID"`
	DiscountType  *DiscountType    `json:"discount_type,omitempty" gorm:"type:varchar(20)"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty" gorm:"type:numeric(12,2)"`
	Total         decimal.Decimal  `json:"total" gorm:"type:numeric(12,2);not null"`
	PaymentMethod PaymentMethod    `json:"payment_method" gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time        `json:"created_at"`
}

// OrderDiscount rebuilds the optional order-level discount descriptor.
func (s *Sale) OrderDiscount() *Discount {
	if s.DiscountType == nil || s.DiscountValue == nil {
		return nil
	}
	return &Discount{Type: *s.DiscountType, Value: *s.DiscountValue}
}

// SetOrderDiscount stores the optional order-level discount descriptor.
func (s *Sale) SetOrderDiscount(d *Discount) {
	if d == nil {
		s.DiscountType = nil
		s.DiscountValue = nil
		return
	}
	t, v := d.Type, d.Value
	s.DiscountType = &t
	s.DiscountValue = &v
}

// SaleItem is a frozen snapshot of one cart line at commit time. It keeps the
// product's title and unit price as they were, so later catalog edits do not
// rewrite history.
type SaleItem struct {
	ID            string           `json:"id" gorm:"type:varchar(36);primarykey"`
	SaleID        string           `json:"sale_id" gorm:"type:varchar(36);index;not null"`
	ProductID     string           `json:"product_id" gorm:"type:varchar(36);not null"`
	ProductTitle  string           `json:"product_title" gorm:"type:varchar(255);not null"`
	UnitPrice     decimal.Decimal  `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Quantity      int              `json:"quantity" gorm:"not null"`
	DiscountType  *DiscountType    `json:"discount_type,omitempty" gorm:"type:varchar(20)"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty" gorm:"type:numeric(12,2)"`
	Subtotal      decimal.Decimal  `json:"subtotal" gorm:"type:numeric(12,2);not null"`
}

// LineDiscount rebuilds the optional per-line discount descriptor.
func (i *SaleItem) LineDiscount() *Discount {
	if i.DiscountType == nil || i.DiscountValue == nil {
		return nil
	}
	return &Discount{Type: *i.DiscountType, Value: *i.DiscountValue}
}

// SetLineDiscount stores the optional per-line discount descriptor.
func (i *SaleItem) SetLineDiscount(d *Discount) {
	if d == nil {
		i.DiscountType = nil
		i.DiscountValue = nil
		return
	}
	t, v := d.Type, d.Value
	i.DiscountType = &t
	i.DiscountValue = &v
}
