package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStatus is the lifecycle state of a single product.
type ProductStatus string

const (
	// StatusAvailable means the product can be sold or reserved.
	StatusAvailable ProductStatus = "available"
	// StatusReserved means the product is held for a specific client ("apartado").
	StatusReserved ProductStatus = "reserved"
	// StatusSold is terminal; the product has been paid for.
	StatusSold ProductStatus = "sold"
)

// Product represents an item from a supplier's catalog.
//
// ClientID is set if and only if Status is reserved; writes go through the
// store's SetAvailability so the pair cannot drift apart.
type Product struct {
	ID         string          `json:"id" gorm:"type:varchar(36);primarykey"`
	SupplierID string          `json:"supplier_id" gorm:"type:varchar(36);index;not null"`
	Title      string          `json:"title" gorm:"type:varchar(255);not null"`
	PhotoURL   string          `json:"photo_url" gorm:"type:text"`
	Price      decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Quantity   int             `json:"quantity" gorm:"not null;default:0"`
	Status     ProductStatus   `json:"status" gorm:"type:varchar(20);not null;default:'available';index"`
	ClientID   *string         `json:"client_id,omitempty" gorm:"type:varchar(36);index"`
	Barcode    *string         `json:"barcode,omitempty" gorm:"type:varchar(64)"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// Availability is the tagged view of the status/owner pair.
type Availability struct {
	Status   ProductStatus
	ClientID string // owner, set only while reserved
}

// Available returns the availability of an unreserved, unsold product.
func Available() Availability {
	return Availability{Status: StatusAvailable}
}

// ReservedBy returns the availability of a product held for clientID.
func ReservedBy(clientID string) Availability {
	return Availability{Status: StatusReserved, ClientID: clientID}
}

// SoldOut returns the terminal availability of a liquidated product.
func SoldOut() Availability {
	return Availability{Status: StatusSold}
}

// Availability reads the product's status/owner pair as a tagged value.
func (p *Product) Availability() Availability {
	if p.Status == StatusReserved && p.ClientID != nil {
		return ReservedBy(*p.ClientID)
	}
	return Availability{Status: p.Status}
}
