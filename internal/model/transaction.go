package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the business reason for a ledger movement.
type TransactionType string

const (
	// TxDeposit ("abono") credits the client's balance.
	TxDeposit TransactionType = "abono"
	// TxLiquidation debits the balance to settle a reserved product.
	TxLiquidation TransactionType = "liquidacion"
)

// Transaction is one append-only row in a client's credit ledger.
// Amount is positive for deposits and negative for liquidations.
// Rows are never updated or deleted; corrections would be new rows.
type Transaction struct {
	ID        string          `json:"id" gorm:"type:varchar(36);primarykey"`
	ClientID  string          `json:"client_id" gorm:"type:varchar(36);index;not null"`
	Type      TransactionType `json:"type" gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	Details   string          `json:"details" gorm:"type:varchar(255)"`
	CreatedAt time.Time       `json:"created_at"`
}
