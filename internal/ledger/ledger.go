// Package ledger owns client store-credit accounts: deposits ("abonos"),
// liquidation debits and the append-only transaction history. A client's
// balance field is a cache; it always equals the sum of their transaction
// amounts because every balance change and its transaction row are written
// in one atomic scope.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/model"
	"pos-service/internal/store"
)

// DefaultDepositDetails is the description used when a deposit is recorded
// without one.
const DefaultDepositDetails = "Abono a cuenta"

// Ledger exposes the client credit-account operations.
type Ledger struct {
	store store.Store
	log   *zap.Logger
}

// New returns a ledger over s.
func New(s store.Store, log *zap.Logger) *Ledger {
	return &Ledger{store: s, log: log}
}

// Deposit credits amount to the client's balance and appends the matching
// deposit transaction. The amount must be strictly positive.
func (l *Ledger) Deposit(ctx context.Context, clientID string, amount decimal.Decimal, details string) (*model.Transaction, error) {
	if !amount.IsPositive() {
		return nil, model.Errf(model.ErrInvalidAmount,
			"deposit amount %s must be greater than zero", amount)
	}
	if details == "" {
		details = DefaultDepositDetails
	}
	txn := &model.Transaction{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Type:      model.TxDeposit,
		Amount:    amount,
		Details:   details,
		CreatedAt: time.Now(),
	}
	err := l.store.Atomically(ctx, func(s store.Store) error {
		if err := s.Clients().AdjustBalance(ctx, clientID, amount); err != nil {
			return err
		}
		return s.Transactions().Append(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	l.log.Info("deposit recorded",
		zap.String("client_id", clientID),
		zap.String("amount", amount.String()))
	return txn, nil
}

// Debit takes amount from the client's balance and appends a liquidation
// transaction with a negative amount. The caller checks affordability first;
// the store re-validates the balance inside the same write so it can never
// go negative even if that check raced.
func (l *Ledger) Debit(ctx context.Context, clientID string, amount decimal.Decimal, details string) (*model.Transaction, error) {
	var txn *model.Transaction
	err := l.store.Atomically(ctx, func(s store.Store) error {
		var err error
		txn, err = Debit(ctx, s, clientID, amount, details)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Debit applies a liquidation debit against s. It exists at package level so
// the reservation coordinator can run debits inside its own atomic scope.
func Debit(ctx context.Context, s store.Store, clientID string, amount decimal.Decimal, details string) (*model.Transaction, error) {
	if !amount.IsPositive() {
		return nil, model.Errf(model.ErrInvalidAmount,
			"debit amount %s must be greater than zero", amount)
	}
	if err := s.Clients().AdjustBalance(ctx, clientID, amount.Neg()); err != nil {
		return nil, err
	}
	txn := &model.Transaction{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Type:      model.TxLiquidation,
		Amount:    amount.Neg(),
		Details:   details,
		CreatedAt: time.Now(),
	}
	if err := s.Transactions().Append(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// Balance returns the client's cached balance.
func (l *Ledger) Balance(ctx context.Context, clientID string) (decimal.Decimal, error) {
	c, err := l.store.Clients().Get(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	return c.Balance, nil
}

// History returns the client's transactions, most recent first.
func (l *Ledger) History(ctx context.Context, clientID string) ([]model.Transaction, error) {
	if _, err := l.store.Clients().Get(ctx, clientID); err != nil {
		return nil, err
	}
	return l.store.Transactions().ForClient(ctx, clientID)
}
