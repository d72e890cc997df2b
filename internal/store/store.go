// Package store defines the persistence contracts the checkout, ledger and
// reservation engines run against, plus the GORM-backed and in-memory
// implementations. The engines never touch a database handle directly; they
// receive a Store so they stay testable and backend-agnostic.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"pos-service/internal/model"
)

// ProductFilter narrows List results.
type ProductFilter struct {
	SupplierID string
	Status     model.ProductStatus
}

// ProductStore reads and writes the product catalog.
type ProductStore interface {
	Get(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, f ProductFilter) ([]model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error

	// ReservedFor lists the products currently held for a client.
	ReservedFor(ctx context.Context, clientID string) ([]model.Product, error)

	// SetAvailability writes the status/owner pair in one step so that
	// ClientID can never be set without the reserved status. The write only
	// applies while the product still has the from status; a stale
	// transition fails with a product-not-available DomainError, so two
	// concurrent reservations or liquidations cannot both win.
	SetAvailability(ctx context.Context, id string, from model.ProductStatus, av model.Availability) error

	// DecrementStock conditionally subtracts qty from the product's
	// quantity. It fails with an insufficient-stock DomainError instead of
	// letting the quantity go negative, even under concurrent commits.
	DecrementStock(ctx context.Context, id string, qty int) error
}

// ClientStore reads and writes customer accounts.
type ClientStore interface {
	Get(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	Create(ctx context.Context, c *model.Client) error
	Update(ctx context.Context, c *model.Client) error
	Delete(ctx context.Context, id string) error

	// AdjustBalance adds delta (which may be negative) to the client's
	// balance. A negative delta that would take the balance below zero
	// fails with an insufficient-balance DomainError and leaves the row
	// untouched, even under concurrent debits.
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) error
}

// TransactionStore is the append-only credit ledger. No update or delete.
type TransactionStore interface {
	Append(ctx context.Context, t *model.Transaction) error

	// ForClient returns the client's transactions, most recent first.
	ForClient(ctx context.Context, clientID string) ([]model.Transaction, error)
}

// SaleStore is the append-only sales ledger.
type SaleStore interface {
	Append(ctx context.Context, s *model.Sale) error
	Get(ctx context.Context, id string) (*model.Sale, error)

	// List returns sales most recent first.
	List(ctx context.Context) ([]model.Sale, error)
}

// Store aggregates the record stores behind one handle.
//
// Atomically runs fn against a transactional view: either every write fn
// performs is applied, or none is. Implementations serialize conflicting
// operations so that no observer sees a half-applied sale commit or batch
// liquidation.
type Store interface {
	Products() ProductStore
	Clients() ClientStore
	Transactions() TransactionStore
	Sales() SaleStore

	Atomically(ctx context.Context, fn func(Store) error) error
}
