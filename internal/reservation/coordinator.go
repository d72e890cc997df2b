// Package reservation links products to clients as "apartados" and settles
// them against the client's store credit. A product moves Available →
// Reserved → Sold; there is no un-reserve path. Reserving is a hold on
// status and ownership only: stock quantity is untouched until an actual
// sale commit, matching how the shop runs soft holds.
package reservation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/ledger"
	"pos-service/internal/model"
	"pos-service/internal/store"
)

// Coordinator drives reservation state transitions and batch liquidation.
type Coordinator struct {
	store store.Store
	log   *zap.Logger
}

// New returns a coordinator over s.
func New(s store.Store, log *zap.Logger) *Coordinator {
	return &Coordinator{store: s, log: log}
}

func liquidationDetails(title string) string {
	return fmt.Sprintf("Liquidación: %s", title)
}

// Reserve holds the product for the client. Only available products can be
// reserved; the ledger and the stock quantity are not touched.
func (c *Coordinator) Reserve(ctx context.Context, productID, clientID string) (*model.Product, error) {
	var reserved *model.Product
	err := c.store.Atomically(ctx, func(s store.Store) error {
		if _, err := s.Clients().Get(ctx, clientID); err != nil {
			return err
		}
		p, err := s.Products().Get(ctx, productID)
		if err != nil {
			return err
		}
		if p.Status != model.StatusAvailable {
			return model.Errf(model.ErrProductNotAvailable,
				"product %q is %s and cannot be reserved", p.Title, p.Status)
		}
		if err := s.Products().SetAvailability(ctx, productID, model.StatusAvailable, model.ReservedBy(clientID)); err != nil {
			return err
		}
		p.Status = model.StatusReserved
		p.ClientID = &clientID
		reserved = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("product reserved",
		zap.String("product_id", productID),
		zap.String("client_id", clientID))
	return reserved, nil
}

// LiquidateOne settles a single reserved product: the owning client is
// debited the product's price and the product becomes sold with its owner
// cleared. Fails without effect when the balance cannot cover the price.
func (c *Coordinator) LiquidateOne(ctx context.Context, productID string) (*model.Transaction, error) {
	var txn *model.Transaction
	err := c.store.Atomically(ctx, func(s store.Store) error {
		p, err := s.Products().Get(ctx, productID)
		if err != nil {
			return err
		}
		if p.Status != model.StatusReserved || p.ClientID == nil {
			return model.Errf(model.ErrProductNotAvailable,
				"product %q is not reserved", p.Title)
		}
		txn, err = ledger.Debit(ctx, s, *p.ClientID, p.Price, liquidationDetails(p.Title))
		if err != nil {
			return err
		}
		return s.Products().SetAvailability(ctx, productID, model.StatusReserved, model.SoldOut())
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("product liquidated",
		zap.String("product_id", productID),
		zap.String("transaction_id", txn.ID))
	return txn, nil
}

// LiquidateAll settles every product reserved for the client in one
// all-or-nothing batch. The full cost is checked against the balance before
// any mutation; on success each product gets its own liquidation
// transaction and is marked sold. If anything fails midway the whole batch
// rolls back.
func (c *Coordinator) LiquidateAll(ctx context.Context, clientID string) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := c.store.Atomically(ctx, func(s store.Store) error {
		client, err := s.Clients().Get(ctx, clientID)
		if err != nil {
			return err
		}
		reserved, err := s.Products().ReservedFor(ctx, clientID)
		if err != nil {
			return err
		}

		// Phase one: price the whole batch before touching anything.
		total := decimal.Zero
		for _, p := range reserved {
			total = total.Add(p.Price)
		}
		if client.Balance.LessThan(total) {
			return model.Errf(model.ErrInsufficientBalance,
				"balance %s cannot cover %s for %d reserved products",
				client.Balance, total, len(reserved))
		}

		// Phase two: apply every debit and status change.
		for _, p := range reserved {
			txn, err := ledger.Debit(ctx, s, clientID, p.Price, liquidationDetails(p.Title))
			if err != nil {
				return err
			}
			if err := s.Products().SetAvailability(ctx, p.ID, model.StatusReserved, model.SoldOut()); err != nil {
				return err
			}
			txns = append(txns, *txn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("liquidated all reservations",
		zap.String("client_id", clientID),
		zap.Int("count", len(txns)))
	return txns, nil
}

// ReservedFor lists the products currently held for the client.
func (c *Coordinator) ReservedFor(ctx context.Context, clientID string) ([]model.Product, error) {
	if _, err := c.store.Clients().Get(ctx, clientID); err != nil {
		return nil, err
	}
	return c.store.Products().ReservedFor(ctx, clientID)
}
