// Package checkout turns a finalized cart into an immutable sale: it is the
// only code path that decrements product stock. It also keeps the
// server-side cart sessions the POS handlers mutate.
package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pos-service/internal/model"
	"pos-service/internal/pricing"
	"pos-service/internal/store"
)

// Committer writes sales and consumes stock.
type Committer struct {
	store store.Store
	log   *zap.Logger
}

// NewCommitter returns a committer over s.
func NewCommitter(s store.Store, log *zap.Logger) *Committer {
	return &Committer{store: s, log: log}
}

// Commit freezes the cart into a Sale, decrements stock for every line and
// appends the sale to the sales ledger, all atomically. If any line's stock
// can no longer cover its quantity the whole commit fails and no decrement
// sticks. On success the caller discards the cart.
func (c *Committer) Commit(ctx context.Context, cart *pricing.Cart, method model.PaymentMethod) (*model.Sale, error) {
	if !model.ValidPaymentMethod(method) {
		return nil, model.Errf(model.ErrInvalidPayment, "unknown payment method %q", method)
	}
	if cart.Len() == 0 {
		return nil, model.Errf(model.ErrEmptyCart, "cannot commit a sale with an empty cart")
	}

	lines := cart.Lines()
	totals := cart.Totals()

	sale := &model.Sale{
		ID:            uuid.NewString(),
		Total:         totals.Total,
		PaymentMethod: method,
		CreatedAt:     time.Now(),
	}
	sale.SetOrderDiscount(cart.OrderDiscount())
	for _, line := range lines {
		item := model.SaleItem{
			ID:           uuid.NewString(),
			SaleID:       sale.ID,
			ProductID:    line.Product.ID,
			ProductTitle: line.Product.Title,
			UnitPrice:    line.Product.Price,
			Quantity:     line.Quantity,
			Subtotal:     line.Discounted(),
		}
		item.SetLineDiscount(line.Discount)
		sale.Items = append(sale.Items, item)
	}

	err := c.store.Atomically(ctx, func(s store.Store) error {
		for _, line := range lines {
			if err := s.Products().DecrementStock(ctx, line.Product.ID, line.Quantity); err != nil {
				return err
			}
		}
		return s.Sales().Append(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("sale committed",
		zap.String("sale_id", sale.ID),
		zap.Int("items", len(sale.Items)),
		zap.String("total", sale.Total.String()),
		zap.String("payment_method", string(sale.PaymentMethod)))
	return sale, nil
}
