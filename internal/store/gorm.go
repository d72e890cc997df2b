package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pos-service/internal/model"
)

// Gorm is the Postgres-backed Store.
//
// Atomicity comes from database transactions; the two hot invariants (stock
// never below zero, balance never below zero) are enforced with conditional
// single-statement updates checked by rows affected, so concurrent commits
// and debits cannot both pass a stale read.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an open GORM handle.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Products() ProductStore         { return gormProducts{g.db} }
func (g *Gorm) Clients() ClientStore           { return gormClients{g.db} }
func (g *Gorm) Transactions() TransactionStore { return gormTransactions{g.db} }
func (g *Gorm) Sales() SaleStore               { return gormSales{g.db} }

func (g *Gorm) Atomically(ctx context.Context, fn func(Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

type gormProducts struct {
	db *gorm.DB
}

func (s gormProducts) Get(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.Errf(model.ErrNotFound, "product %s not found", id)
		}
		return nil, err
	}
	return &p, nil
}

func (s gormProducts) List(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	q := s.db.WithContext(ctx)
	if f.SupplierID != "" {
		q = q.Where("supplier_id = ?", f.SupplierID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var products []model.Product
	if err := q.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s gormProducts) Create(ctx context.Context, p *model.Product) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s gormProducts) Update(ctx context.Context, p *model.Product) error {
	res := s.db.WithContext(ctx).Model(&model.Product{ID: p.ID}).Select(
		"supplier_id", "title", "photo_url", "price", "quantity", "barcode",
	).Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.Errf(model.ErrNotFound, "product %s not found", p.ID)
	}
	return nil
}

func (s gormProducts) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.Errf(model.ErrNotFound, "product %s not found", id)
	}
	return nil
}

func (s gormProducts) ReservedFor(ctx context.Context, clientID string) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).
		Where("status = ? AND client_id = ?", model.StatusReserved, clientID).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s gormProducts) SetAvailability(ctx context.Context, id string, from model.ProductStatus, av model.Availability) error {
	cols := map[string]any{"status": av.Status, "client_id": nil}
	if av.Status == model.StatusReserved {
		cols["client_id"] = av.ClientID
	}
	// Conditional on the prior status, mirroring DecrementStock: two
	// concurrent transitions off the same state cannot both match the row.
	res := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND status = ?", id, from).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		p, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		return model.Errf(model.ErrProductNotAvailable,
			"product %q is %s, expected %s", p.Title, p.Status, from)
	}
	return nil
}

func (s gormProducts) DecrementStock(ctx context.Context, id string, qty int) error {
	res := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND quantity >= ?", id, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		p, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		return model.Errf(model.ErrInsufficientStock,
			"insufficient stock for %q: requested %d, available %d", p.Title, qty, p.Quantity)
	}
	return nil
}

type gormClients struct {
	db *gorm.DB
}

func (s gormClients) Get(ctx context.Context, id string) (*model.Client, error) {
	var c model.Client
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.Errf(model.ErrNotFound, "client %s not found", id)
		}
		return nil, err
	}
	return &c, nil
}

func (s gormClients) List(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := s.db.WithContext(ctx).Order("id").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s gormClients) Create(ctx context.Context, c *model.Client) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s gormClients) Update(ctx context.Context, c *model.Client) error {
	res := s.db.WithContext(ctx).Model(&model.Client{ID: c.ID}).
		Select("name", "phone").Updates(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.Errf(model.ErrNotFound, "client %s not found", c.ID)
	}
	return nil
}

func (s gormClients) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Client{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.Errf(model.ErrNotFound, "client %s not found", id)
	}
	return nil
}

func (s gormClients) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	q := s.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id)
	if delta.IsNegative() {
		// Conditional debit: the balance check and subtraction happen in
		// one statement so two concurrent debits cannot both spend the
		// same credit.
		q = q.Where("balance >= ?", delta.Neg())
	}
	res := q.UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		c, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		return model.Errf(model.ErrInsufficientBalance,
			"balance %s of client %s cannot cover %s", c.Balance, id, delta.Neg())
	}
	return nil
}

type gormTransactions struct {
	db *gorm.DB
}

func (s gormTransactions) Append(ctx context.Context, t *model.Transaction) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s gormTransactions) ForClient(ctx context.Context, clientID string) ([]model.Transaction, error) {
	var txns []model.Transaction
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

type gormSales struct {
	db *gorm.DB
}

func (s gormSales) Append(ctx context.Context, sale *model.Sale) error {
	return s.db.WithContext(ctx).Create(sale).Error
}

func (s gormSales) Get(ctx context.Context, id string) (*model.Sale, error) {
	var sale model.Sale
	err := s.db.WithContext(ctx).Preload("Items").First(&sale, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.Errf(model.ErrNotFound, "sale %s not found", id)
		}
		return nil, err
	}
	return &sale, nil
}

func (s gormSales) List(ctx context.Context) ([]model.Sale, error) {
	var sales []model.Sale
	err := s.db.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}
