package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pos-service/internal/model"
)

// Memory is an in-process Store keeping everything in maps behind one mutex.
// It backs the engine tests and works as a development backend when no
// database is configured. Records are copied in and out, so callers can
// never mutate stored state except through the interface.
type Memory struct {
	mu   sync.Mutex
	data memData
}

type memData struct {
	products     map[string]*model.Product
	clients      map[string]*model.Client
	transactions []model.Transaction
	sales        []model.Sale
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: memData{
			products: make(map[string]*model.Product),
			clients:  make(map[string]*model.Client),
		},
	}
}

func (d *memData) clone() memData {
	out := memData{
		products:     make(map[string]*model.Product, len(d.products)),
		clients:      make(map[string]*model.Client, len(d.clients)),
		transactions: append([]model.Transaction(nil), d.transactions...),
		sales:        make([]model.Sale, 0, len(d.sales)),
	}
	for id, p := range d.products {
		out.products[id] = cloneProduct(p)
	}
	for id, c := range d.clients {
		cc := *c
		out.clients[id] = &cc
	}
	for _, s := range d.sales {
		out.sales = append(out.sales, cloneSale(&s))
	}
	return out
}

func cloneProduct(p *model.Product) *model.Product {
	cp := *p
	if p.ClientID != nil {
		v := *p.ClientID
		cp.ClientID = &v
	}
	if p.Barcode != nil {
		v := *p.Barcode
		cp.Barcode = &v
	}
	return &cp
}

func cloneSale(s *model.Sale) model.Sale {
	cs := *s
	cs.Items = append([]model.SaleItem(nil), s.Items...)
	cs.SetOrderDiscount(s.OrderDiscount())
	for i := range cs.Items {
		cs.Items[i].SetLineDiscount(s.Items[i].LineDiscount())
	}
	return cs
}

func (m *Memory) Products() ProductStore         { return memProducts{m, true} }
func (m *Memory) Clients() ClientStore           { return memClients{m, true} }
func (m *Memory) Transactions() TransactionStore { return memTransactions{m, true} }
func (m *Memory) Sales() SaleStore               { return memSales{m, true} }

// Atomically serializes the whole operation under the store mutex and
// restores a pre-call snapshot if fn fails, so partial effects never leak.
func (m *Memory) Atomically(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.data.clone()
	if err := fn(txMemory{m}); err != nil {
		m.data = snap
		return err
	}
	return nil
}

// txMemory is the view handed to Atomically callbacks; it reuses the already
// held mutex and joins nested Atomically calls into the enclosing scope.
type txMemory struct{ m *Memory }

func (t txMemory) Products() ProductStore         { return memProducts{t.m, false} }
func (t txMemory) Clients() ClientStore           { return memClients{t.m, false} }
func (t txMemory) Transactions() TransactionStore { return memTransactions{t.m, false} }
func (t txMemory) Sales() SaleStore               { return memSales{t.m, false} }

func (t txMemory) Atomically(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

type memProducts struct {
	m    *Memory
	lock bool
}

func (s memProducts) enter() func() {
	if !s.lock {
		return func() {}
	}
	s.m.mu.Lock()
	return s.m.mu.Unlock
}

func (s memProducts) Get(_ context.Context, id string) (*model.Product, error) {
	defer s.enter()()
	p, ok := s.m.data.products[id]
	if !ok {
		return nil, model.Errf(model.ErrNotFound, "product %s not found", id)
	}
	return cloneProduct(p), nil
}

func (s memProducts) List(_ context.Context, f ProductFilter) ([]model.Product, error) {
	defer s.enter()()
	out := make([]model.Product, 0, len(s.m.data.products))
	for _, p := range s.m.data.products {
		if f.SupplierID != "" && p.SupplierID != f.SupplierID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, *cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memProducts) Create(_ context.Context, p *model.Product) error {
	defer s.enter()()
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.m.data.products[p.ID] = cloneProduct(p)
	return nil
}

func (s memProducts) Update(_ context.Context, p *model.Product) error {
	defer s.enter()()
	if _, ok := s.m.data.products[p.ID]; !ok {
		return model.Errf(model.ErrNotFound, "product %s not found", p.ID)
	}
	p.UpdatedAt = time.Now()
	s.m.data.products[p.ID] = cloneProduct(p)
	return nil
}

func (s memProducts) Delete(_ context.Context, id string) error {
	defer s.enter()()
	if _, ok := s.m.data.products[id]; !ok {
		return model.Errf(model.ErrNotFound, "product %s not found", id)
	}
	delete(s.m.data.products, id)
	return nil
}

func (s memProducts) ReservedFor(_ context.Context, clientID string) ([]model.Product, error) {
	defer s.enter()()
	var out []model.Product
	for _, p := range s.m.data.products {
		if p.Status == model.StatusReserved && p.ClientID != nil && *p.ClientID == clientID {
			out = append(out, *cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memProducts) SetAvailability(_ context.Context, id string, from model.ProductStatus, av model.Availability) error {
	defer s.enter()()
	p, ok := s.m.data.products[id]
	if !ok {
		return model.Errf(model.ErrNotFound, "product %s not found", id)
	}
	if p.Status != from {
		return model.Errf(model.ErrProductNotAvailable,
			"product %q is %s, expected %s", p.Title, p.Status, from)
	}
	p.Status = av.Status
	if av.Status == model.StatusReserved {
		owner := av.ClientID
		p.ClientID = &owner
	} else {
		p.ClientID = nil
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (s memProducts) DecrementStock(_ context.Context, id string, qty int) error {
	defer s.enter()()
	p, ok := s.m.data.products[id]
	if !ok {
		return model.Errf(model.ErrNotFound, "product %s not found", id)
	}
	if p.Quantity < qty {
		return model.Errf(model.ErrInsufficientStock,
			"insufficient stock for %q: requested %d, available %d", p.Title, qty, p.Quantity)
	}
	p.Quantity -= qty
	p.UpdatedAt = time.Now()
	return nil
}

type memClients struct {
	m    *Memory
	lock bool
}

func (s memClients) enter() func() {
	if !s.lock {
		return func() {}
	}
	s.m.mu.Lock()
	return s.m.mu.Unlock
}

func (s memClients) Get(_ context.Context, id string) (*model.Client, error) {
	defer s.enter()()
	c, ok := s.m.data.clients[id]
	if !ok {
		return nil, model.Errf(model.ErrNotFound, "client %s not found", id)
	}
	cc := *c
	return &cc, nil
}

func (s memClients) List(_ context.Context) ([]model.Client, error) {
	defer s.enter()()
	out := make([]model.Client, 0, len(s.m.data.clients))
	for _, c := range s.m.data.clients {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memClients) Create(_ context.Context, c *model.Client) error {
	defer s.enter()()
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	cc := *c
	s.m.data.clients[c.ID] = &cc
	return nil
}

func (s memClients) Update(_ context.Context, c *model.Client) error {
	defer s.enter()()
	if _, ok := s.m.data.clients[c.ID]; !ok {
		return model.Errf(model.ErrNotFound, "client %s not found", c.ID)
	}
	c.UpdatedAt = time.Now()
	cc := *c
	s.m.data.clients[c.ID] = &cc
	return nil
}

func (s memClients) Delete(_ context.Context, id string) error {
	defer s.enter()()
	if _, ok := s.m.data.clients[id]; !ok {
		return model.Errf(model.ErrNotFound, "client %s not found", id)
	}
	delete(s.m.data.clients, id)
	return nil
}

func (s memClients) AdjustBalance(_ context.Context, id string, delta decimal.Decimal) error {
	defer s.enter()()
	c, ok := s.m.data.clients[id]
	if !ok {
		return model.Errf(model.ErrNotFound, "client %s not found", id)
	}
	next := c.Balance.Add(delta)
	if next.IsNegative() {
		return model.Errf(model.ErrInsufficientBalance,
			"balance %s of client %s cannot cover %s", c.Balance, id, delta.Neg())
	}
	c.Balance = next
	c.UpdatedAt = time.Now()
	return nil
}

type memTransactions struct {
	m    *Memory
	lock bool
}

func (s memTransactions) enter() func() {
	if !s.lock {
		return func() {}
	}
	s.m.mu.Lock()
	return s.m.mu.Unlock
}

func (s memTransactions) Append(_ context.Context, t *model.Transaction) error {
	defer s.enter()()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	s.m.data.transactions = append(s.m.data.transactions, *t)
	return nil
}

func (s memTransactions) ForClient(_ context.Context, clientID string) ([]model.Transaction, error) {
	defer s.enter()()
	var out []model.Transaction
	for i := len(s.m.data.transactions) - 1; i >= 0; i-- {
		if s.m.data.transactions[i].ClientID == clientID {
			out = append(out, s.m.data.transactions[i])
		}
	}
	return out, nil
}

type memSales struct {
	m    *Memory
	lock bool
}

func (s memSales) enter() func() {
	if !s.lock {
		return func() {}
	}
	s.m.mu.Lock()
	return s.m.mu.Unlock
}

func (s memSales) Append(_ context.Context, sale *model.Sale) error {
	defer s.enter()()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	s.m.data.sales = append(s.m.data.sales, cloneSale(sale))
	return nil
}

func (s memSales) Get(_ context.Context, id string) (*model.Sale, error) {
	defer s.enter()()
	for i := range s.m.data.sales {
		if s.m.data.sales[i].ID == id {
			out := cloneSale(&s.m.data.sales[i])
			return &out, nil
		}
	}
	return nil, model.Errf(model.ErrNotFound, "sale %s not found", id)
}

func (s memSales) List(_ context.Context) ([]model.Sale, error) {
	defer s.enter()()
	out := make([]model.Sale, 0, len(s.m.data.sales))
	for i := len(s.m.data.sales) - 1; i >= 0; i-- {
		out = append(out, cloneSale(&s.m.data.sales[i]))
	}
	return out, nil
}
