package pricing

import (
	"github.com/shopspring/decimal"

	"pos-service/internal/model"
)

// Line is one cart entry: a product snapshot, a requested quantity and an
// optional per-line discount.
type Line struct {
	Product  model.Product   `json:"product"`
	Quantity int             `json:"quantity"`
	Discount *model.Discount `json:"discount,omitempty"`
}

// Subtotal is the line's pre-discount amount, unit price times quantity.
func (l *Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Discounted is the line's amount after its own discount.
func (l *Line) Discounted() decimal.Decimal {
	return Apply(l.Subtotal(), l.Discount)
}

// Totals is the cart's computed money breakdown.
type Totals struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	LineDiscountTotal decimal.Decimal `json:"line_discount_total"`
	Total             decimal.Decimal `json:"total"`
}

// Cart accumulates lines for one checkout session. It never touches stock or
// any ledger; committing is the checkout package's job. Cart is not safe for
// concurrent use; the session manager serializes access.
type Cart struct {
	lines         map[string]*Line
	order         []string // product IDs in insertion order
	orderDiscount *model.Discount
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{lines: make(map[string]*Line)}
}

// AddItem puts one unit of p in the cart, or bumps the existing line's
// quantity by one. Asking for more units than the product has in stock is a
// silent no-op, the "can't add more than stock" guard, not an error.
// Products that are not available (reserved or sold) are rejected.
func (c *Cart) AddItem(p *model.Product) error {
	if p.Status != model.StatusAvailable {
		return model.Errf(model.ErrProductNotAvailable,
			"product %q is %s and cannot be added to a sale", p.Title, p.Status)
	}
	if line, ok := c.lines[p.ID]; ok {
		if line.Quantity >= p.Quantity {
			return nil
		}
		line.Quantity++
		return nil
	}
	if p.Quantity <= 0 {
		return nil
	}
	c.lines[p.ID] = &Line{Product: *p, Quantity: 1}
	c.order = append(c.order, p.ID)
	return nil
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less
// removes the line; a quantity above the product's stock is rejected and
// leaves the line unchanged.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	line, ok := c.lines[productID]
	if !ok {
		return model.Errf(model.ErrNotFound, "product %s is not in the cart", productID)
	}
	if quantity <= 0 {
		c.RemoveItem(productID)
		return nil
	}
	if quantity > line.Product.Quantity {
		return model.Errf(model.ErrInsufficientStock,
			"cannot sell %d of %q, only %d in stock", quantity, line.Product.Title, line.Product.Quantity)
	}
	line.Quantity = quantity
	return nil
}

// RemoveItem drops the line unconditionally.
func (c *Cart) RemoveItem(productID string) {
	if _, ok := c.lines[productID]; !ok {
		return
	}
	delete(c.lines, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// ApplyLineDiscount replaces or, with a nil discount, clears the line's
// discount. The descriptor is validated against the line's pre-discount
// subtotal before it is accepted. Clearing an already clear discount is a
// no-op.
func (c *Cart) ApplyLineDiscount(productID string, d *model.Discount) error {
	line, ok := c.lines[productID]
	if !ok {
		return model.Errf(model.ErrNotFound, "product %s is not in the cart", productID)
	}
	if err := Validate(d, line.Subtotal()); err != nil {
		return err
	}
	line.Discount = d
	return nil
}

// ApplyOrderDiscount sets or, with nil, clears the single cart-wide
// discount, validated against the pre-order total (subtotal minus line
// discounts).
func (c *Cart) ApplyOrderDiscount(d *model.Discount) error {
	t := c.Totals()
	if err := Validate(d, t.Subtotal.Sub(t.LineDiscountTotal)); err != nil {
		return err
	}
	c.orderDiscount = d
	return nil
}

// OrderDiscount returns the cart-wide discount, if any.
func (c *Cart) OrderDiscount() *model.Discount {
	return c.orderDiscount
}

// Len is the number of lines in the cart.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns copies of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// Totals computes the cart's subtotal, the sum of all per-line discounts,
// and the payable total after the order-level discount, floored at zero.
func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	lineDiscounts := decimal.Zero
	for _, id := range c.order {
		line := c.lines[id]
		lineSub := line.Subtotal()
		subtotal = subtotal.Add(lineSub)
		lineDiscounts = lineDiscounts.Add(lineSub.Sub(line.Discounted()))
	}
	preOrder := subtotal.Sub(lineDiscounts)
	return Totals{
		Subtotal:          subtotal,
		LineDiscountTotal: lineDiscounts,
		Total:             Apply(preOrder, c.orderDiscount),
	}
}
