// Package pricing holds the checkout pricing core: the discount evaluator
// and the cart engine. Everything here is pure in-memory computation; stock
// and ledgers are only touched at commit time by the checkout package.
package pricing

import (
	"github.com/shopspring/decimal"

	"pos-service/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Apply returns base after applying d. A nil discount returns base
// unchanged. The result is clamped at zero and never negative. Apply
// assumes d already passed Validate; it never fails.
func Apply(base decimal.Decimal, d *model.Discount) decimal.Decimal {
	if d == nil {
		return base
	}
	var out decimal.Decimal
	switch d.Type {
	case model.DiscountPercentage:
		out = base.Sub(base.Mul(d.Value).Div(hundred))
	case model.DiscountFixed:
		out = base.Sub(d.Value)
	default:
		return base
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// Validate checks a discount descriptor against the base amount it will
// apply to. Percentage values must lie in (0, 100]; fixed values must be
// positive and no larger than the base. A nil discount is always valid.
// This is the single acceptance gate; Apply itself does not re-check.
func Validate(d *model.Discount, base decimal.Decimal) error {
	if d == nil {
		return nil
	}
	switch d.Type {
	case model.DiscountPercentage:
		if !d.Value.IsPositive() || d.Value.GreaterThan(hundred) {
			return model.Errf(model.ErrInvalidDiscount,
				"percentage discount %s%% must be greater than 0 and at most 100", d.Value)
		}
	case model.DiscountFixed:
		if !d.Value.IsPositive() {
			return model.Errf(model.ErrInvalidDiscount,
				"fixed discount %s must be greater than 0", d.Value)
		}
		if d.Value.GreaterThan(base) {
			return model.Errf(model.ErrInvalidDiscount,
				"fixed discount %s exceeds the %s it applies to", d.Value, base)
		}
	default:
		return model.Errf(model.ErrInvalidDiscount, "unknown discount type %q", d.Type)
	}
	return nil
}
