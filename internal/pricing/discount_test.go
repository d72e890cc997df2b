package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func pct(v string) *model.Discount {
	return &model.Discount{Type: model.DiscountPercentage, Value: dec(v)}
}

func fixed(v string) *model.Discount {
	return &model.Discount{Type: model.DiscountFixed, Value: dec(v)}
}

func TestApplyNilDiscountReturnsBase(t *testing.T) {
	for _, base := range []string{"0", "1", "99.99", "1200.50"} {
		got := Apply(dec(base), nil)
		assert.True(t, got.Equal(dec(base)), "base %s, got %s", base, got)
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		value string
		want  string
	}{
		{"ten percent", "150", "10", "135"},
		{"half", "200", "50", "100"},
		{"full discount is zero", "750", "100", "0"},
		{"fractional base", "99.90", "10", "89.91"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(dec(tt.base), pct(tt.value))
			assert.True(t, got.Equal(dec(tt.want)), "want %s, got %s", tt.want, got)
		})
	}
}

func TestApplyFixed(t *testing.T) {
	got := Apply(dec("200"), fixed("50"))
	assert.True(t, got.Equal(dec("150")), "got %s", got)

	// clamped at zero even when the value exceeds the base
	got = Apply(dec("30"), fixed("50"))
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestValidatePercentageBounds(t *testing.T) {
	base := dec("100")

	require.NoError(t, Validate(pct("0.5"), base))
	require.NoError(t, Validate(pct("100"), base))

	for _, v := range []string{"0", "-5", "100.01", "150"} {
		err := Validate(pct(v), base)
		require.Error(t, err, "percentage %s", v)
		assert.Equal(t, model.ErrInvalidDiscount, model.KindOf(err))
	}
}

func TestValidateFixedBounds(t *testing.T) {
	base := dec("100")

	require.NoError(t, Validate(fixed("100"), base))
	require.NoError(t, Validate(fixed("0.01"), base))

	for _, v := range []string{"0", "-1", "100.01"} {
		err := Validate(fixed(v), base)
		require.Error(t, err, "fixed %s", v)
		assert.Equal(t, model.ErrInvalidDiscount, model.KindOf(err))
	}
}

func TestValidateNilIsAlwaysValid(t *testing.T) {
	require.NoError(t, Validate(nil, dec("0")))
}

func TestValidateUnknownType(t *testing.T) {
	err := Validate(&model.Discount{Type: "coupon", Value: dec("5")}, dec("100"))
	require.Error(t, err)
	assert.Equal(t, model.ErrInvalidDiscount, model.KindOf(err))
}
