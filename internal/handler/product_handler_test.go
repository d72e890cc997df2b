package handler

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/internal/model"
)

func TestProductRequestValidateKinds(t *testing.T) {
	valid := ProductRequest{
		SupplierID: "sup-1",
		Title:      "Blusa",
		Price:      decimal.NewFromInt(100),
		Quantity:   3,
	}
	require.NoError(t, valid.validate())

	cases := []struct {
		name   string
		mutate func(*ProductRequest)
		kind   model.ErrKind
	}{
		{"missing title", func(r *ProductRequest) { r.Title = "" }, model.ErrInvalidRequest},
		{"missing supplier", func(r *ProductRequest) { r.SupplierID = "" }, model.ErrInvalidRequest},
		{"negative price", func(r *ProductRequest) { r.Price = decimal.NewFromInt(-1) }, model.ErrInvalidAmount},
		{"negative quantity", func(r *ProductRequest) { r.Quantity = -1 }, model.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			err := req.validate()
			require.Error(t, err)
			assert.Equal(t, tc.kind, model.KindOf(err))
		})
	}
}

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		kind   model.ErrKind
		status int
	}{
		{model.ErrNotFound, http.StatusNotFound},
		{model.ErrProductNotAvailable, http.StatusConflict},
		{model.ErrInsufficientStock, http.StatusConflict},
		{model.ErrInsufficientBalance, http.StatusPaymentRequired},
		{model.ErrInvalidDiscount, http.StatusBadRequest},
		{model.ErrInvalidAmount, http.StatusBadRequest},
		{model.ErrEmptyCart, http.StatusBadRequest},
		{model.ErrInvalidPayment, http.StatusBadRequest},
		{model.ErrInvalidRequest, http.StatusBadRequest},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, httpStatus(model.Errf(tc.kind, "x")), "kind %s", tc.kind)
	}
	assert.Equal(t, http.StatusInternalServerError, httpStatus(assert.AnError))
}
