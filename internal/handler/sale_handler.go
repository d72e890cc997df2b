package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pos-service/internal/store"
	"pos-service/pkg/logger"
)

// SaleHandler reads the append-only sales ledger for receipts and review.
type SaleHandler struct {
	store store.Store
}

// NewSaleHandler wires the sales ledger behind HTTP.
func NewSaleHandler(s store.Store) *SaleHandler {
	return &SaleHandler{store: s}
}

// ListSales returns all sales, most recent first
func (h *SaleHandler) ListSales(c echo.Context) error {
	log := logger.FromContext(c)

	sales, err := h.store.Sales().List(c.Request().Context())
	if err != nil {
		log.Error("Failed to list sales", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, sales)
}

// GetSale returns a single sale, e.g. for receipt display
func (h *SaleHandler) GetSale(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	sale, err := h.store.Sales().Get(c.Request().Context(), id)
	if err != nil {
		log.Warn("Sale not found", zap.String("sale_id", id), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, sale)
}
