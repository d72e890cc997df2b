package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/model"
	"pos-service/internal/reservation"
	"pos-service/internal/store"
	"pos-service/pkg/logger"
	"pos-service/prometheus"
)

// ProductHandler exposes the catalog plus the reservation transitions.
type ProductHandler struct {
	store       store.Store
	coordinator *reservation.Coordinator
}

// NewProductHandler wires the catalog behind HTTP.
func NewProductHandler(s store.Store, r *reservation.Coordinator) *ProductHandler {
	return &ProductHandler{store: s, coordinator: r}
}

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	SupplierID string          `json:"supplier_id"`
	Title      string          `json:"title"`
	PhotoURL   string          `json:"photo_url"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	Barcode    *string         `json:"barcode"`
}

func (r *ProductRequest) validate() error {
	if r.Title == "" {
		return model.Errf(model.ErrInvalidRequest, "title is required")
	}
	if r.SupplierID == "" {
		return model.Errf(model.ErrInvalidRequest, "supplier_id is required")
	}
	if r.Price.IsNegative() {
		return model.Errf(model.ErrInvalidAmount, "price %s cannot be negative", r.Price)
	}
	if r.Quantity < 0 {
		return model.Errf(model.ErrInvalidAmount, "quantity %d cannot be negative", r.Quantity)
	}
	return nil
}

// ListProducts handles retrieving all products with optional filtering
func (h *ProductHandler) ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	f := store.ProductFilter{
		SupplierID: c.QueryParam("supplier_id"),
		Status:     model.ProductStatus(c.QueryParam("status")),
	}
	products, err := h.store.Products().List(c.Request().Context(), f)
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, products)
}

// GetProduct handles retrieving a single product by ID
func (h *ProductHandler) GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	product, err := h.store.Products().Get(c.Request().Context(), id)
	if err != nil {
		log.Warn("Product not found", zap.String("product_id", id), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles creating a new product
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid product request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := req.validate(); err != nil {
		return respondError(c, err)
	}

	product := model.Product{
		ID:         uuid.NewString(),
		SupplierID: req.SupplierID,
		Title:      req.Title,
		PhotoURL:   req.PhotoURL,
		Price:      req.Price,
		Quantity:   req.Quantity,
		Status:     model.StatusAvailable,
		Barcode:    req.Barcode,
	}
	if err := h.store.Products().Create(c.Request().Context(), &product); err != nil {
		log.Error("Failed to create product", zap.String("title", req.Title), zap.Error(err))
		return respondError(c, err)
	}

	prometheus.UpdateProductInventory(product.ID, product.Title, float64(product.Quantity))
	log.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("title", product.Title))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles updating an existing product's catalog fields.
// Status and ownership are not editable here; they only move through the
// reservation and checkout flows.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid product request", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if err := req.validate(); err != nil {
		return respondError(c, err)
	}

	product, err := h.store.Products().Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	product.SupplierID = req.SupplierID
	product.Title = req.Title
	product.PhotoURL = req.PhotoURL
	product.Price = req.Price
	product.Quantity = req.Quantity
	product.Barcode = req.Barcode
	if err := h.store.Products().Update(c.Request().Context(), product); err != nil {
		log.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		return respondError(c, err)
	}

	prometheus.UpdateProductInventory(product.ID, product.Title, float64(product.Quantity))
	log.Info("Product updated", zap.String("product_id", id))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles withdrawing a product (soft delete)
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	if err := h.store.Products().Delete(c.Request().Context(), id); err != nil {
		log.Warn("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Product withdrawn", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "product withdrawn"})
}

// Reserve holds the product for a client ("apartado")
func (h *ProductHandler) Reserve(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req struct {
		ClientID string `json:"client_id"`
	}
	if err := c.Bind(&req); err != nil || req.ClientID == "" {
		log.Warn("Invalid reserve request", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id is required"})
	}

	product, err := h.coordinator.Reserve(c.Request().Context(), id, req.ClientID)
	if err != nil {
		log.Warn("Reservation rejected",
			zap.String("product_id", id),
			zap.String("client_id", req.ClientID),
			zap.Error(err))
		prometheus.RecordReservationOperation("reserve_failed")
		return respondError(c, err)
	}

	prometheus.RecordReservationOperation("reserve")
	return c.JSON(http.StatusOK, product)
}

// Liquidate settles a single reserved product against its owner's balance
func (h *ProductHandler) Liquidate(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	txn, err := h.coordinator.LiquidateOne(c.Request().Context(), id)
	if err != nil {
		log.Warn("Liquidation rejected", zap.String("product_id", id), zap.Error(err))
		prometheus.RecordReservationOperation("liquidate_failed")
		return respondError(c, err)
	}

	prometheus.RecordReservationOperation("liquidate")
	prometheus.RecordLedgerOperation("debit")
	return c.JSON(http.StatusOK, txn)
}
