package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pos-service/internal/checkout"
	"pos-service/internal/model"
	"pos-service/internal/pricing"
	"pos-service/internal/store"
	"pos-service/pkg/logger"
	"pos-service/prometheus"
)

// POSHandler exposes the checkout flow: cart sessions, line edits,
// discounts and the final commit.
type POSHandler struct {
	sessions  *checkout.Sessions
	committer *checkout.Committer
	store     store.Store
}

// NewPOSHandler wires the checkout engine behind HTTP.
func NewPOSHandler(sessions *checkout.Sessions, committer *checkout.Committer, s store.Store) *POSHandler {
	return &POSHandler{sessions: sessions, committer: committer, store: s}
}

// DiscountRequest carries an optional discount descriptor; a null body
// clears the discount.
type DiscountRequest struct {
	Discount *model.Discount `json:"discount"`
}

type cartView struct {
	Lines  []pricing.Line `json:"lines"`
	Totals pricing.Totals `json:"totals"`
}

func viewOf(cart *pricing.Cart) cartView {
	return cartView{Lines: cart.Lines(), Totals: cart.Totals()}
}

// OpenCart starts a new checkout session with an empty cart
func (h *POSHandler) OpenCart(c echo.Context) error {
	log := logger.FromContext(c)
	id := h.sessions.Open()
	log.Info("Cart session opened", zap.String("cart_id", id))
	return c.JSON(http.StatusCreated, echo.Map{"cart_id": id})
}

// GetCart returns the cart's lines and computed totals
func (h *POSHandler) GetCart(c echo.Context) error {
	var view cartView
	err := h.sessions.With(c.Param("id"), func(cart *pricing.Cart) error {
		view = viewOf(cart)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// AddItem puts one unit of a product in the cart
func (h *POSHandler) AddItem(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == "" {
		log.Warn("Invalid add-item request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id is required"})
	}

	product, err := h.store.Products().Get(c.Request().Context(), req.ProductID)
	if err != nil {
		log.Warn("Product lookup failed", zap.String("product_id", req.ProductID), zap.Error(err))
		return respondError(c, err)
	}

	var view cartView
	err = h.sessions.With(c.Param("id"), func(cart *pricing.Cart) error {
		if err := cart.AddItem(product); err != nil {
			return err
		}
		view = viewOf(cart)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Item added to cart",
		zap.String("cart_id", c.Param("id")),
		zap.String("product_id", req.ProductID))
	return c.JSON(http.StatusOK, view)
}

// UpdateItem changes a line's quantity; zero or less removes the line
func (h *POSHandler) UpdateItem(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid update-item request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	productID := c.Param("productId")
	var view cartView
	err := h.sessions.With(c.Param("id"), func(cart *pricing.Cart) error {
		if err := cart.UpdateQuantity(productID, req.Quantity); err != nil {
			return err
		}
		view = viewOf(cart)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Cart line updated",
		zap.String("cart_id", c.Param("id")),
		zap.String("product_id", productID),
		zap.Int("quantity", req.Quantity))
	return c.JSON(http.StatusOK, view)
}

// RemoveItem deletes a line from the cart
func (h *POSHandler) RemoveItem(c echo.Context) error {
	productID := c.Param("productId")
	var view cartView
	err := h.sessions.With(c.Param("id"), func(cart *pricing.Cart) error {
		cart.RemoveItem(productID)
		view = viewOf(cart)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// ApplyItemDiscount sets or clears a line's discount
func (h *POSHandler) ApplyItemDiscount(c echo.Context) error {
	log := logger.FromContext(c)

	var req DiscountRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid line discount request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	productID := c.Param("productId")
	var view cartView
	err := h.sessions.With(c.Param("id"), func(cart *pricing.Cart) error {
		if err := cart.ApplyLineDiscount(productID, req.Discount); err != nil {
			return err
		}
		view = viewOf(cart)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Line discount applied",
		zap.String("cart_id", c.Param("id")),
		zap.String("product_id", productID))
	return c.JSON(http.StatusOK, view)
}

// ApplyOrderDiscount sets or clears the cart-wide discount
func (h *POSHandler) ApplyOrderDiscount(c echo.Context) error {
	log := logger.FromContext(c)

	var req DiscountRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid order discount request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	var view cartView
	err := h.sessions.With(c.Param("id"), func(cart *pricing.Cart) error {
		if err := cart.ApplyOrderDiscount(req.Discount); err != nil {
			return err
		}
		view = viewOf(cart)
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Order discount applied", zap.String("cart_id", c.Param("id")))
	return c.JSON(http.StatusOK, view)
}

// Checkout commits the cart as a sale and closes the session
func (h *POSHandler) Checkout(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		PaymentMethod model.PaymentMethod `json:"payment_method"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid checkout request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	cartID := c.Param("id")
	var sale *model.Sale
	// Consume retires the session under its lock, so a duplicate checkout
	// request cannot commit the same cart twice.
	err := h.sessions.Consume(cartID, func(cart *pricing.Cart) error {
		var err error
		sale, err = h.committer.Commit(c.Request().Context(), cart, req.PaymentMethod)
		return err
	})
	if err != nil {
		log.Warn("Checkout failed", zap.String("cart_id", cartID), zap.Error(err))
		prometheus.RecordSaleOperation("failed")
		return respondError(c, err)
	}

	prometheus.RecordSaleOperation("committed")
	for _, item := range sale.Items {
		if p, err := h.store.Products().Get(c.Request().Context(), item.ProductID); err == nil {
			prometheus.UpdateProductInventory(p.ID, p.Title, float64(p.Quantity))
		}
	}

	log.Info("Sale committed",
		zap.String("cart_id", cartID),
		zap.String("sale_id", sale.ID),
		zap.String("total", sale.Total.String()))
	return c.JSON(http.StatusCreated, sale)
}

// CancelCart discards the session without committing anything
func (h *POSHandler) CancelCart(c echo.Context) error {
	log := logger.FromContext(c)
	h.sessions.Close(c.Param("id"))
	log.Info("Cart session cancelled", zap.String("cart_id", c.Param("id")))
	return c.JSON(http.StatusOK, echo.Map{"message": "cart discarded"})
}
