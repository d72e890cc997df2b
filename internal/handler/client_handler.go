package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/internal/ledger"
	"pos-service/internal/model"
	"pos-service/internal/reservation"
	"pos-service/internal/store"
	"pos-service/pkg/logger"
	"pos-service/prometheus"
)

// ClientHandler exposes client accounts: CRUD, deposits, transaction
// history and batch liquidation.
type ClientHandler struct {
	store       store.Store
	ledger      *ledger.Ledger
	coordinator *reservation.Coordinator
}

// NewClientHandler wires the client ledger behind HTTP.
func NewClientHandler(s store.Store, l *ledger.Ledger, r *reservation.Coordinator) *ClientHandler {
	return &ClientHandler{store: s, ledger: l, coordinator: r}
}

// ClientRequest defines the structure for client creation/update requests
type ClientRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ListClients handles retrieving all clients
func (h *ClientHandler) ListClients(c echo.Context) error {
	log := logger.FromContext(c)

	clients, err := h.store.Clients().List(c.Request().Context())
	if err != nil {
		log.Error("Failed to list clients", zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, clients)
}

// GetClient handles retrieving a single client by ID
func (h *ClientHandler) GetClient(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	client, err := h.store.Clients().Get(c.Request().Context(), id)
	if err != nil {
		log.Warn("Client not found", zap.String("client_id", id), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, client)
}

// CreateClient handles creating a new client with a zero balance
func (h *ClientHandler) CreateClient(c echo.Context) error {
	log := logger.FromContext(c)

	var req ClientRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		log.Warn("Invalid client request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	client := model.Client{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Phone:   req.Phone,
		Balance: decimal.Zero,
	}
	if err := h.store.Clients().Create(c.Request().Context(), &client); err != nil {
		log.Error("Failed to create client", zap.String("name", req.Name), zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Client created",
		zap.String("client_id", client.ID),
		zap.String("name", client.Name))
	return c.JSON(http.StatusCreated, client)
}

// UpdateClient handles updating a client's contact details
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req ClientRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		log.Warn("Invalid client request", zap.String("client_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	client, err := h.store.Clients().Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	client.Name = req.Name
	client.Phone = req.Phone
	if err := h.store.Clients().Update(c.Request().Context(), client); err != nil {
		log.Error("Failed to update client", zap.String("client_id", id), zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Client updated", zap.String("client_id", id))
	return c.JSON(http.StatusOK, client)
}

// DeleteClient handles deleting a client (soft delete)
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	if err := h.store.Clients().Delete(c.Request().Context(), id); err != nil {
		log.Warn("Failed to delete client", zap.String("client_id", id), zap.Error(err))
		return respondError(c, err)
	}

	log.Info("Client deleted", zap.String("client_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "client deleted"})
}

// AddPayment records a deposit ("abono") on the client's account
func (h *ClientHandler) AddPayment(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req struct {
		Amount  decimal.Decimal `json:"amount"`
		Details string          `json:"details"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid payment request", zap.String("client_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	txn, err := h.ledger.Deposit(c.Request().Context(), id, req.Amount, req.Details)
	if err != nil {
		log.Warn("Deposit rejected",
			zap.String("client_id", id),
			zap.String("amount", req.Amount.String()),
			zap.Error(err))
		return respondError(c, err)
	}

	prometheus.RecordLedgerOperation("deposit")
	return c.JSON(http.StatusCreated, txn)
}

// ListTransactions returns the client's ledger history, most recent first
func (h *ClientHandler) ListTransactions(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	txns, err := h.ledger.History(c.Request().Context(), id)
	if err != nil {
		log.Warn("Failed to list transactions", zap.String("client_id", id), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, txns)
}

// ListReservations returns the products currently reserved for the client
func (h *ClientHandler) ListReservations(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	products, err := h.coordinator.ReservedFor(c.Request().Context(), id)
	if err != nil {
		log.Warn("Failed to list reservations", zap.String("client_id", id), zap.Error(err))
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, products)
}

// LiquidateAll settles every reservation the client has, all or nothing
func (h *ClientHandler) LiquidateAll(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	txns, err := h.coordinator.LiquidateAll(c.Request().Context(), id)
	if err != nil {
		log.Warn("Batch liquidation rejected", zap.String("client_id", id), zap.Error(err))
		prometheus.RecordReservationOperation("liquidate_all_failed")
		return respondError(c, err)
	}

	prometheus.RecordReservationOperation("liquidate_all")
	log.Info("Batch liquidation completed",
		zap.String("client_id", id),
		zap.Int("count", len(txns)))
	return c.JSON(http.StatusOK, echo.Map{"transactions": txns})
}
