package reservation

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pos-service/internal/model"
	"pos-service/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedClient(t *testing.T, mem *store.Memory, id, balance string) {
	t.Helper()
	require.NoError(t, mem.Clients().Create(context.Background(), &model.Client{
		ID:      id,
		Name:    "Mariana",
		Balance: dec(balance),
	}))
}

func seedProduct(t *testing.T, mem *store.Memory, id, title, price string) {
	t.Helper()
	require.NoError(t, mem.Products().Create(context.Background(), &model.Product{
		ID:         id,
		SupplierID: "sup-1",
		Title:      title,
		Price:      dec(price),
		Quantity:   1,
		Status:     model.StatusAvailable,
	}))
}

func reserve(t *testing.T, coord *Coordinator, productID, clientID string) {
	t.Helper()
	_, err := coord.Reserve(context.Background(), productID, clientID)
	require.NoError(t, err)
}

func TestReserveHoldsStatusAndOwnerOnly(t *testing.T) {
	mem := store.NewMemory()
	seedClient(t, mem, "c1", "0")
	seedProduct(t, mem, "p1", "Aretes de Plata", "300")
	coord := New(mem, zap.NewNop())
	ctx := context.Background()

	p, err := coord.Reserve(ctx, "p1", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReserved, p.Status)
	require.NotNil(t, p.ClientID)
	assert.Equal(t, "c1", *p.ClientID)

	got, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReserved, got.Status)
	assert.Equal(t, 1, got.Quantity, "reserving must not consume stock")

	// no money moved
	txns, err := mem.Transactions().ForClient(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestReserveRejectsNonAvailableProduct(t *testing.T) {
	mem := store.NewMemory()
	seedClient(t, mem, "c1", "0")
	seedClient(t, mem, "c2", "0")
	seedProduct(t, mem, "p1", "Collar", "450")
	coord := New(mem, zap.NewNop())
	ctx := context.Background()

	reserve(t, coord, "p1", "c1")

	_, err := coord.Reserve(ctx, "p1", "c2")
	require.Error(t, err)
	assert.Equal(t, model.ErrProductNotAvailable, model.KindOf(err))

	// the original hold is untouched
	got, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got.ClientID)
	assert.Equal(t, "c1", *got.ClientID)
}

func TestReserveRequiresKnownClient(t *testing.T) {
	mem := store.NewMemory()
	seedProduct(t, mem, "p1", "Collar", "450")
	coord := New(mem, zap.NewNop())

	_, err := coord.Reserve(context.Background(), "p1", "ghost")
	require.Error(t, err)
	assert.Equal(t, model.ErrNotFound, model.KindOf(err))
}

func TestLiquidateOneDebitsAndSells(t *testing.T) {
	mem := store.NewMemory()
	seedClient(t, mem, "c1", "500")
	seedProduct(t, mem, "p1", "Vestido Floral", "300")
	coord := New(mem, zap.NewNop())
	ctx := context.Background()

	reserve(t, coord, "p1", "c1")

	txn, err := coord.LiquidateOne(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.TxLiquidation, txn.Type)
	assert.True(t, txn.Amount.Equal(dec("-300")), "amount %s", txn.Amount)
	assert.Equal(t, "Liquidación: Vestido Floral", txn.Details)

	client, err := mem.Clients().Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, client.Balance.Equal(dec("200")), "balance %s", client.Balance)

	got, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSold, got.Status)
	assert.Nil(t, got.ClientID, "sold products carry no owner")
}

func TestLiquidateOneRejectsUnreservedProduct(t *testing.T) {
	mem := store.NewMemory()
	seedProduct(t, mem, "p1", "Vestido", "300")
	coord := New(mem, zap.NewNop())

	_, err := coord.LiquidateOne(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, model.ErrProductNotAvailable, model.KindOf(err))
}

func TestLiquidateOneInsufficientBalanceLeavesHold(t *testing.T) {
	mem := store.NewMemory()
	seedClient(t, mem, "c1", "100")
	seedProduct(t, mem, "p1", "Vestido", "300")
	coord := New(mem, zap.NewNop())
	ctx := context.Background()

	reserve(t, coord, "p1", "c1")

	_, err := coord.LiquidateOne(ctx, "p1")
	require.Error(t, err)
	assert.Equal(t, model.ErrInsufficientBalance, model.KindOf(err))

	got, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReserved, got.Status)
	client, err := mem.Clients().Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, client.Balance.Equal(dec("100")))
	txns, err := mem.Transactions().ForClient(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestLiquidateAllInsufficientBalanceChangesNothing(t *testing.T) {
	mem := store.NewMemory()
	seedClient(t, mem, "c1", "500")
	seedProduct(t, mem, "p1", "Bolso de Piel", "300")
	seedProduct(t, mem, "p2", "Zapatos", "250")
	coord := New(mem, zap.NewNop())
	ctx := context.Background()

	reserve(t, coord, "p1", "c1")
	reserve(t, coord, "p2", "c1")

	_, err := coord.LiquidateAll(ctx, "c1")
	require.Error(t, err)
	assert.Equal(t, model.ErrInsufficientBalance, model.KindOf(err))

	client, err := mem.Clients().Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, client.Balance.Equal(dec("500")), "balance %s", client.Balance)

	for _, id := range []string{"p1", "p2"} {
		got, err := mem.Products().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusReserved, got.Status)
		require.NotNil(t, got.ClientID)
		assert.Equal(t, "c1", *got.ClientID)
	}
	txns, err := mem.Transactions().ForClient(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, txns, "a failed batch must leave no partial transactions")
}

func TestLiquidateAllSettlesEveryReservation(t *testing.T) {
	mem := store.NewMemory()
	seedClient(t, mem, "c1", "600")
	seedProduct(t, mem, "p1", "Bolso de Piel", "300")
	seedProduct(t, mem, "p2", "Zapatos", "250")
	seedProduct(t, mem, "p3", "Cinturón", "999")
	coord := New(mem, zap.NewNop())
	ctx := context.Background()

	reserve(t, coord, "p1", "c1")
	reserve(t, coord, "p2", "c1")
	// p3 stays available and must not be touched

	txns, err := coord.LiquidateAll(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, model.TxLiquidation, txn.Type)
		assert.True(t, txn.Amount.IsNegative())
	}

	client, err := mem.Clients().Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, client.Balance.Equal(dec("50")), "balance %s", client.Balance)

	for _, id := range []string{"p1", "p2"} {
		got, err := mem.Products().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusSold, got.Status)
		assert.Nil(t, got.ClientID)
	}
	untouched, err := mem.Products().Get(ctx, "p3")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, untouched.Status)

	remaining, err := coord.ReservedFor(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestLiquidateAllWithNoReservationsIsANoOp(t *testing.T) {
	mem := store.NewMemory()
	seedClient(t, mem, "c1", "600")
	coord := New(mem, zap.NewNop())

	txns, err := coord.LiquidateAll(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, txns)

	client, err := mem.Clients().Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, client.Balance.Equal(dec("600")))
}
