package store

import (
	"context"
	"errors"
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

func seedMemory(t *testing.T) *Memory {
	t.Helper()
	mem := NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Products().Create(ctx, &model.Product{
		ID: "p1", SupplierID: "sup-1", Title: "Falda", Price: dec("420"),
		Quantity: 3, Status: model.StatusAvailable,
	}))
	require.NoError(t, mem.Clients().Create(ctx, &model.Client{
		ID: "c1", Name: "Sofía", Balance: dec("100"),
	}))
	return mem
}

func TestAtomicallyRollsBackEveryMutation(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := mem.Atomically(ctx, func(s Store) error {
		require.NoError(t, s.Products().DecrementStock(ctx, "p1", 2))
		require.NoError(t, s.Clients().AdjustBalance(ctx, "c1", dec("-100")))
		require.NoError(t, s.Transactions().Append(ctx, &model.Transaction{
			ID: "t1", ClientID: "c1", Type: model.TxDeposit, Amount: dec("-100"),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Quantity)
	c, err := mem.Clients().Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.Balance.Equal(dec("100")))
	txns, err := mem.Transactions().ForClient(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestAtomicallyCommitsOnSuccess(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()

	err := mem.Atomically(ctx, func(s Store) error {
		return s.Products().DecrementStock(ctx, "p1", 1)
	})
	require.NoError(t, err)

	p, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Quantity)
}

func TestNestedAtomicallyJoinsOuterScope(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := mem.Atomically(ctx, func(s Store) error {
		if err := s.Atomically(ctx, func(inner Store) error {
			return inner.Products().DecrementStock(ctx, "p1", 1)
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Quantity, "inner work must roll back with the outer scope")
}

func TestDecrementStockNeverGoesNegative(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()

	err := mem.Products().DecrementStock(ctx, "p1", 4)
	require.Error(t, err)
	assert.Equal(t, model.ErrInsufficientStock, model.KindOf(err))
	assert.Contains(t, err.Error(), "Falda")

	p, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Quantity)
}

func TestAdjustBalanceNeverGoesNegative(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()

	err := mem.Clients().AdjustBalance(ctx, "c1", dec("-100.01"))
	require.Error(t, err)
	assert.Equal(t, model.ErrInsufficientBalance, model.KindOf(err))

	require.NoError(t, mem.Clients().AdjustBalance(ctx, "c1", dec("-100")))
	c, err := mem.Clients().Get(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.Balance.IsZero())
}

func TestSetAvailabilityOwnsClientIDWithStatus(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()

	require.NoError(t, mem.Products().SetAvailability(ctx, "p1", model.StatusAvailable, model.ReservedBy("c1")))
	p, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusReserved, p.Status)
	require.NotNil(t, p.ClientID)
	assert.Equal(t, "c1", *p.ClientID)

	require.NoError(t, mem.Products().SetAvailability(ctx, "p1", model.StatusReserved, model.SoldOut()))
	p, err = mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSold, p.Status)
	assert.Nil(t, p.ClientID, "only reserved products carry an owner")

	require.NoError(t, mem.Products().SetAvailability(ctx, "p1", model.StatusSold, model.Available()))
	p, err = mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, p.Status)
	assert.Nil(t, p.ClientID)
}

func TestSetAvailabilityRequiresExpectedPriorStatus(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()

	require.NoError(t, mem.Products().SetAvailability(ctx, "p1", model.StatusAvailable, model.ReservedBy("c1")))

	// a second reservation raced the first and lost
	err := mem.Products().SetAvailability(ctx, "p1", model.StatusAvailable, model.ReservedBy("c2"))
	require.Error(t, err)
	assert.Equal(t, model.ErrProductNotAvailable, model.KindOf(err))

	p, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, p.ClientID)
	assert.Equal(t, "c1", *p.ClientID, "the losing transition must not overwrite the owner")

	require.NoError(t, mem.Products().SetAvailability(ctx, "p1", model.StatusReserved, model.SoldOut()))

	// a second liquidation racing the first fails the same way
	err = mem.Products().SetAvailability(ctx, "p1", model.StatusReserved, model.SoldOut())
	require.Error(t, err)
	assert.Equal(t, model.ErrProductNotAvailable, model.KindOf(err))
}

func TestGetReturnsDetachedCopies(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()

	p, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	p.Quantity = 999
	p.Title = "mutated"

	fresh, err := mem.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.Quantity)
	assert.Equal(t, "Falda", fresh.Title)
}

func TestTransactionsForClientNewestFirst(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, mem.Transactions().Append(ctx, &model.Transaction{
			ID: id, ClientID: "c1", Type: model.TxDeposit, Amount: dec("10"),
		}))
	}

	txns, err := mem.Transactions().ForClient(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "t3", txns[0].ID)
	assert.Equal(t, "t1", txns[2].ID)
}
