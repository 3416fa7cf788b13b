package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflex/ops-engine/gym"
	"github.com/gymflex/ops-engine/sales"
	"github.com/gymflex/ops-engine/store/memory"
)

var posNow = time.Date(2025, time.June, 10, 17, 45, 0, 0, time.UTC)

func newPOS(t *testing.T) (*sales.Service, *memory.Memory, *gym.Product) {
	t.Helper()
	store := memory.New()
	svc := sales.NewService(store)
	svc.Now = func() time.Time { return posNow }

	product := &gym.Product{
		ID:    gym.NewProductID(),
		Name:  "Proteína 1kg",
		Price: gym.NewMoney(45.50),
		Stock: 10,
	}
	require.NoError(t, store.SaveProduct(context.Background(), product))
	return svc, store, product
}

func TestSell_DecrementsStockAndRecordsSale(t *testing.T) {
	// GIVEN: A product with 10 units in stock
	// WHEN: Selling 2 units to a walk-in customer
	// THEN: Stock drops to 8 and one product_sale transaction is written

	svc, store, product := newPOS(t)
	ctx := context.Background()

	tx, err := svc.Sell(ctx, product.ID, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, "2x Proteína 1kg", tx.ItemDescription)
	assert.Equal(t, "91.00", tx.Amount.String())
	assert.Equal(t, gym.TxProductSale, tx.Type)
	assert.Equal(t, "Cliente General", tx.ClientName)
	assert.Nil(t, tx.ClientID)
	assert.Equal(t, posNow, tx.Date)

	updated, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, updated.Stock)

	txs, err := store.ListTransactions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, tx.ID, txs[0].ID)
}

func TestSell_NamedClient(t *testing.T) {
	svc, store, product := newPOS(t)
	ctx := context.Background()

	client := &gym.Client{
		ID:           gym.NewClientID(),
		HumanCode:    "1001a",
		FirstName:    "Ana",
		LastName:     "Torres",
		RegisteredAt: posNow,
		Status:       gym.StatusInactive,
	}
	require.NoError(t, store.CreateClient(ctx, client))

	tx, err := svc.Sell(ctx, product.ID, 1, &client.ID)
	require.NoError(t, err)

	assert.Equal(t, "Ana Torres", tx.ClientName)
	require.NotNil(t, tx.ClientID)
	assert.Equal(t, client.ID, *tx.ClientID)
	assert.Equal(t, "45.50", tx.Amount.String())
}

func TestSell_InsufficientStockRollsBack(t *testing.T) {
	// GIVEN: A product with 10 units
	// WHEN: Selling 11
	// THEN: The sale fails and neither stock nor the ledger changes

	svc, store, product := newPOS(t)
	ctx := context.Background()

	_, err := svc.Sell(ctx, product.ID, 11, nil)
	assert.ErrorIs(t, err, gym.ErrInsufficientStock)

	unchanged, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, unchanged.Stock)

	txs, err := store.ListTransactions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSell_ExactStockSellsOut(t *testing.T) {
	svc, store, product := newPOS(t)
	ctx := context.Background()

	_, err := svc.Sell(ctx, product.ID, 10, nil)
	require.NoError(t, err)

	updated, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)

	_, err = svc.Sell(ctx, product.ID, 1, nil)
	assert.ErrorIs(t, err, gym.ErrInsufficientStock)
}

func TestSell_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _, product := newPOS(t)
	ctx := context.Background()

	for _, qty := range []int{0, -1} {
		_, err := svc.Sell(ctx, product.ID, qty, nil)
		assert.True(t, gym.IsValidation(err), "quantity %d must be rejected", qty)
	}
}

func TestSell_UnknownProduct(t *testing.T) {
	svc, _, _ := newPOS(t)

	_, err := svc.Sell(context.Background(), gym.NewProductID(), 1, nil)
	assert.True(t, gym.IsNotFound(err))
}

func TestSell_UnknownClientRollsBack(t *testing.T) {
	svc, store, product := newPOS(t)
	ctx := context.Background()

	bogus := gym.NewClientID()
	_, err := svc.Sell(ctx, product.ID, 3, &bogus)
	assert.True(t, gym.IsNotFound(err))

	unchanged, err := store.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, unchanged.Stock)
}
