package stores_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gmcandra/mebelshop/app/models"
	"github.com/gmcandra/mebelshop/app/stores"
	"github.com/gmcandra/mebelshop/pkg/kv"
)

const cartKey = "cart:7"

func product(id uint, name string, price float64, stock int) models.Product {
	return models.Product{
		Model:    gorm.Model{ID: id},
		Name:     name,
		Price:    price,
		Stock:    stock,
		Category: models.Category{Name: "Kursi"},
	}
}

func TestAddIncrementsAndClampsToStock(t *testing.T) {
	ctx := context.Background()
	c := stores.NewCart(kv.NewMemory(), cartKey)
	kursi := product(1, "Kursi Jati Minimalis", 450000, 5)

	c.Add(ctx, kursi, 3)
	c.Add(ctx, kursi, 3)

	lines := c.Lines()
	require.Len(t, lines, 1, "same product must not duplicate the line")
	assert.Equal(t, 5, lines[0].Quantity, "3+3 clamps to the stock ceiling of 5")
}

func TestAddClampsInitialQuantity(t *testing.T) {
	ctx := context.Background()
	c := stores.NewCart(kv.NewMemory(), cartKey)

	c.Add(ctx, product(1, "Kursi Jati Minimalis", 450000, 5), 10)

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 5, c.Lines()[0].Quantity)
}

func TestAddRefusesOutOfStockProduct(t *testing.T) {
	ctx := context.Background()
	c := stores.NewCart(kv.NewMemory(), cartKey)

	c.Add(ctx, product(1, "Lemari Pakaian 3 Pintu", 5600000, 0), 1)

	assert.Empty(t, c.Lines(), "a product with no stock must not create a line")
}

func TestUpdateQuantityClamps(t *testing.T) {
	ctx := context.Background()
	c := stores.NewCart(kv.NewMemory(), cartKey)
	c.Add(ctx, product(1, "Meja Makan Jati", 750000, 4), 1)

	c.UpdateQuantity(ctx, 1, 99)
	assert.Equal(t, 4, c.Lines()[0].Quantity)

	c.UpdateQuantity(ctx, 1, 0)
	assert.Equal(t, 1, c.Lines()[0].Quantity)

	c.UpdateQuantity(ctx, 1, 3)
	assert.Equal(t, 3, c.Lines()[0].Quantity)

	// Unknown id is ignored.
	c.UpdateQuantity(ctx, 42, 2)
	assert.Len(t, c.Lines(), 1)
}

func TestRemoveMissingIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	c := stores.NewCart(kv.NewMemory(), cartKey)
	c.Add(ctx, product(1, "Kursi Jati Minimalis", 450000, 5), 2)

	c.Remove(ctx, 999)
	assert.Len(t, c.Lines(), 1)

	c.Remove(ctx, 1)
	assert.Empty(t, c.Lines())
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	c := stores.NewCart(kv.NewMemory(), cartKey)

	assert.Equal(t, 0, c.TotalItems())
	assert.Equal(t, 0.0, c.TotalPrice(), "empty cart totals zero")

	c.Add(ctx, product(1, "Kursi Jati Minimalis", 450000, 10), 2)
	c.Add(ctx, product(2, "Meja Makan Jati", 750000, 3), 1)

	assert.Equal(t, 3, c.TotalItems())
	assert.Equal(t, 2*450000+750000.0, c.TotalPrice())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	c := stores.NewCart(kv.NewMemory(), cartKey)
	c.Add(ctx, product(1, "Kursi Jati Minimalis", 450000, 5), 2)

	c.Clear(ctx)
	assert.Empty(t, c.Lines())
	assert.Equal(t, 0.0, c.TotalPrice())
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	c := stores.NewCart(store, cartKey)
	c.Add(ctx, product(2, "Meja Makan Jati", 750000, 3), 1)
	c.Add(ctx, product(1, "Kursi Jati Minimalis", 450000, 10), 2)
	c.UpdateQuantity(ctx, 1, 4)

	reloaded := stores.NewCart(store, cartKey)
	reloaded.Load(ctx)

	assert.Equal(t, c.Lines(), reloaded.Lines(), "order and values survive the round trip")
}

func TestLoadDiscardsInvalidPayload(t *testing.T) {
	ctx := context.Background()

	cases := map[string]string{
		"not json":           `{{{`,
		"duplicate ids":      `[{"product_id":1,"quantity":1,"stock":5},{"product_id":1,"quantity":1,"stock":5}]`,
		"zero quantity":      `[{"product_id":1,"quantity":0,"stock":5}]`,
		"quantity too large": `[{"product_id":1,"quantity":9,"stock":5}]`,
		"zero stock":         `[{"product_id":1,"quantity":1,"stock":0}]`,
		"missing id":         `[{"product_id":0,"quantity":1,"stock":5}]`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			store := kv.NewMemory()
			require.NoError(t, store.Set(ctx, cartKey, []byte(payload)))

			c := stores.NewCart(store, cartKey)
			c.Load(ctx)

			assert.Empty(t, c.Lines())
			_, err := store.Get(ctx, cartKey)
			assert.ErrorIs(t, err, kv.ErrNotFound, "invalid payload should be removed")
		})
	}
}
