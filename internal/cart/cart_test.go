package cart

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"pos-service/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id uint, price string) model.Product {
	return model.Product{ID: id, Name: "p", Price: decimal.RequireFromString(price)}
}

func TestAdjustQuantity(t *testing.T) {
	tests := []struct {
		name   string
		start  map[uint]int
		delta  int
		expect int
	}{
		{"absent positive delta inserts one", nil, 1, 1},
		{"absent large delta still inserts one", nil, 5, 1},
		{"absent zero delta is a no-op", nil, 0, 0},
		{"absent negative delta is a no-op", nil, -1, 0},
		{"present adds delta", map[uint]int{1: 2}, 3, 5},
		{"present decrement", map[uint]int{1: 2}, -1, 1},
		{"present to zero removes", map[uint]int{1: 1}, -1, 0},
		{"present below zero removes", map[uint]int{1: 2}, -7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			for id, qty := range tt.start {
				c.Lines = append(c.Lines, Line{Product: product(id, "1.00"), Quantity: qty})
			}

			c.AdjustQuantity(product(1, "1.00"), tt.delta)

			assert.Equal(t, tt.expect, c.Quantity(1))
			if tt.expect == 0 {
				assert.True(t, c.IsEmpty())
			}
		})
	}
}

func TestAdjustQuantityNeverStoresNonPositive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := New()

	for i := 0; i < 2000; i++ {
		p := product(uint(rng.Intn(5)+1), "2.50")
		c.AdjustQuantity(p, rng.Intn(7)-3)

		for _, l := range c.Lines {
			require.Greater(t, l.Quantity, 0)
		}
	}
}

func TestLinesKeepInsertionOrder(t *testing.T) {
	c := New()
	c.AdjustQuantity(product(3, "1"), 1)
	c.AdjustQuantity(product(1, "1"), 1)
	c.AdjustQuantity(product(2, "1"), 1)
	c.AdjustQuantity(product(1, "1"), 1)

	ids := []uint{}
	for _, l := range c.Lines {
		ids = append(ids, l.Product.ID)
	}
	assert.Equal(t, []uint{3, 1, 2}, ids)
}

func TestPriceSnapshotIsKept(t *testing.T) {
	c := New()
	c.AdjustQuantity(product(1, "10.00"), 1)
	c.AdjustQuantity(product(1, "99.00"), 1)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, "10", c.Lines[0].Product.Price.String())
	assert.Equal(t, "20", c.Total().String())
}

func TestRemove(t *testing.T) {
	c := New()
	c.AdjustQuantity(product(1, "1"), 1)
	c.AdjustQuantity(product(1, "1"), 4)
	c.AdjustQuantity(product(2, "1"), 1)

	c.Remove(1)
	assert.Equal(t, 0, c.Quantity(1))
	assert.Equal(t, 1, c.Count())

	c.Remove(42)
	assert.Equal(t, 1, c.Count())
}

func TestTotal(t *testing.T) {
	c := New()
	assert.True(t, c.Total().IsZero())

	c.AdjustQuantity(product(1, "0.10"), 1)
	c.AdjustQuantity(product(1, "0.10"), 2)
	c.AdjustQuantity(product(2, "0.20"), 1)

	assert.Equal(t, "0.5", c.Total().String())

	c.Remove(2)
	assert.Equal(t, "0.3", c.Total().String())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	empty, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	c := New()
	c.AdjustQuantity(product(1, "3"), 1)
	require.NoError(t, s.Save(ctx, "a", c))

	// Mutating the caller's copy must not leak into the store
	c.AdjustQuantity(product(1, "3"), 5)

	loaded, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Quantity(1))

	other, err := s.Load(ctx, "b")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())

	require.NoError(t, s.Clear(ctx, "a"))
	cleared, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.True(t, cleared.IsEmpty())
}

func TestNormalizeDropsBadLines(t *testing.T) {
	c := &Cart{Lines: []Line{
		{Product: product(1, "1"), Quantity: 2},
		{Product: product(2, "1"), Quantity: 0},
		{Product: product(3, "1"), Quantity: -4},
	}}
	c.normalize()

	require.Len(t, c.Lines, 1)
	assert.Equal(t, uint(1), c.Lines[0].Product.ID)
}

func TestMemoryStoreExpiresIdleCarts(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return clock }

	c := New()
	c.AdjustQuantity(product(1, "3"), 1)
	require.NoError(t, s.Save(ctx, "idle", c))
	require.NoError(t, s.Save(ctx, "active", c))

	clock = clock.Add(50 * time.Minute)
	require.NoError(t, s.Save(ctx, "active", c))

	clock = clock.Add(20 * time.Minute)
	loaded, err := s.Load(ctx, "idle")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())

	loaded, err = s.Load(ctx, "active")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Quantity(1))

	// Abandoned sessions are swept on a later write without being loaded
	require.NoError(t, s.Save(ctx, "gone", c))
	clock = clock.Add(2 * time.Hour)
	require.NoError(t, s.Save(ctx, "fresh", c))
	assert.Equal(t, 1, s.Len())
}
