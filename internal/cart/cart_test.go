package cart

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddMergesAndKeepsOrder(t *testing.T) {
	t.Parallel()
	c := New()

	require.NoError(t, c.Add("P1", 2, 50))
	require.NoError(t, c.Add("P2", 1, 50))
	require.NoError(t, c.Add("P1", 3, 50))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, Line{ProductID: "P1", Quantity: 5}, lines[0])
	assert.Equal(t, Line{ProductID: "P2", Quantity: 1}, lines[1])
}

func TestCart_AddQuantityBounds(t *testing.T) {
	t.Parallel()
	c := New()

	assert.ErrorIs(t, c.Add("P1", 0, 50), ErrQuantityRange)
	assert.ErrorIs(t, c.Add("P1", -1, 50), ErrQuantityRange)
	assert.ErrorIs(t, c.Add("P1", MaxPerProduct+1, 50), ErrQuantityRange)
	assert.Equal(t, 0, c.Len())
}

func TestCart_AddMergeRespectsPerProductCeiling(t *testing.T) {
	t.Parallel()
	c := New()

	require.NoError(t, c.Add("P1", MaxPerProduct, 50))
	assert.ErrorIs(t, c.Add("P1", 1, 50), ErrQuantityRange)
	assert.Equal(t, MaxPerProduct, c.Quantity("P1"))
}

func TestCart_AddRespectsStock(t *testing.T) {
	t.Parallel()
	c := New()

	require.NoError(t, c.Add("P1", 2, 3))
	assert.ErrorIs(t, c.Add("P1", 2, 3), ErrOutOfStock)
	assert.Equal(t, 2, c.Quantity("P1"))
}

func TestCart_CapacityCountsDistinctProducts(t *testing.T) {
	t.Parallel()
	c := New()

	for i := 0; i < MaxDistinct; i++ {
		require.NoError(t, c.Add(fmt.Sprintf("P%02d", i), 1, 50))
	}
	assert.ErrorIs(t, c.Add("P99", 1, 50), ErrCapacity)

	// merging into an existing line is not a new distinct product
	assert.NoError(t, c.Add("P00", 1, 50))
	assert.Equal(t, MaxDistinct, c.Len())
}

func TestCart_Edit(t *testing.T) {
	t.Parallel()
	c := New()
	require.NoError(t, c.Add("P1", 5, 50))

	assert.ErrorIs(t, c.Edit("P2", 1, 50), ErrNotFound)
	assert.ErrorIs(t, c.Edit("P1", -1, 50), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Edit("P1", MaxPerProduct+1, 50), ErrQuantityRange)
	assert.ErrorIs(t, c.Edit("P1", 6, 5), ErrOutOfStock)
	assert.Equal(t, 5, c.Quantity("P1"))

	require.NoError(t, c.Edit("P1", 3, 50))
	assert.Equal(t, 3, c.Quantity("P1"))
}

func TestCart_EditToZeroRemovesLine(t *testing.T) {
	t.Parallel()
	c := New()
	require.NoError(t, c.Add("P1", 5, 50))
	require.NoError(t, c.Add("P2", 1, 50))

	require.NoError(t, c.Edit("P1", 0, 50))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.Quantity("P1"))
	require.Len(t, c.Lines(), 1)
	assert.Equal(t, "P2", c.Lines()[0].ProductID)
}

func TestCart_RemoveAndClear(t *testing.T) {
	t.Parallel()
	c := New()
	require.NoError(t, c.Add("P1", 2, 50))
	require.NoError(t, c.Add("P2", 2, 50))

	assert.ErrorIs(t, c.Remove("P9"), ErrNotFound)
	require.NoError(t, c.Remove("P1"))
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Lines())
}

func TestSessions_OneCartPerUser(t *testing.T) {
	t.Parallel()
	s := NewSessions()

	a := s.Cart("alex.tan@student.monash.edu")
	require.Same(t, a, s.Cart("alex.tan@student.monash.edu"))
	require.NotSame(t, a, s.Cart("casey.morgan@gmail.com"))

	require.NoError(t, a.Add("P1", 1, 50))
	assert.Equal(t, 0, s.Cart("casey.morgan@gmail.com").Len())
}
