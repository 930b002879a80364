package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id uint, size string, price float64, qty int) Line {
	return Line{ProductID: id, Size: size, Name: "Tee", Price: price, Currency: "EUR", Qty: qty}
}

func TestAddMergesByProductAndSize(t *testing.T) {
	var c Cart
	c.Add(line(1, "M", 19.90, 1))
	c.Add(line(1, "M", 19.90, 2))
	c.Add(line(1, "M", 19.90, 3))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 6, c.Lines[0].Qty)
}

func TestAddDifferentSizesStaySeparate(t *testing.T) {
	var c Cart
	c.Add(line(1, "M", 19.90, 1))
	c.Add(line(2, "L", 19.90, 1))
	c.Add(line(1, "L", 19.90, 1))

	assert.Len(t, c.Lines, 3)
	assert.Equal(t, 3, c.TotalItems())
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	var c Cart
	c.Add(line(1, "M", 19.90, 0))
	c.Add(line(2, "S", 19.90, -5))

	require.Len(t, c.Lines, 2)
	assert.Equal(t, 1, c.Lines[0].Qty)
	assert.Equal(t, 1, c.Lines[1].Qty)
}

func TestRemoveDropsOnlyMatchingKey(t *testing.T) {
	var c Cart
	c.Add(line(1, "M", 19.90, 2))
	c.Add(line(1, "L", 19.90, 1))

	c.Remove(1, "M")

	require.Len(t, c.Lines, 1)
	assert.Equal(t, "L", c.Lines[0].Size)

	// further unrelated operations never reintroduce the removed key
	c.Add(line(2, "M", 24.50, 1))
	c.UpdateQuantity(1, "L", 4)
	for _, l := range c.Lines {
		if l.ProductID == 1 && l.Size == "M" {
			t.Fatalf("removed line came back: %+v", l)
		}
	}
}

func TestRemoveMissingKeyIsNoop(t *testing.T) {
	var c Cart
	c.Add(line(1, "M", 19.90, 2))
	c.Remove(99, "XL")
	assert.Len(t, c.Lines, 1)
}

func TestUpdateQuantityReplacesInPlace(t *testing.T) {
	var c Cart
	c.Add(line(1, "M", 19.90, 2))
	c.UpdateQuantity(1, "M", 7)
	assert.Equal(t, 7, c.Lines[0].Qty)
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	var c Cart
	c.Add(line(1, "M", 19.90, 2))
	c.UpdateQuantity(1, "M", 0)
	assert.True(t, c.IsEmpty())

	c.Add(line(1, "M", 19.90, 2))
	c.UpdateQuantity(1, "M", -3)
	assert.True(t, c.IsEmpty())
}

func TestUpdateQuantityMissingKeyIsSilentNoop(t *testing.T) {
	var c Cart
	c.Add(line(1, "M", 19.90, 2))
	c.UpdateQuantity(5, "S", 3)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Qty)
}

func TestTotalsRecomputedFromLines(t *testing.T) {
	var c Cart
	c.Add(line(1, "M", 19.90, 2))
	c.Add(line(2, "L", 24.50, 3))

	assert.Equal(t, 5, c.TotalItems())
	assert.InDelta(t, 19.90*2+24.50*3, c.TotalPrice(), 1e-9)

	c.UpdateQuantity(2, "L", 1)
	assert.Equal(t, 3, c.TotalItems())
	assert.InDelta(t, 19.90*2+24.50, c.TotalPrice(), 1e-9)
}

func TestClearEmptiesCart(t *testing.T) {
	var c Cart
	c.Add(line(1, "M", 19.90, 2))
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.TotalItems())
	assert.Zero(t, c.TotalPrice())
}
