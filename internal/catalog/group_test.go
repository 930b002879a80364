package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirtso/shirtso/internal/domain"
)

func row(id uint, name, size string, stock int, price float64) domain.Product {
	return domain.Product{
		ID: id, Slug: "tee", Name: name, Size: size, Stock: stock,
		Price: price, Currency: "EUR", Active: true,
	}
}

func TestBuildGroupsMergesRowsByName(t *testing.T) {
	rows := []domain.Product{
		row(1, "Tee", "M", 3, 19.90),
		row(2, "Tee", "L", 2, 19.90),
		row(3, "Hoodie", "M", 5, 39.90),
	}
	groups := BuildGroups(rows)

	require.Len(t, groups, 2)
	assert.Equal(t, "Tee", groups[0].Name)
	assert.Equal(t, "Hoodie", groups[1].Name)
	assert.Len(t, groups[0].SizeVariants, 2)
	assert.Len(t, groups[1].SizeVariants, 1)
}

func TestBuildGroupsDeterministicTee(t *testing.T) {
	rows := []domain.Product{
		row(2, "Tee", "L", 0, 19.90),
		row(1, "Tee", "M", 5, 19.90),
	}
	groups := BuildGroups(rows)

	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, []string{"M", "L"}, g.AvailableSizes)
	assert.Equal(t, 5, g.TotalStock)

	def := DefaultVariant(&g)
	require.NotNil(t, def)
	assert.Equal(t, uint(1), def.ProductID)
	assert.Equal(t, "M", def.Size)
}

func TestBuildGroupsCanonicalSizeOrder(t *testing.T) {
	rows := []domain.Product{
		row(1, "Tee", "XXL", 1, 19.90),
		row(2, "Tee", "XS", 1, 19.90),
		row(3, "Tee", "L", 1, 19.90),
		row(4, "Tee", "S", 1, 19.90),
	}
	groups := BuildGroups(rows)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"XS", "S", "L", "XXL"}, groups[0].AvailableSizes)
}

func TestBuildGroupsUnknownSizesAfterKnown(t *testing.T) {
	rows := []domain.Product{
		row(1, "Tee", "ONE-SIZE", 1, 19.90),
		row(2, "Tee", "M", 1, 19.90),
		row(3, "Tee", "TALL", 1, 19.90),
		row(4, "Tee", "S", 1, 19.90),
	}
	groups := BuildGroups(rows)
	require.Len(t, groups, 1)
	// unknown labels keep encounter order after all canonical sizes
	assert.Equal(t, []string{"S", "M", "ONE-SIZE", "TALL"}, groups[0].AvailableSizes)
}

func TestBuildGroupsPreservesFirstEncounterOrder(t *testing.T) {
	rows := []domain.Product{
		row(1, "Zeta Tee", "M", 1, 19.90),
		row(2, "Alpha Tee", "M", 1, 19.90),
		row(3, "Zeta Tee", "L", 1, 19.90),
	}
	groups := BuildGroups(rows)
	require.Len(t, groups, 2)
	assert.Equal(t, "Zeta Tee", groups[0].Name)
	assert.Equal(t, "Alpha Tee", groups[1].Name)
}

func TestBuildGroupsDedupesImagesByURL(t *testing.T) {
	r1 := row(1, "Tee", "M", 1, 19.90)
	r1.Images = []domain.Image{
		{URL: "https://cdn.shirtso.dev/tee-front.jpg", Primary: true},
		{URL: "https://cdn.shirtso.dev/tee-back.jpg"},
	}
	r2 := row(2, "Tee", "L", 1, 19.90)
	r2.Images = []domain.Image{
		{URL: "https://cdn.shirtso.dev/tee-front.jpg", Primary: true},
	}
	groups := BuildGroups([]domain.Product{r1, r2})

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Images, 2)
	assert.Equal(t, "https://cdn.shirtso.dev/tee-front.jpg", groups[0].Images[0].URL)
}

func TestBuildGroupsEmptyInput(t *testing.T) {
	assert.Empty(t, BuildGroups(nil))
	assert.Empty(t, BuildGroups([]domain.Product{}))
}

func TestNameGrouperImplementsGrouper(t *testing.T) {
	var g Grouper = NameGrouper{}
	out := g.Group([]domain.Product{row(1, "Tee", "M", 1, 19.90)})
	require.Len(t, out, 1)
	assert.Equal(t, "Tee", out[0].Name)
}

func TestSizeRank(t *testing.T) {
	for i, s := range CanonicalSizes {
		r, ok := SizeRank(s)
		assert.True(t, ok)
		assert.Equal(t, i, r)
	}
	_, ok := SizeRank("ONE-SIZE")
	assert.False(t, ok)
	assert.False(t, KnownSize("one-size"))
	assert.True(t, KnownSize("XXXL"))
}
