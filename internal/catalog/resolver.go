package catalog

// DefaultVariant picks the variant purchase controls should start on: the
// first in-stock variant in canonical size order, or the first variant at
// all when the whole group is sold out. Nil only for an empty group.
func DefaultVariant(g *GroupedProduct) *SizeVariant {
	if g == nil || len(g.SizeVariants) == 0 {
		return nil
	}
	for i := range g.SizeVariants {
		if g.SizeVariants[i].Stock > 0 {
			return &g.SizeVariants[i]
		}
	}
	return &g.SizeVariants[0]
}

// ResolveVariant returns the variant for an explicitly chosen size.
func ResolveVariant(g *GroupedProduct, size string) (*SizeVariant, bool) {
	if g == nil {
		return nil, false
	}
	for i := range g.SizeVariants {
		if g.SizeVariants[i].Size == size {
			return &g.SizeVariants[i], true
		}
	}
	return nil, false
}

// ClampQuantity forces a requested quantity into [1, stock]. Callers must
// still refuse the purchase when stock is zero; the floor of 1 keeps the
// quantity control sane for display.
func ClampQuantity(qty, stock int) int {
	if qty < 1 {
		qty = 1
	}
	if stock > 0 && qty > stock {
		qty = stock
	}
	return qty
}
