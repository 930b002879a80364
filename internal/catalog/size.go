package catalog

// CanonicalSizes is the display and default-selection order for size chips.
// Sizes outside this list sort after all known sizes, stably by first
// encounter, since supplier feeds occasionally carry odd labels.
var CanonicalSizes = []string{"XS", "S", "M", "L", "XL", "XXL", "XXXL"}

var sizeRank = func() map[string]int {
	m := make(map[string]int, len(CanonicalSizes))
	for i, s := range CanonicalSizes {
		m[s] = i
	}
	return m
}()

// SizeRank returns the canonical position of a size and whether it is known.
func SizeRank(size string) (int, bool) {
	r, ok := sizeRank[size]
	return r, ok
}

// KnownSize reports whether the size belongs to the canonical list.
func KnownSize(size string) bool {
	_, ok := sizeRank[size]
	return ok
}
