package catalog

import (
	"sort"

	"github.com/shirtso/shirtso/internal/domain"
)

// SizeVariant is one concrete purchasable unit underlying a grouped product.
type SizeVariant struct {
	ProductID uint    `json:"productId"`
	Size      string  `json:"size"`
	Stock     int     `json:"stock"`
	Price     float64 `json:"price"`
}

// GroupedProduct collapses the flat per-size rows sharing one name into a
// single display entity. Description, price, currency and supplier are taken
// from the first row of the group and assumed identical across siblings.
type GroupedProduct struct {
	Slug           string         `json:"slug"`
	Name           string         `json:"productName"`
	Description    string         `json:"description"`
	Price          float64        `json:"price"`
	Currency       string         `json:"currency"`
	Supplier       string         `json:"supplier"`
	SizeVariants   []SizeVariant  `json:"sizeVariants"`
	AvailableSizes []string       `json:"availableSizes"`
	TotalStock     int            `json:"totalStock"`
	Images         []domain.Image `json:"images"`
}

// Grouper turns flat product rows into grouped view models. Name equality is
// a heuristic standing in for a real group foreign key; keeping it behind an
// interface lets an id-based grouping replace it without touching callers.
type Grouper interface {
	Group(rows []domain.Product) []GroupedProduct
}

// NameGrouper groups rows by exact name match. Two unrelated products that
// happen to share a name will be merged; that is the documented behavior,
// not something this layer second-guesses.
type NameGrouper struct{}

func (NameGrouper) Group(rows []domain.Product) []GroupedProduct {
	return BuildGroups(rows)
}

// BuildGroups preserves group order by first encounter and orders each
// group's variants by canonical size, unknown sizes after, stable.
func BuildGroups(rows []domain.Product) []GroupedProduct {
	idx := map[string]int{}
	groups := []GroupedProduct{}
	seenImg := map[string]map[string]struct{}{}

	for _, row := range rows {
		i, ok := idx[row.Name]
		if !ok {
			i = len(groups)
			idx[row.Name] = i
			groups = append(groups, GroupedProduct{
				Slug:        row.Slug,
				Name:        row.Name,
				Description: row.Description,
				Price:       row.Price,
				Currency:    row.Currency,
				Supplier:    row.Supplier,
			})
			seenImg[row.Name] = map[string]struct{}{}
		}
		g := &groups[i]
		g.SizeVariants = append(g.SizeVariants, SizeVariant{
			ProductID: row.ID,
			Size:      row.Size,
			Stock:     row.Stock,
			Price:     row.Price,
		})
		g.TotalStock += row.Stock

		// Images live on the group; siblings carry the same set after the
		// admin fan-out, so dedupe by URL instead of trusting it blindly.
		for _, im := range row.Images {
			if _, dup := seenImg[row.Name][im.URL]; dup {
				continue
			}
			seenImg[row.Name][im.URL] = struct{}{}
			g.Images = append(g.Images, im)
		}
	}

	for i := range groups {
		sortVariants(groups[i].SizeVariants)
		sizes := make([]string, 0, len(groups[i].SizeVariants))
		for _, v := range groups[i].SizeVariants {
			sizes = append(sizes, v.Size)
		}
		groups[i].AvailableSizes = sizes
	}
	return groups
}

func sortVariants(vs []SizeVariant) {
	sort.SliceStable(vs, func(a, b int) bool {
		ra, oka := SizeRank(vs[a].Size)
		rb, okb := SizeRank(vs[b].Size)
		switch {
		case oka && okb:
			return ra < rb
		case oka:
			return true
		case okb:
			return false
		default:
			// both unknown: keep encounter order
			return false
		}
	})
}
