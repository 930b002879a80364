package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/shirtso/shirtso/internal/catalog"
	"github.com/shirtso/shirtso/internal/domain"
)

type ProductUC struct {
	Products domain.ProductRepo
	Grouper  catalog.Grouper
}

func NewProductUC(repo domain.ProductRepo) *ProductUC {
	return &ProductUC{Products: repo, Grouper: catalog.NameGrouper{}}
}

// ListGrouped returns one grouped entity per logical product for the page,
// plus the total number of groups matching the filter.
func (uc *ProductUC) ListGrouped(ctx context.Context, f domain.ProductFilter) ([]catalog.GroupedProduct, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	rows, total, err := uc.Products.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return uc.Grouper.Group(rows), total, nil
}

func (uc *ProductUC) GetGroup(ctx context.Context, slug string) (*catalog.GroupedProduct, error) {
	if slug == "" {
		return nil, errors.New("empty slug")
	}
	rows, err := uc.Products.FindGroup(ctx, slug)
	if err != nil {
		return nil, err
	}
	groups := uc.Grouper.Group(rows)
	if len(groups) == 0 {
		return nil, domain.ErrNotFound
	}
	// a slug maps to one name, so one group
	return &groups[0], nil
}

// ResolveVariant picks the purchasable variant for a group and an optional
// size choice. An empty size applies the default-selection rule.
func (uc *ProductUC) ResolveVariant(ctx context.Context, slug, size string) (*catalog.GroupedProduct, *catalog.SizeVariant, error) {
	g, err := uc.GetGroup(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if size == "" {
		return g, catalog.DefaultVariant(g), nil
	}
	v, ok := catalog.ResolveVariant(g, size)
	if !ok {
		return g, nil, domain.ErrNotFound
	}
	return g, v, nil
}

func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("empty name")
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.Currency == "" {
		p.Currency = "EUR"
	}
	return uc.Products.Save(ctx, p)
}

func (uc *ProductUC) Update(ctx context.Context, p *domain.Product) error {
	if p.ID == 0 {
		return errors.New("product id")
	}
	return uc.Products.Save(ctx, p)
}

func (uc *ProductUC) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return errors.New("product id")
	}
	return uc.Products.Delete(ctx, id)
}

// AttachImages implements the admin fan-out contract: the backend associates
// images per variant id, so one image operation against a grouped product is
// issued once per sibling row. After the fan-out every sibling carries the
// same image set, which is what the grouping layer assumes.
func (uc *ProductUC) AttachImages(ctx context.Context, slug string, imgs []domain.Image) error {
	rows, err := uc.Products.FindGroup(ctx, slug)
	if err != nil {
		return err
	}
	for _, row := range rows {
		cp := make([]domain.Image, len(imgs))
		copy(cp, imgs)
		if err := uc.Products.AddImages(ctx, row.ID, cp); err != nil {
			return err
		}
	}
	return nil
}

func (uc *ProductUC) RemoveImage(ctx context.Context, slug, url string) error {
	rows, err := uc.Products.FindGroup(ctx, slug)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := uc.Products.RemoveImage(ctx, row.ID, url); err != nil {
			return err
		}
	}
	return nil
}

func (uc *ProductUC) SetPrimaryImage(ctx context.Context, slug, url string) error {
	rows, err := uc.Products.FindGroup(ctx, slug)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := uc.Products.SetPrimaryImage(ctx, row.ID, url); err != nil {
			return err
		}
	}
	return nil
}

func (uc *ProductUC) Suppliers(ctx context.Context) ([]string, error) {
	return uc.Products.DistinctSuppliers(ctx)
}

// Slugify derives the shared group slug from the product name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	return s
}
