package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shirtso/shirtso/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepo) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Preload("Images").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindGroup returns every size row of the grouped product behind a slug,
// images preloaded, so the catalog builder can collapse them.
func (r *ProductRepo) FindGroup(ctx context.Context, slug string) ([]domain.Product, error) {
	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Where("slug = ? AND active = ?", slug, true).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows, nil
}

// List pages over grouped products: the page window selects distinct names,
// then all sibling rows of those names come back for grouping. The returned
// count is the number of groups matching the filter.
func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("active = ?", true)
	if f.Supplier != "" {
		q = q.Where("supplier = ?", f.Supplier)
	}
	if f.Size != "" {
		q = q.Where("size = ?", f.Size)
	}
	if f.InStock {
		q = q.Where("stock > 0")
	}
	if f.Query != "" {
		like := "%" + strings.TrimSpace(f.Query) + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(supplier) LIKE LOWER(?)", like, like, like)
	}

	var total int64
	if err := q.Distinct("name").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	offset := (f.Page - 1) * f.PageSize

	order := "MIN(name) asc"
	switch f.Sort {
	case "price_desc":
		order = "MIN(price) desc"
	case "price_asc":
		order = "MIN(price) asc"
	case "newest":
		order = "MAX(created_at) desc"
	}
	names := []string{}
	if err := q.Select("name").Group("name").Order(order).
		Offset(offset).Limit(f.PageSize).Pluck("name", &names).Error; err != nil {
		return nil, 0, err
	}
	if len(names) == 0 {
		return []domain.Product{}, total, nil
	}

	var rows []domain.Product
	err := r.db.WithContext(ctx).
		Where("active = ? AND name IN ?", true, names).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Order("name asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.Image{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, "id = ?", id).Error
	})
}

func (r *ProductRepo) AddImages(ctx context.Context, productID uint, imgs []domain.Image) error {
	if len(imgs) == 0 {
		return nil
	}
	for i := range imgs {
		imgs[i].ID = 0
		imgs[i].ProductID = productID
		if imgs[i].CreatedAt.IsZero() {
			imgs[i].CreatedAt = time.Now()
		}
	}
	return r.db.WithContext(ctx).Create(&imgs).Error
}

func (r *ProductRepo) RemoveImage(ctx context.Context, productID uint, url string) error {
	return r.db.WithContext(ctx).
		Where("product_id = ? AND url = ?", productID, url).
		Delete(&domain.Image{}).Error
}

func (r *ProductRepo) SetPrimaryImage(ctx context.Context, productID uint, url string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Image{}).Where("product_id = ?", productID).
			Update("primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Image{}).Where("product_id = ? AND url = ?", productID, url).
			Update("primary", true).Error
	})
}

func (r *ProductRepo) ClearImages(ctx context.Context, productID uint) ([]string, error) {
	var list []domain.Image
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Find(&list).Error; err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(list))
	for _, im := range list {
		urls = append(urls, im.URL)
	}
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&domain.Image{}).Error; err != nil {
		return nil, err
	}
	return urls, nil
}

func (r *ProductRepo) UpdateStock(ctx context.Context, productID uint, delta int) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("GREATEST(COALESCE(stock,0) + ?, 0)", delta)).Error
}

func (r *ProductRepo) DistinctSuppliers(ctx context.Context) ([]string, error) {
	out := []string{}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Distinct("supplier").Where("supplier <> ''").Order("supplier asc").
		Pluck("supplier", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
