package domain

import (
	"time"
)

// Product is one purchasable size variant. A logical "grouped product" is the
// set of rows sharing the same Name; grouping happens in the catalog package.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"productId"`
	Slug        string    `gorm:"index;size:160" json:"slug"`
	Name        string    `gorm:"size:180;index;not null" json:"productName"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency    string    `gorm:"size:3;default:'EUR'" json:"currency"`
	Size        string    `gorm:"size:10;index" json:"size"`
	Stock       int       `gorm:"type:int;default:0" json:"stock"`
	Supplier    string    `gorm:"size:140" json:"supplier"`
	Active      bool      `gorm:"default:true;index" json:"-"`
	Images      []Image   `json:"images"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type Image struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index" json:"productId"`
	URL       string    `gorm:"size:255" json:"url"`
	Alt       string    `gorm:"size:140" json:"alt"`
	Primary   bool      `gorm:"default:false" json:"primary"`
	CreatedAt time.Time `json:"-"`
}

// ProductFilter drives catalog listing. Paging applies to grouped products,
// so repos return all sibling rows of the selected page's groups.
type ProductFilter struct {
	Query    string
	Supplier string
	Size     string
	InStock  bool
	Sort     string
	Page     int
	PageSize int
}
