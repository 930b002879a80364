package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductRepo interface {
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	FindByID(ctx context.Context, id uint) (*Product, error)
	// FindGroup returns every sibling row sharing the group's slug.
	FindGroup(ctx context.Context, slug string) ([]Product, error)
	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uint) error
	AddImages(ctx context.Context, productID uint, imgs []Image) error
	RemoveImage(ctx context.Context, productID uint, url string) error
	SetPrimaryImage(ctx context.Context, productID uint, url string) error
	ClearImages(ctx context.Context, productID uint) ([]string, error)
	UpdateStock(ctx context.Context, productID uint, delta int) error
	DistinctSuppliers(ctx context.Context) ([]string, error)
}

type OrderRepo interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, status OrderStatus, limit int) ([]Order, error)
}

type CustomerRepo interface {
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Save(ctx context.Context, c *Customer) error
}

type PromoRepo interface {
	FindByCode(ctx context.Context, code string) (*PromoCode, error)
	Save(ctx context.Context, p *PromoCode) error
}

// PaymentGateway abstracts the external PSP.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, o *Order) (redirectURL string, err error)
	PaymentInfo(ctx context.Context, paymentID string) (status, externalRef string, err error)
}
