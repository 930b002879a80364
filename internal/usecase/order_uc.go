package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shirtso/shirtso/internal/cart"
	"github.com/shirtso/shirtso/internal/domain"
)

// Flat-rate shipping per method; pickup is free.
var shippingCosts = map[string]float64{
	"standard": 4.90,
	"express":  9.90,
	"pickup":   0,
}

func ShippingCostFor(method string) (float64, bool) {
	c, ok := shippingCosts[method]
	return c, ok
}

func ShippingMethods() []string { return []string{"standard", "express", "pickup"} }

type CheckoutInput struct {
	Email          string
	Name           string
	Phone          string
	Address        string
	City           string
	PostalCode     string
	Country        string
	ShippingMethod string
	PromoCode      string
}

type OrderUC struct {
	Orders   domain.OrderRepo
	Products domain.ProductRepo
	Promos   domain.PromoRepo
}

// Checkout validates the cart lines against current stock, prices the order
// from the database rows (never from client-supplied prices), applies the
// promo and shipping, and persists it awaiting payment.
func (uc *OrderUC) Checkout(ctx context.Context, in CheckoutInput, c *cart.Cart) (*domain.Order, error) {
	if c == nil || c.IsEmpty() {
		return nil, fmt.Errorf("empty cart")
	}
	if in.Email == "" || in.Name == "" {
		return nil, fmt.Errorf("missing contact data")
	}
	method := in.ShippingMethod
	if method == "" {
		method = "standard"
	}
	shippingCost, ok := ShippingCostFor(method)
	if !ok {
		return nil, fmt.Errorf("unknown shipping method %q", method)
	}
	if method != "pickup" && (in.Address == "" || in.PostalCode == "") {
		return nil, fmt.Errorf("missing shipping address")
	}

	o := &domain.Order{
		ID:             uuid.New(),
		Status:         domain.OrderStatusAwaitingPay,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Name:           in.Name,
		Phone:          in.Phone,
		Address:        in.Address,
		City:           in.City,
		PostalCode:     in.PostalCode,
		Country:        in.Country,
		ShippingMethod: method,
		ShippingCost:   shippingCost,
	}

	subtotal := 0.0
	for _, l := range c.Lines {
		row, err := uc.Products.FindByID(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("line %d/%s: %w", l.ProductID, l.Size, err)
		}
		if l.Qty <= 0 {
			return nil, fmt.Errorf("line %d/%s: %w", l.ProductID, l.Size, domain.ErrInvalidQty)
		}
		if row.Stock < l.Qty {
			return nil, fmt.Errorf("%s (%s): %w", row.Name, row.Size, domain.ErrOutOfStock)
		}
		if o.Currency == "" {
			o.Currency = row.Currency
		}
		o.Items = append(o.Items, domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: row.ID,
			Name:      row.Name,
			Size:      row.Size,
			Qty:       l.Qty,
			UnitPrice: row.Price,
		})
		subtotal += row.Price * float64(l.Qty)
	}
	o.Subtotal = subtotal

	if code := strings.TrimSpace(in.PromoCode); code != "" {
		promo, err := uc.Promos.FindByCode(ctx, code)
		if err != nil || !promo.Valid(time.Now()) {
			return nil, domain.ErrInvalidCode
		}
		o.PromoCode = promo.Code
		o.DiscountAmount = subtotal * promo.PercentOff / 100.0
	}

	o.Total = subtotal + shippingCost - o.DiscountAmount
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	return o, nil
}

func (uc *OrderUC) Track(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.Orders.FindByID(ctx, id)
}
