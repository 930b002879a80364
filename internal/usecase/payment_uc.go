package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shirtso/shirtso/internal/cart"
	"github.com/shirtso/shirtso/internal/domain"
)

type PaymentUC struct {
	Orders   domain.OrderRepo
	Products domain.ProductRepo
	Gateway  domain.PaymentGateway
	Notifier *cart.Notifier
}

func (uc *PaymentUC) CreateCheckout(ctx context.Context, o *domain.Order) (string, error) {
	url, err := uc.Gateway.CreateCheckout(ctx, o)
	if err != nil {
		return "", err
	}
	// session id was written onto the order by the gateway
	if err := uc.Orders.Save(ctx, o); err != nil {
		log.Error().Err(err).Str("order", o.ID.String()).Msg("persist psp session id")
	}
	return url, nil
}

// ApplyPaymentStatus moves the order according to the PSP status. Approval
// decrements stock once and announces the change so cart-derived displays
// refresh; any other status is recorded verbatim.
func (uc *PaymentUC) ApplyPaymentStatus(ctx context.Context, orderID uuid.UUID, status string) (*domain.Order, error) {
	o, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return o, nil
	}
	o.PSPStatus = status
	if status == "approved" && o.Status != domain.OrderStatusPaid {
		o.Status = domain.OrderStatusPaid
		for _, it := range o.Items {
			if err := uc.Products.UpdateStock(ctx, it.ProductID, -it.Qty); err != nil {
				log.Error().Err(err).Uint("product", it.ProductID).Msg("decrement stock")
			}
		}
		if uc.Notifier != nil {
			uc.Notifier.Emit()
		}
	}
	if status == "rejected" || status == "cancelled" {
		o.Status = domain.OrderStatusCancelled
	}
	if err := uc.Orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order %s: %w", o.ID, err)
	}
	return o, nil
}
