package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirtso/shirtso/internal/cart"
	"github.com/shirtso/shirtso/internal/domain"
)

func paidOrderFixture(products *fakeProductRepo, orders *fakeOrderRepo) *domain.Order {
	o := &domain.Order{
		ID:     uuid.New(),
		Status: domain.OrderStatusAwaitingPay,
		Items: []domain.OrderItem{
			{ID: uuid.New(), ProductID: 1, Name: "Classic Crew Tee", Size: "M", Qty: 2, UnitPrice: 19.90},
		},
		Currency: "EUR",
		Total:    19.90*2 + 4.90,
	}
	_ = orders.Save(context.Background(), o)
	return o
}

func TestApplyPaymentStatusApproved(t *testing.T) {
	products := newFakeProductRepo(teeRow(1, "M", 10, 19.90))
	orders := newFakeOrderRepo()
	o := paidOrderFixture(products, orders)

	n := cart.NewNotifier()
	notified := 0
	n.Subscribe(func() { notified++ })

	uc := &PaymentUC{Orders: orders, Products: products, Gateway: &fakeGateway{}, Notifier: n}
	got, err := uc.ApplyPaymentStatus(context.Background(), o.ID, "approved")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPaid, got.Status)
	assert.Equal(t, "approved", got.PSPStatus)
	assert.Equal(t, 8, products.rows[1].Stock)
	assert.Equal(t, 1, notified)
}

func TestApplyPaymentStatusApprovedTwiceDecrementsOnce(t *testing.T) {
	products := newFakeProductRepo(teeRow(1, "M", 10, 19.90))
	orders := newFakeOrderRepo()
	o := paidOrderFixture(products, orders)

	uc := &PaymentUC{Orders: orders, Products: products, Gateway: &fakeGateway{}}
	_, err := uc.ApplyPaymentStatus(context.Background(), o.ID, "approved")
	require.NoError(t, err)
	_, err = uc.ApplyPaymentStatus(context.Background(), o.ID, "approved")
	require.NoError(t, err)

	assert.Equal(t, 8, products.rows[1].Stock)
}

func TestApplyPaymentStatusRejected(t *testing.T) {
	products := newFakeProductRepo(teeRow(1, "M", 10, 19.90))
	orders := newFakeOrderRepo()
	o := paidOrderFixture(products, orders)

	uc := &PaymentUC{Orders: orders, Products: products, Gateway: &fakeGateway{}}
	got, err := uc.ApplyPaymentStatus(context.Background(), o.ID, "rejected")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	assert.Equal(t, 10, products.rows[1].Stock)
}

func TestApplyPaymentStatusEmptyIsReadOnly(t *testing.T) {
	products := newFakeProductRepo(teeRow(1, "M", 10, 19.90))
	orders := newFakeOrderRepo()
	o := paidOrderFixture(products, orders)
	before := orders.saves

	uc := &PaymentUC{Orders: orders, Products: products, Gateway: &fakeGateway{}}
	got, err := uc.ApplyPaymentStatus(context.Background(), o.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingPay, got.Status)
	assert.Equal(t, before, orders.saves)
}

func TestApplyPaymentStatusUnknownOrder(t *testing.T) {
	uc := &PaymentUC{Orders: newFakeOrderRepo(), Products: newFakeProductRepo(), Gateway: &fakeGateway{}}
	_, err := uc.ApplyPaymentStatus(context.Background(), uuid.New(), "approved")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateCheckoutPersistsSessionID(t *testing.T) {
	products := newFakeProductRepo(teeRow(1, "M", 10, 19.90))
	orders := newFakeOrderRepo()
	o := paidOrderFixture(products, orders)

	uc := &PaymentUC{Orders: orders, Products: products, Gateway: &fakeGateway{url: "https://pay.example/s/abc"}}
	url, err := uc.CreateCheckout(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/s/abc", url)
	assert.NotEmpty(t, o.PSPSessionID)
	assert.Equal(t, o.PSPSessionID, orders.orders[o.ID].PSPSessionID)
}
