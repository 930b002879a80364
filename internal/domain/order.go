package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusAwaitingPay OrderStatus = "awaiting_payment"
	OrderStatusPaid        OrderStatus = "paid"
	OrderStatusShipped     OrderStatus = "shipped"
	OrderStatusCancelled   OrderStatus = "cancelled"
)

type Order struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Status         OrderStatus `gorm:"type:varchar(30);index"`
	Items          []OrderItem
	Email          string     `gorm:"size:140"`
	Name           string     `gorm:"size:140"`
	Phone          string     `gorm:"size:50"`
	Address        string     `gorm:"size:255"`
	City           string     `gorm:"size:80"`
	PostalCode     string     `gorm:"size:20"`
	Country        string     `gorm:"size:60"`
	CustomerID     *uuid.UUID `gorm:"type:uuid;index"`
	Currency       string     `gorm:"size:3;default:'EUR'"`
	Subtotal       float64    `gorm:"type:decimal(12,2);default:0"`
	ShippingMethod string     `gorm:"size:30"`
	ShippingCost   float64    `gorm:"type:decimal(12,2)"`
	PromoCode      string     `gorm:"size:40"`
	DiscountAmount float64    `gorm:"type:decimal(12,2)"`
	Total          float64    `gorm:"type:decimal(12,2)"`
	PSPSessionID   string     `gorm:"size:140"`
	PSPStatus      string     `gorm:"size:60"`
	Notified       bool       `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	ProductID uint      `gorm:"index"`
	Name      string    `gorm:"size:180"`
	Size      string    `gorm:"size:10"`
	Qty       int       `gorm:"not null"`
	UnitPrice float64   `gorm:"type:decimal(12,2)"`
}
