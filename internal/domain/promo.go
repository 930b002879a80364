package domain

import "time"

// PromoCode applies a percent discount on the order subtotal at checkout.
type PromoCode struct {
	ID         uint       `gorm:"primaryKey"`
	Code       string     `gorm:"size:40;uniqueIndex;not null"`
	PercentOff float64    `gorm:"type:decimal(5,2);not null"`
	Active     bool       `gorm:"default:true"`
	ExpiresAt  *time.Time `gorm:"index"`
	CreatedAt  time.Time
}

func (p *PromoCode) Valid(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return false
	}
	return p.PercentOff > 0 && p.PercentOff <= 100
}
