package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/shirtso/shirtso/internal/domain"
)

type PromoRepo struct{ db *gorm.DB }

func NewPromoRepo(db *gorm.DB) *PromoRepo { return &PromoRepo{db: db} }

func (r *PromoRepo) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return nil, domain.ErrInvalidCode
	}
	var p domain.PromoCode
	if err := r.db.WithContext(ctx).First(&p, "UPPER(code) = ?", c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PromoRepo) Save(ctx context.Context, p *domain.PromoCode) error {
	if p.Code != "" {
		p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	}
	return r.db.WithContext(ctx).Save(p).Error
}
