package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrOutOfStock  = errors.New("out of stock")
	ErrInvalidQty  = errors.New("invalid quantity")
	ErrInvalidCode = errors.New("invalid promo code")
)
