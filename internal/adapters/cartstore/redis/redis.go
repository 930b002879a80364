// Package redis holds the server-authoritative cart, one JSON value per cart
// id with a rolling TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shirtso/shirtso/internal/cart"
)

const defaultTTL = 30 * 24 * time.Hour

type Store struct {
	rdb *goredis.Client
	ttl time.Duration
}

func New(rdb *goredis.Client) *Store {
	return &Store{rdb: rdb, ttl: defaultTTL}
}

func key(cartID string) string { return "cart:" + cartID }

// Load fetches the cart for the id. A missing key is an empty cart, matching
// the local store's recovery behavior.
func (s *Store) Load(ctx context.Context, cartID string) (*cart.Cart, error) {
	raw, err := s.rdb.Get(ctx, key(cartID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return &cart.Cart{}, nil
		}
		return nil, fmt.Errorf("load cart %s: %w", cartID, err)
	}
	var c cart.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		// corrupt value: treat as no cart
		return &cart.Cart{}, nil
	}
	return &c, nil
}

func (s *Store) Save(ctx context.Context, cartID string, c *cart.Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart %s: %w", cartID, err)
	}
	if err := s.rdb.Set(ctx, key(cartID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", cartID, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, cartID string) error {
	if err := s.rdb.Del(ctx, key(cartID)).Err(); err != nil {
		return fmt.Errorf("clear cart %s: %w", cartID, err)
	}
	return nil
}

// Ping verifies the connection at startup.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
