package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// SyncState tracks how the local optimistic cart relates to the
// server-authoritative copy.
type SyncState string

const (
	StateClean   SyncState = "clean"        // no local mutation since last sync
	StatePending SyncState = "pending-sync" // push in flight
	StateSynced  SyncState = "synced"       // server copy matches local
	StateFailed  SyncState = "sync-failed"  // last push failed; local stays authoritative
)

// Store is the server-side cart slot keyed by cart id.
type Store interface {
	Load(ctx context.Context, cartID string) (*Cart, error)
	Save(ctx context.Context, cartID string, c *Cart) error
	Clear(ctx context.Context, cartID string) error
}

// Syncer pushes the local cart to the server store after each mutation and
// records the outcome. Failures never block the session: the local cart is
// authoritative until a later push succeeds.
type Syncer struct {
	store    Store
	cartID   string
	notifier *Notifier

	mu    sync.Mutex
	state SyncState
}

func NewSyncer(store Store, cartID string, n *Notifier) *Syncer {
	return &Syncer{store: store, cartID: cartID, notifier: n, state: StateClean}
}

func (s *Syncer) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Syncer) setState(st SyncState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Push writes the local cart to the server store and emits a cart change on
// success. On failure the state moves to sync-failed and the error is logged
// and returned for the caller to surface or ignore.
func (s *Syncer) Push(ctx context.Context, c *Cart) error {
	if s.store == nil || s.cartID == "" {
		return fmt.Errorf("syncer not bound to a server cart")
	}
	s.setState(StatePending)
	if err := s.store.Save(ctx, s.cartID, c); err != nil {
		s.setState(StateFailed)
		log.Error().Err(err).Str("cart_id", s.cartID).Msg("cart sync push")
		return err
	}
	s.setState(StateSynced)
	if s.notifier != nil {
		s.notifier.Emit()
	}
	return nil
}

// Pull loads the server copy. A missing server cart comes back empty, which
// mirrors the local store's treatment of an absent snapshot.
func (s *Syncer) Pull(ctx context.Context) (*Cart, error) {
	if s.store == nil || s.cartID == "" {
		return nil, fmt.Errorf("syncer not bound to a server cart")
	}
	c, err := s.store.Load(ctx, s.cartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &Cart{}
	}
	s.setState(StateClean)
	return c, nil
}
