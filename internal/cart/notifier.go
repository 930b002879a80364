package cart

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Notifier is a synchronous publish/subscribe channel for cart changes driven
// by server-backed flows (server cart mutations, payment success). It is an
// explicit instance wired at bootstrap, not a package-level singleton; the
// subscriber list starts empty and is only ever shrunk by unsubscribe calls.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs []subscription
}

type subscription struct {
	id int
	fn func()
}

func NewNotifier() *Notifier { return &Notifier{} }

// Subscribe registers a callback and returns the function that removes
// exactly that registration. Identical callbacks are not deduplicated; the
// caller owns the subscription lifecycle and must unsubscribe on teardown or
// the callback keeps firing.
func (n *Notifier) Subscribe(fn func()) (unsubscribe func()) {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs = append(n.subs, subscription{id: id, fn: fn})
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i := range n.subs {
			if n.subs[i].id == id {
				n.subs = append(n.subs[:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit invokes every subscriber synchronously, in subscription order. A
// panicking subscriber is logged and skipped; the rest still run.
func (n *Notifier) Emit() {
	n.mu.Lock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Msg("cart change subscriber panicked")
				}
			}()
			s.fn()
		}()
	}
}
