package session

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically purges expired sessions. Neither backend evicts on
// its own, so without this the persistent store would grow without bound
// over long uptimes.
type Sweeper struct {
	store    Store
	interval time.Duration
}

// NewSweeper creates a sweeper over the given store.
func NewSweeper(store Store, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, interval: interval}
}

// Run purges on a ticker until ctx is cancelled. Intended to run in its own
// goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.store.PurgeExpired(ctx)
			if err != nil {
				log.Printf("session sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("session sweep removed %d expired sessions", n)
			}
		}
	}
}
