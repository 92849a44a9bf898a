package cart

import (
	"context"
	"sync"
	"time"
)

// Store keeps one cart per session, evicting carts that have been idle for a
// TTL. Eviction silently discards the cart: nothing was reserved by adding
// lines, so expiry has no inventory effect.
type Store struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*storeEntry
}

type storeEntry struct {
	cart     *Cart
	lastSeen time.Time
}

// NewStore creates a Store with the given idle TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]*storeEntry),
	}
}

// Get returns the cart for sessionID, creating an empty one on first use.
// Every access refreshes the session's idle deadline.
func (s *Store) Get(sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		e = &storeEntry{cart: New()}
		s.entries[sessionID] = e
	}
	e.lastSeen = time.Now()
	return e.cart
}

// Delete drops the session's cart. Deleting an unknown session is a no-op.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictExpired removes sessions idle longer than the TTL.
func (s *Store) evictExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if now.Sub(e.lastSeen) >= s.ttl {
			delete(s.entries, id)
		}
	}
}

// StartCleanup launches a background goroutine that evicts expired sessions
// every half TTL. It stops when ctx is cancelled.
func (s *Store) StartCleanup(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.evictExpired(now)
			}
		}
	}()
}
