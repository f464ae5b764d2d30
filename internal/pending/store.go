// Package pending holds freshly generated cards while their owner
// decides to keep or discard them.
package pending

import (
	"sync"
	"time"

	"cardforge-bot/internal/card"
)

type Entry struct {
	Card      card.Card
	OwnerID   int64
	ChatID    int64
	CreatedAt time.Time
}

type Options struct {
	TTL time.Duration
}

type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
}

func NewStore(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		entries: make(map[string]Entry),
		ttl:     ttl,
	}
}

func (s *Store) Put(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.entries[e.Card.ID] = e
}

// Take removes and returns the entry for a card if it belongs to owner
// and has not expired.
func (s *Store) Take(cardID string, ownerID int64) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	e, ok := s.entries[cardID]
	if !ok || e.OwnerID != ownerID {
		return Entry{}, false
	}
	delete(s.entries, cardID)
	return e, true
}

func (s *Store) pruneLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for id, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}
