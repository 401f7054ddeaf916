package service

import (
	"context"
	"sync"
	"time"
)

// DefaultSuppressionWindow is how long a bot-initiated reaction removal is
// expected to take to echo back as a remove event
const DefaultSuppressionWindow = time.Second

// SuppressionKey identifies one reaction of one user on one message
type SuppressionKey struct {
	MessageID string
	UserID    string
	Emoji     string // models.Emoji.Key()
}

type suppressionEntry struct {
	pending int // removals issued but not yet echoed
	expiry  time.Time
}

// SuppressionSet remembers reaction removals the bot issued itself so the
// echoed remove events are not mistaken for a user un-reacting. An entry is
// consumed by the first matching remove event or dropped once its window
// has passed.
type SuppressionSet struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	entries map[SuppressionKey]*suppressionEntry
}

// NewSuppressionSet creates a set whose entries live for window
func NewSuppressionSet(window time.Duration) *SuppressionSet {
	if window <= 0 {
		window = DefaultSuppressionWindow
	}
	return &SuppressionSet{
		window:  window,
		now:     time.Now,
		entries: make(map[SuppressionKey]*suppressionEntry),
	}
}

// Mark records a removal about to be issued for key
func (s *SuppressionSet) Mark(key SuppressionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.expiry) {
		entry = &suppressionEntry{}
		s.entries[key] = entry
	}
	entry.pending++
	entry.expiry = now.Add(s.window)
}

// Consume reports whether a live entry exists for key and uses up one
// pending removal of it. Expired entries are dropped and report false.
func (s *SuppressionSet) Consume(key SuppressionKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false
	}
	if !s.now().Before(entry.expiry) {
		delete(s.entries, key)
		return false
	}

	entry.pending--
	if entry.pending <= 0 {
		delete(s.entries, key)
	}
	return true
}

// Forget withdraws one pending removal, used when the removal call failed
// and no echo will arrive
func (s *SuppressionSet) Forget(key SuppressionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return
	}
	entry.pending--
	if entry.pending <= 0 {
		delete(s.entries, key)
	}
}

// Sweep drops expired entries and returns how many were removed
func (s *SuppressionSet) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.expiry) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys, expired or not
func (s *SuppressionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run sweeps expired entries every window until ctx is done
func (s *SuppressionSet) Run(ctx context.Context) {
	ticker := time.NewTicker(s.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
