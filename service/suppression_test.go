package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock is a manually advanced clock for expiry tests
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSuppressionSet(window time.Duration) (*SuppressionSet, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	set := NewSuppressionSet(window)
	set.now = clock.Now
	return set, clock
}

func TestSuppressionSet_ConsumeOnMatch(t *testing.T) {
	set, clock := newTestSuppressionSet(time.Second)
	key := SuppressionKey{MessageID: "m1", UserID: "u1", Emoji: "👍"}

	assert.False(t, set.Consume(key), "nothing marked yet")

	set.Mark(key)
	clock.Advance(500 * time.Millisecond)
	assert.True(t, set.Consume(key))
	assert.False(t, set.Consume(key), "an entry suppresses exactly one echo")
	assert.Equal(t, 0, set.Len())
}

func TestSuppressionSet_KeysAreDistinct(t *testing.T) {
	set, _ := newTestSuppressionSet(time.Second)
	set.Mark(SuppressionKey{MessageID: "m1", UserID: "u1", Emoji: "👍"})

	tests := []struct {
		name string
		key  SuppressionKey
	}{
		{"other message", SuppressionKey{MessageID: "m2", UserID: "u1", Emoji: "👍"}},
		{"other user", SuppressionKey{MessageID: "m1", UserID: "u2", Emoji: "👍"}},
		{"other emoji", SuppressionKey{MessageID: "m1", UserID: "u1", Emoji: "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, set.Consume(tt.key))
		})
	}
	assert.Equal(t, 1, set.Len())
}

func TestSuppressionSet_Expiry(t *testing.T) {
	set, clock := newTestSuppressionSet(time.Second)
	key := SuppressionKey{MessageID: "m1", UserID: "u1", Emoji: "👍"}

	set.Mark(key)
	clock.Advance(time.Second)
	assert.False(t, set.Consume(key), "the window is exclusive")
	assert.Equal(t, 0, set.Len(), "expired entries are dropped on lookup")
}

func TestSuppressionSet_PendingCount(t *testing.T) {
	set, _ := newTestSuppressionSet(time.Second)
	key := SuppressionKey{MessageID: "m1", UserID: "u1", Emoji: "👍"}

	set.Mark(key)
	set.Mark(key)
	assert.True(t, set.Consume(key))
	assert.True(t, set.Consume(key))
	assert.False(t, set.Consume(key))
}

func TestSuppressionSet_Forget(t *testing.T) {
	set, _ := newTestSuppressionSet(time.Second)
	key := SuppressionKey{MessageID: "m1", UserID: "u1", Emoji: "👍"}

	set.Mark(key)
	set.Forget(key)
	assert.False(t, set.Consume(key))

	// Forgetting an unknown key is harmless
	set.Forget(SuppressionKey{MessageID: "x"})
}

func TestSuppressionSet_Sweep(t *testing.T) {
	set, clock := newTestSuppressionSet(time.Second)

	set.Mark(SuppressionKey{MessageID: "old"})
	clock.Advance(700 * time.Millisecond)
	set.Mark(SuppressionKey{MessageID: "new"})
	clock.Advance(400 * time.Millisecond)

	assert.Equal(t, 1, set.Sweep())
	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Consume(SuppressionKey{MessageID: "new"}))
}

func TestSuppressionSet_RunStopsWithContext(t *testing.T) {
	set := NewSuppressionSet(10 * time.Millisecond)
	set.Mark(SuppressionKey{MessageID: "m1"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		set.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return set.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
