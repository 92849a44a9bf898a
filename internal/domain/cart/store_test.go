package cart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStore_GetCreatesOnce(t *testing.T) {
	s := NewStore(time.Hour)

	c1 := s.Get("session-1")
	c1.merge("p1", 1, decimal.NewFromInt(5))

	c2 := s.Get("session-1")
	assert.Same(t, c1, c2)
	assert.Equal(t, 1, s.Len())
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := NewStore(time.Hour)

	s.Get("session-1").merge("p1", 2, decimal.NewFromInt(5))
	other := s.Get("session-2")

	assert.True(t, other.Empty())
	assert.Equal(t, 2, s.Len())
}

func TestStore_DeleteUnknownIsNoop(t *testing.T) {
	s := NewStore(time.Hour)
	s.Get("session-1")

	s.Delete("ghost")
	assert.Equal(t, 1, s.Len())

	s.Delete("session-1")
	assert.Zero(t, s.Len())
}

func TestStore_EvictExpired(t *testing.T) {
	s := NewStore(10 * time.Millisecond)

	s.Get("stale")
	time.Sleep(15 * time.Millisecond)
	s.Get("fresh")

	s.evictExpired(time.Now())

	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Get("fresh").Empty())
}

func TestStore_AccessRefreshesDeadline(t *testing.T) {
	s := NewStore(20 * time.Millisecond)

	s.Get("session-1")
	time.Sleep(12 * time.Millisecond)
	s.Get("session-1")
	time.Sleep(12 * time.Millisecond)

	// 24ms since creation but only 12ms since last access.
	s.evictExpired(time.Now())
	assert.Equal(t, 1, s.Len())
}
