package store

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// stamper hands out message ids and creation times that never go backwards
// within one adapter instance, so ordering by (created_at, id) matches
// insertion order.
type stamper struct {
	mu      sync.Mutex
	last    time.Time
	entropy *ulid.MonotonicEntropy
}

func newStamper() *stamper {
	return &stamper{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// next returns a fresh ULID and a creation time truncated to microseconds
// (the precision Postgres keeps) that is strictly after the previous one.
func (s *stamper) next() (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now

	id := ulid.MustNew(ulid.Timestamp(now), s.entropy)
	return id.String(), now
}
