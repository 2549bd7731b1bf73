// Package epoch keeps a small ring buffer of hash table resize events for
// observability: a bounded history of capacity changes that a debug
// snapshot or inspection CLI can render without re-deriving it from raw
// counters.
//
// Resize events are simply evicted from the ring once it is full, oldest
// first.
//
// © 2025 zdict authors. MIT License.
package epoch

import "time"

// Cause identifies why a resize happened.
type Cause uint8

const (
	// CauseGrowth means the table grew because the load factor would have
	// been exceeded by the next insert.
	CauseGrowth Cause = iota
	// CauseExplicit means the caller requested a larger capacity directly
	// (hashcore's Core.Reserve). A capacity chosen at construction, via
	// WithInitialCapacity or arena mode's default, records no event.
	CauseExplicit
)

func (c Cause) String() string {
	switch c {
	case CauseGrowth:
		return "growth"
	case CauseExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Event records a single resize.
type Event struct {
	ID         uint32
	OldCap     int
	NewCap     int
	Cause      Cause
	OccurredAt time.Time
}

const defaultRingSize = 16

// Ring is a fixed-capacity circular buffer of the most recent resize Events.
type Ring struct {
	events []Event
	next   int
	filled bool
	idCtr  uint32
}

// New constructs a Ring with room for the default number of recent events.
func New() *Ring {
	return &Ring{events: make([]Event, defaultRingSize)}
}

// Record appends a new resize event, evicting the oldest entry if the ring
// is full.
func (r *Ring) Record(oldCap, newCap int, cause Cause) {
	r.idCtr++
	r.events[r.next] = Event{
		ID:         r.idCtr,
		OldCap:     oldCap,
		NewCap:     newCap,
		Cause:      cause,
		OccurredAt: time.Now(),
	}
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.filled = true
	}
}

// Count returns the total number of resizes ever recorded, including those
// already evicted from the ring.
func (r *Ring) Count() int {
	return int(r.idCtr)
}

// Recent returns the buffered events oldest-to-newest.
func (r *Ring) Recent() []Event {
	if !r.filled {
		out := make([]Event, r.next)
		copy(out, r.events[:r.next])
		return out
	}
	out := make([]Event, len(r.events))
	copy(out, r.events[r.next:])
	copy(out[len(r.events)-r.next:], r.events[:r.next])
	return out
}
