// Package hashcore implements the SwissTable-style open-addressed hash table
// that backs pkg/zdict. It knows nothing about mapping-facade modes; it only
// provides a fixed-capability slot container: init, set, get, delete, clear,
// free, and a slot visitor for iteration.
//
// The design follows Abseil/Go-runtime SwissTable terminology (H1 selects the
// starting bucket, H2 is a short per-slot tag stored in a parallel metadata
// byte array) but uses simple linear probing over individual slots rather
// than SIMD-matched groups (see DESIGN.md for the libraries this layout draws
// on); grouped/SIMD matching is not needed at this scale and would not be
// portable without unsafe group-compare tricks.
//
// © 2025 zdict authors. MIT License.
package hashcore

import (
	"errors"
	"fmt"

	"github.com/zdict-go/zdict/internal/bitutil"
	"github.com/zdict-go/zdict/internal/epoch"
	"github.com/zdict-go/zdict/internal/refhandle"
)

const (
	metaEmpty     byte    = 0
	metaTombstone byte    = 1
	loadFactor    float64 = 0.7
	minCapacity   int     = 16
)

// AllocationFailure is returned when growing the table fails. In Go this can
// only realistically happen for a pathologically large requested capacity;
// it is produced by recovering the panic make() would otherwise raise, so
// that allocation failure surfaces as an ordinary error instead of crashing
// the process.
type AllocationFailure struct {
	Requested int
	Cause     any
}

func (e *AllocationFailure) Error() string {
	return fmt.Sprintf("hashcore: allocation of capacity %d failed: %v", e.Requested, e.Cause)
}

// ErrNotFound is returned by Delete when the key is absent.
var ErrNotFound = errors.New("hashcore: key not present")

// Core is an open-addressed hash table with SwissTable-style metadata-byte
// probing. K must be comparable so the default equality function can use
// Go's == operator;
// callers needing fallible or non-== equality supply their own EqualFunc.
type Core[K comparable, V any] struct {
	meta []byte
	keys []K
	vals []V

	size     int
	capacity int

	hashFn refhandle.HashFunc[K]
	eqFn   refhandle.EqualFunc[K]

	resizes *epoch.Ring
	freed   bool
}

// New constructs a Core with the requested initial capacity, rounded up to a
// power of two and to at least minCapacity.
func New[K comparable, V any](initialCapacity int, hashFn refhandle.HashFunc[K], eqFn refhandle.EqualFunc[K]) *Core[K, V] {
	cap := bitutil.NextPow2(initialCapacity)
	if cap < minCapacity {
		cap = minCapacity
	}
	if hashFn == nil {
		hashFn = refhandle.DefaultHash[K]()
	}
	if eqFn == nil {
		eqFn = refhandle.DefaultEqual[K]()
	}
	return &Core[K, V]{
		meta:     make([]byte, cap),
		keys:     make([]K, cap),
		vals:     make([]V, cap),
		capacity: cap,
		hashFn:   hashFn,
		eqFn:     eqFn,
		resizes:  epoch.New(),
	}
}

// Len returns the number of occupied slots.
func (c *Core[K, V]) Len() int { return c.size }

// Capacity returns the current backing-array size.
func (c *Core[K, V]) Capacity() int { return c.capacity }

// LoadFactor returns size/capacity.
func (c *Core[K, V]) LoadFactor() float64 { return float64(c.size) / float64(c.capacity) }

// ResizeHistory exposes the bounded resize-event ring for debug snapshots.
func (c *Core[K, V]) ResizeHistory() []epoch.Event { return c.resizes.Recent() }

// ResizeCount returns the total number of resizes ever performed.
func (c *Core[K, V]) ResizeCount() int { return c.resizes.Count() }

func h1(h uint64, capacity int) int {
	return int(h) & (capacity - 1)
}

func h2(h uint64) byte {
	return byte(((h >> 56) | 2) & 0xFF)
}

// Set inserts a new key or updates the value of an existing one, growing the
// table first if one more entry would exceed the 0.7 load factor. The check
// runs before the key is looked up, so an update of an existing key at that
// threshold grows the table too.
func (c *Core[K, V]) Set(key K, val V) error {
	if float64(c.size+1) > loadFactor*float64(c.capacity) {
		if err := c.resize(c.capacity*2, epoch.CauseGrowth); err != nil {
			return err
		}
	}

	h, err := c.hashFn(key)
	if err != nil {
		return err
	}
	tag := h2(h)
	start := h1(h, c.capacity)
	mask := c.capacity - 1

	firstDeleted := -1
	for step := 0; step < c.capacity; step++ {
		pos := (start + step) & mask
		switch c.meta[pos] {
		case metaEmpty:
			target := pos
			if firstDeleted >= 0 {
				target = firstDeleted
			}
			refhandle.Retain(key)
			refhandle.Retain(val)
			c.keys[target] = key
			c.vals[target] = val
			c.meta[target] = tag
			c.size++
			return nil
		case metaTombstone:
			if firstDeleted < 0 {
				firstDeleted = pos
			}
		default:
			if c.meta[pos] == tag {
				eq, err := c.eqFn(c.keys[pos], key)
				if err != nil {
					return err
				}
				if eq {
					refhandle.Retain(val)
					refhandle.Release(c.vals[pos])
					c.vals[pos] = val
					return nil
				}
			}
		}
	}
	panic("hashcore: invariant violated, probe exhausted capacity without an empty slot")
}

// Get looks up key and returns its value. The second result is false on a
// miss. err is non-nil only if hashFn or eqFn failed.
func (c *Core[K, V]) Get(key K) (val V, ok bool, err error) {
	h, err := c.hashFn(key)
	if err != nil {
		return val, false, err
	}
	tag := h2(h)
	start := h1(h, c.capacity)
	mask := c.capacity - 1

	for step := 0; step < c.capacity; step++ {
		pos := (start + step) & mask
		m := c.meta[pos]
		if m == metaEmpty {
			return val, false, nil
		}
		if m == tag {
			eq, err := c.eqFn(c.keys[pos], key)
			if err != nil {
				return val, false, err
			}
			if eq {
				return c.vals[pos], true, nil
			}
		}
	}
	return val, false, nil
}

// Delete removes key, releasing its stored handles. Returns ErrNotFound if
// the key is absent.
func (c *Core[K, V]) Delete(key K) error {
	h, err := c.hashFn(key)
	if err != nil {
		return err
	}
	tag := h2(h)
	start := h1(h, c.capacity)
	mask := c.capacity - 1

	for step := 0; step < c.capacity; step++ {
		pos := (start + step) & mask
		m := c.meta[pos]
		if m == metaEmpty {
			return ErrNotFound
		}
		if m == tag {
			eq, err := c.eqFn(c.keys[pos], key)
			if err != nil {
				return err
			}
			if eq {
				refhandle.Release(c.keys[pos])
				refhandle.Release(c.vals[pos])
				var zeroK K
				var zeroV V
				c.keys[pos] = zeroK
				c.vals[pos] = zeroV
				c.meta[pos] = metaTombstone
				c.size--
				return nil
			}
		}
	}
	return ErrNotFound
}

// Clear releases every stored handle and resets the table to empty, keeping
// its current capacity.
func (c *Core[K, V]) Clear() {
	var zeroK K
	var zeroV V
	for i, m := range c.meta {
		if m != metaEmpty && m != metaTombstone {
			refhandle.Release(c.keys[i])
			refhandle.Release(c.vals[i])
			c.keys[i] = zeroK
			c.vals[i] = zeroV
		}
		c.meta[i] = metaEmpty
	}
	c.size = 0
}

// Free clears the table and drops the backing arrays. The Core must not be
// used afterwards.
func (c *Core[K, V]) Free() {
	c.Clear()
	c.meta = nil
	c.keys = nil
	c.vals = nil
	c.capacity = 0
	c.freed = true
}

// Range visits every occupied slot in index order, stopping early if fn
// returns false. Callers that need a stable snapshot (pkg/zdict's iteration
// contract) must copy keys/values out of fn themselves before any further
// mutation.
func (c *Core[K, V]) Range(fn func(key K, val V) bool) {
	for i, m := range c.meta {
		if m == metaEmpty || m == metaTombstone {
			continue
		}
		if !fn(c.keys[i], c.vals[i]) {
			return
		}
	}
}

// FirstOccupiedIndex returns the index of the first occupied slot in index
// order, and false if the table is empty. Used to give PopItem a
// deterministic choice of "arbitrary" entry without maintaining a separate
// insertion-order structure.
func (c *Core[K, V]) FirstOccupiedIndex() (idx int, ok bool) {
	for i, m := range c.meta {
		if m != metaEmpty && m != metaTombstone {
			return i, true
		}
	}
	return 0, false
}

// At returns the key/value stored at a slot index previously obtained from
// FirstOccupiedIndex or Range.
func (c *Core[K, V]) At(idx int) (K, V) {
	return c.keys[idx], c.vals[idx]
}

// resize grows (or explicitly resizes) the table to at least newCapacity,
// rounded up to a power of two. This is strict: if rehashing any existing
// entry fails, the original arrays are left untouched and the error is
// returned — no partial application, no leak, because the new arrays are
// discarded before anything is swapped in.
func (c *Core[K, V]) resize(newCapacity int, cause epoch.Cause) (err error) {
	newCapacity = bitutil.NextPow2(newCapacity)
	if newCapacity < minCapacity {
		newCapacity = minCapacity
	}

	var newMeta []byte
	var newKeys []K
	var newVals []V

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = &AllocationFailure{Requested: newCapacity, Cause: r}
			}
		}()
		newMeta = make([]byte, newCapacity)
		newKeys = make([]K, newCapacity)
		newVals = make([]V, newCapacity)
	}()
	if err != nil {
		return err
	}

	mask := newCapacity - 1
	for i, m := range c.meta {
		if m == metaEmpty || m == metaTombstone {
			continue
		}
		key := c.keys[i]
		val := c.vals[i]
		h, herr := c.hashFn(key)
		if herr != nil {
			// Abort: discard the half-built new arrays, leave c untouched.
			return herr
		}
		tag := h2(h)
		start := h1(h, newCapacity)
		placed := false
		for step := 0; step < newCapacity; step++ {
			pos := (start + step) & mask
			if newMeta[pos] == metaEmpty {
				newMeta[pos] = tag
				newKeys[pos] = key
				newVals[pos] = val
				placed = true
				break
			}
		}
		if !placed {
			panic("hashcore: invariant violated during resize, no empty slot in larger table")
		}
	}

	oldCapacity := c.capacity
	// Handles themselves are transferred, not re-retained/released: the new
	// arrays now hold the exact references the old arrays held.
	c.meta = newMeta
	c.keys = newKeys
	c.vals = newVals
	c.capacity = newCapacity
	c.resizes.Record(oldCapacity, newCapacity, cause)
	return nil
}

// Reserve grows the table to at least capacity if it is larger than the
// current capacity, recorded as an explicit (non-load-factor-driven) resize.
// Nothing in this module calls it: arena mode's larger default capacity (see
// pkg/zdict/config.go) is applied when the Core is constructed, not through
// Reserve.
func (c *Core[K, V]) Reserve(capacity int) error {
	if capacity <= c.capacity {
		return nil
	}
	return c.resize(capacity, epoch.CauseExplicit)
}
