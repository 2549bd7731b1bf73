package zdict

import "github.com/zdict-go/zdict/internal/refhandle"

// Pair is a single key/value entry, returned by Items and accepted by
// FromPairs/UpdatePairs.
type Pair[K any, V any] struct {
	Key K
	Val V
}

// ReleasePair releases both fields of a Pair obtained from Items. It is a
// no-op for keys/values that don't implement refhandle.Releaser — plain
// comparable keys and plain values need never call it. It exists for
// symmetry with the retain each Pair carries when it was snapshotted out of
// the table.
func ReleasePair[K any, V any](p Pair[K, V]) {
	refhandle.Release(p.Key)
	refhandle.Release(p.Val)
}

// releasePairs balances an internal itemsLocked snapshot that is never handed
// to a caller (String, Hash, Update).
func releasePairs[K any, V any](pairs []Pair[K, V]) {
	for _, p := range pairs {
		ReleasePair(p)
	}
}

// keysLocked snapshots every occupied slot's key, retaining each one. The
// snapshot is taken up front rather than lazily, so later mutation of the
// Dict cannot invalidate an in-flight Keys()/Values()/Items()/All() consumer.
func (d *Dict[K, V]) keysLocked() []K {
	out := make([]K, 0, d.core.Len())
	d.core.Range(func(k K, _ V) bool {
		refhandle.Retain(k)
		out = append(out, k)
		return true
	})
	return out
}

func (d *Dict[K, V]) valuesLocked() []V {
	out := make([]V, 0, d.core.Len())
	d.core.Range(func(_ K, v V) bool {
		refhandle.Retain(v)
		out = append(out, v)
		return true
	})
	return out
}

func (d *Dict[K, V]) itemsLocked() []Pair[K, V] {
	out := make([]Pair[K, V], 0, d.core.Len())
	d.core.Range(func(k K, v V) bool {
		refhandle.Retain(k)
		refhandle.Retain(v)
		out = append(out, Pair[K, V]{Key: k, Val: v})
		return true
	})
	return out
}
