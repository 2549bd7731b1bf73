// Package refhandle models a key or value stored in internal/hashcore as an
// opaque, optionally reference-counted handle supporting hash and equality,
// both of which may fail.
//
// Most callers store plain comparable values (strings, ints, small structs)
// that do not need retain/release bookkeeping; those pass through the
// Retain/Release hooks as zero-cost no-ops. Callers that need exact
// reference-count accounting (tested by the hash table's "reference
// discipline" property) implement Retainer/Releaser on their key or value
// type, and HashCore calls them on every acquisition and eviction.
//
// © 2025 zdict authors. MIT License.
package refhandle

import "hash/maphash"

// Retainer is implemented by a key or value type that needs to know when
// HashCore has acquired a new reference to one of its instances (insertion,
// or update-in-place retaining the new value). Resize moves stored handles
// to the new arrays without retaining them again.
type Retainer interface {
	Retain()
}

// Releaser is implemented by a key or value type that needs to know when
// HashCore has released its last reference (overwrite, delete, clear, or
// free).
type Releaser interface {
	Release()
}

// Retain calls v.Retain() if v implements Retainer. No-op otherwise.
func Retain[T any](v T) {
	if r, ok := any(v).(Retainer); ok {
		r.Retain()
	}
}

// Release calls v.Release() if v implements Releaser. No-op otherwise.
func Release[T any](v T) {
	if r, ok := any(v).(Releaser); ok {
		r.Release()
	}
}

// HashFunc computes the hash of a key. It may fail — a custom implementation
// might, for example, reject a key whose runtime type isn't hashable.
type HashFunc[K any] func(K) (uint64, error)

// EqualFunc compares two keys for equality. It may fail for the same reason
// HashFunc may.
type EqualFunc[K any] func(a, b K) (bool, error)

var seed = maphash.MakeSeed()

// DefaultHash derives a HashFunc for any comparable K using a shared
// process-lifetime maphash seed, dispatching on the dynamic type to hash
// strings, byte slices, and scalar integers directly rather than falling
// back to a textual encoding for every key.
func DefaultHash[K comparable]() HashFunc[K] {
	return func(k K) (uint64, error) {
		var h maphash.Hash
		h.SetSeed(seed)
		switch v := any(k).(type) {
		case string:
			h.WriteString(v)
		case []byte:
			h.Write(v)
		case int:
			writeUint64(&h, uint64(v))
		case int8:
			writeUint64(&h, uint64(v))
		case int16:
			writeUint64(&h, uint64(v))
		case int32:
			writeUint64(&h, uint64(v))
		case int64:
			writeUint64(&h, uint64(v))
		case uint:
			writeUint64(&h, uint64(v))
		case uint8:
			writeUint64(&h, uint64(v))
		case uint16:
			writeUint64(&h, uint64(v))
		case uint32:
			writeUint64(&h, uint64(v))
		case uint64:
			writeUint64(&h, v)
		default:
			// Fall back to a stable textual encoding of the key. This keeps
			// DefaultHash total (never fails) for any comparable K; callers
			// needing a fallible hash should supply a custom HashFunc via
			// WithHashFunc.
			h.WriteString(anyKeyString(v))
		}
		return h.Sum64(), nil
	}
}

func writeUint64(h *maphash.Hash, v uint64) {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(v >> (8 * i))
	}
	h.Write(buf[:])
}

func anyKeyString(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return fallbackFormat(v)
}

// DefaultEqual derives an EqualFunc for any comparable K using Go's native
// equality operator. A key whose H2 tag differs from the stored slot's tag
// is rejected by Core before this is ever called, so this only needs to
// handle the case where the tags already match.
func DefaultEqual[K comparable]() EqualFunc[K] {
	return func(a, b K) (bool, error) {
		return a == b, nil
	}
}
