package zdict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zdict-go/zdict/internal/epoch"
)

// String renders a deterministic, sorted-by-key representation for
// debugging and logging: zdict({k: v, ...}, mode='mutable').
func (d *Dict[K, V]) String() string {
	pairs := d.itemsLocked()
	defer releasePairs(pairs)
	sort.Slice(pairs, func(i, j int) bool {
		return fmt.Sprintf("%v", pairs[i].Key) < fmt.Sprintf("%v", pairs[j].Key)
	})

	var b strings.Builder
	b.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v: %v", p.Key, p.Val)
	}
	b.WriteByte('}')
	return fmt.Sprintf("zdict(%s, mode='%s')", b.String(), d.mode)
}

// Equal reports whether d and other hold the same set of (key, value)
// pairs, using the configured value-equality function (WithValueEqualFunc,
// defaulting to reflect.DeepEqual). Mode is not part of equality.
func (d *Dict[K, V]) Equal(other *Dict[K, V]) (bool, error) {
	if d.core.Len() != other.core.Len() {
		return false, nil
	}
	match := true
	var ferr error
	d.core.Range(func(k K, v V) bool {
		ov, ok, err := other.core.Get(k)
		if err != nil {
			ferr = err
			return false
		}
		if !ok || !d.valueEqual(v, ov) {
			match = false
			return false
		}
		return true
	})
	if ferr != nil {
		return false, ferr
	}
	return match, nil
}

// EqualMap reports whether d holds exactly the same (key, value) pairs as
// m.
func (d *Dict[K, V]) EqualMap(m map[K]V) bool {
	if d.core.Len() != len(m) {
		return false
	}
	eq := true
	d.core.Range(func(k K, v V) bool {
		ov, ok := m[k]
		if !ok || !d.valueEqual(v, ov) {
			eq = false
			return false
		}
		return true
	})
	return eq
}

// Snapshot is a point-in-time, JSON-serializable view of a Dict's internal
// state, returned by DebugSnapshot for the zdict-inspect CLI and for
// exposing table health without reaching into unexported fields.
type Snapshot struct {
	Len        int           `json:"len"`
	Capacity   int           `json:"capacity"`
	LoadFactor float64       `json:"load_factor"`
	Mode       string        `json:"mode"`
	Resizes    []epoch.Event `json:"resizes"`
}

// DebugSnapshot returns a Snapshot of the Dict's current internal state.
func (d *Dict[K, V]) DebugSnapshot() Snapshot {
	return Snapshot{
		Len:        d.core.Len(),
		Capacity:   d.core.Capacity(),
		LoadFactor: d.core.LoadFactor(),
		Mode:       d.mode.String(),
		Resizes:    d.core.ResizeHistory(),
	}
}
