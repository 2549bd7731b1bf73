package zdict

import (
	"fmt"
	"hash/maphash"
	"sort"
)

// hashSeed is shared by every Dict instance in the process so that two
// distinct immutable Dicts with equal contents produce equal hashes — a
// per-instance random seed would break that property even though it would
// still be internally consistent for a single Dict.
var hashSeed = maphash.MakeSeed()

// Hash returns a stable hash of the Dict's contents, computed over the
// sorted (key, value) pairs. Only ModeImmutable Dicts are hashable; every
// other mode returns a *TypeMismatchError, matching the capability table in
// mode.go. The result is cached after first computation since an immutable
// Dict's contents can never change; concurrent callers collapse onto a
// single computation via singleflight instead of recomputing redundantly.
func (d *Dict[K, V]) Hash() (uint64, error) {
	caps := capsFor(d.mode)
	if !caps.hashable {
		return 0, modeViolation(d.mode, "hash")
	}

	// The cache is read only inside the singleflight call, whose internal
	// lock orders it after the write made by the call that computed it.
	v, err, _ := d.hashGroup.Do("hash", func() (any, error) {
		if d.hashValid {
			return d.cachedHash, nil
		}
		h, err := d.computeHash()
		if err != nil {
			return uint64(0), err
		}
		d.cachedHash = h
		d.hashValid = true
		return h, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

func (d *Dict[K, V]) computeHash() (uint64, error) {
	pairs := d.itemsLocked()
	defer releasePairs(pairs)
	sort.Slice(pairs, func(i, j int) bool {
		return fmt.Sprintf("%v", pairs[i].Key) < fmt.Sprintf("%v", pairs[j].Key)
	})

	var mh maphash.Hash
	mh.SetSeed(hashSeed)
	for _, p := range pairs {
		fmt.Fprintf(&mh, "%v\x00%v\x01", p.Key, p.Val)
	}
	return mh.Sum64(), nil
}
