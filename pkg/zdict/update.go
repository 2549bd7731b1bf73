package zdict

// UpdatePairs applies a batch of (key, value) pairs. In ModeInsert, the
// whole batch is pre-validated against the dict's current contents (every
// key must be currently absent) before anything is applied — a single
// collision rejects the entire call with no partial effect. Every other
// mode applies pairs incrementally, each one subject to the same
// insert/update gate Set uses.
func (d *Dict[K, V]) UpdatePairs(pairs []Pair[K, V]) error {
	caps := capsFor(d.mode)

	if d.mode == ModeInsert {
		for _, p := range pairs {
			_, ok, err := d.core.Get(p.Key)
			if err != nil {
				return err
			}
			if ok {
				d.metrics.incModeViolation(d.mode.String())
				return modeViolation(d.mode, "update")
			}
		}
		before := d.core.ResizeCount()
		for _, p := range pairs {
			if err := d.core.Set(p.Key, p.Val); err != nil {
				return wrapAllocErr(err)
			}
		}
		d.recordResize(before)
		d.invalidateHash()
		d.metrics.incOp("update")
		return nil
	}

	if !caps.insertNew && !caps.updateExisting {
		d.metrics.incModeViolation(d.mode.String())
		return modeViolation(d.mode, "update")
	}

	before := d.core.ResizeCount()
	for _, p := range pairs {
		_, ok, err := d.core.Get(p.Key)
		if err != nil {
			return err
		}
		if !ok && !caps.insertNew {
			d.metrics.incModeViolation(d.mode.String())
			return modeViolation(d.mode, "insert")
		}
		if ok && !caps.updateExisting {
			d.metrics.incModeViolation(d.mode.String())
			return modeViolation(d.mode, "update")
		}
		if err := d.core.Set(p.Key, p.Val); err != nil {
			return wrapAllocErr(err)
		}
	}
	d.recordResize(before)
	d.invalidateHash()
	d.metrics.incOp("update")
	return nil
}

// Update applies every entry of other to d, using the same rules as
// UpdatePairs.
func (d *Dict[K, V]) Update(other *Dict[K, V]) error {
	pairs := other.itemsLocked()
	defer releasePairs(pairs)
	return d.UpdatePairs(pairs)
}

// UpdateMap applies every entry of m to d, using the same rules as
// UpdatePairs.
func (d *Dict[K, V]) UpdateMap(m map[K]V) error {
	pairs := make([]Pair[K, V], 0, len(m))
	for k, v := range m {
		pairs = append(pairs, Pair[K, V]{Key: k, Val: v})
	}
	return d.UpdatePairs(pairs)
}

// Keys returns a snapshot slice of every key, in table-slot order.
func (d *Dict[K, V]) Keys() []K { return d.keysLocked() }

// Values returns a snapshot slice of every value, in table-slot order.
func (d *Dict[K, V]) Values() []V { return d.valuesLocked() }

// Items returns a snapshot slice of every (key, value) pair, in table-slot
// order.
func (d *Dict[K, V]) Items() []Pair[K, V] { return d.itemsLocked() }

// All returns an iter.Seq2-shaped iterator over a point-in-time snapshot of
// the Dict's entries: the snapshot is taken before the first value is
// yielded, so concurrent or interleaved mutation of d cannot be observed
// mid-iteration.
func (d *Dict[K, V]) All() func(yield func(K, V) bool) {
	pairs := d.itemsLocked()
	return func(yield func(K, V) bool) {
		for _, p := range pairs {
			if !yield(p.Key, p.Val) {
				return
			}
		}
	}
}

// Copy returns a shallow copy of d: same mode, same hash/equal functions,
// same entries (each key/value retained again for the new table), and — for
// an immutable Dict with an already-computed hash — the cached hash value is
// carried over rather than recomputed.
func (d *Dict[K, V]) Copy() (*Dict[K, V], error) {
	out := &Dict[K, V]{
		mode:      d.mode,
		hashFn:    d.hashFn,
		eqFn:      d.eqFn,
		valueEqFn: d.valueEqFn,
		logger:    d.logger,
		metrics:   noopMetrics{},
	}
	core := newCoreLike(d, d.core.Capacity())
	out.core = core
	var err error
	d.core.Range(func(k K, v V) bool {
		if e := out.core.Set(k, v); e != nil {
			err = wrapAllocErr(e)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if d.mode == ModeImmutable && d.hashValid {
		out.cachedHash = d.cachedHash
		out.hashValid = true
	}
	return out, nil
}
