// Package zdict implements a mode-gated mapping façade over a SwissTable
// hash core: a single generic Dict[K, V] type whose permitted mutations
// depend on the Mode it was constructed with (mutable, immutable, readonly,
// insert, arena).
//
// © 2025 zdict authors. MIT License.
package zdict

import (
	"errors"
	"reflect"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zdict-go/zdict/internal/hashcore"
	"github.com/zdict-go/zdict/internal/refhandle"
)

// Dict is a mode-gated mapping over comparable keys K and arbitrary values
// V. The zero value is not usable; construct one with New or one of the
// From* constructors.
type Dict[K comparable, V any] struct {
	core *hashcore.Core[K, V]
	mode Mode

	hashFn    refhandle.HashFunc[K]
	eqFn      refhandle.EqualFunc[K]
	valueEqFn func(a, b V) bool

	logger  *zap.Logger
	metrics metricsSink

	hashGroup  singleflight.Group
	cachedHash uint64
	hashValid  bool
}

func wrapAllocErr(err error) error {
	if err == nil {
		return nil
	}
	var af *hashcore.AllocationFailure
	if errors.As(err, &af) {
		return &AllocationFailureError{Inner: af}
	}
	return err
}

func (d *Dict[K, V]) valueEqual(a, b V) bool {
	if d.valueEqFn != nil {
		return d.valueEqFn(a, b)
	}
	return reflect.DeepEqual(a, b)
}

// recordResize reports to metrics when core's resize counter advanced since
// before, so Set/SetDefault/UpdatePairs can call it uniformly.
func (d *Dict[K, V]) recordResize(before int) {
	if d.core.ResizeCount() != before {
		hist := d.core.ResizeHistory()
		if len(hist) > 0 {
			last := hist[len(hist)-1]
			d.metrics.observeResize(last.NewCap)
			d.logger.Debug("zdict resize",
				zap.Int("old_capacity", last.OldCap),
				zap.Int("new_capacity", last.NewCap),
				zap.String("cause", last.Cause.String()))
		}
	}
}

// New constructs an empty Dict configured by opts.
func New[K comparable, V any](opts ...Option[K, V]) *Dict[K, V] {
	cfg := defaultConfig[K, V]()
	applyOptions(cfg, opts)
	core := hashcore.New[K, V](cfg.initialCapacity, cfg.hashFn, cfg.eqFn)
	return &Dict[K, V]{
		core:      core,
		mode:      cfg.mode,
		hashFn:    cfg.hashFn,
		eqFn:      cfg.eqFn,
		valueEqFn: cfg.valueEqFn,
		logger:    cfg.logger,
		metrics:   newMetricsSink(cfg.registry),
	}
}

// insertDuringConstruct populates the table directly, bypassing mode
// capability checks: building up an immutable or readonly Dict's initial
// contents is always allowed, only post-construction mutation is gated.
func (d *Dict[K, V]) insertDuringConstruct(k K, v V) error {
	return wrapAllocErr(d.core.Set(k, v))
}

// FromMap constructs a Dict pre-populated from a Go map.
func FromMap[K comparable, V any](m map[K]V, opts ...Option[K, V]) (*Dict[K, V], error) {
	d := New[K, V](opts...)
	for k, v := range m {
		if err := d.insertDuringConstruct(k, v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// FromPairs constructs a Dict pre-populated from an ordered slice of pairs.
// Later pairs with a duplicate key overwrite earlier ones, like a Go map
// literal would.
func FromPairs[K comparable, V any](pairs []Pair[K, V], opts ...Option[K, V]) (*Dict[K, V], error) {
	d := New[K, V](opts...)
	for _, p := range pairs {
		if err := d.insertDuringConstruct(p.Key, p.Val); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// FromSeq constructs a Dict pre-populated from an iter.Seq2, the idiomatic
// Go replacement for constructing from an arbitrary key/value iterable.
func FromSeq[K comparable, V any](seq func(yield func(K, V) bool), opts ...Option[K, V]) (*Dict[K, V], error) {
	d := New[K, V](opts...)
	var ierr error
	seq(func(k K, v V) bool {
		if err := d.insertDuringConstruct(k, v); err != nil {
			ierr = err
			return false
		}
		return true
	})
	if ierr != nil {
		return nil, ierr
	}
	return d, nil
}

// FromPairsAny constructs a Dict from a slice of untyped 2-tuples ([2]any or
// []any of length 2), returning ValueMismatchError for any entry that isn't
// a well-shaped 2-tuple of (K, V). Useful when a caller has an iterable of
// arbitrary pairs on hand and doesn't want to convert it to a typed
// []Pair[K, V] first.
func FromPairsAny[K comparable, V any](items []any, opts ...Option[K, V]) (*Dict[K, V], error) {
	d := New[K, V](opts...)
	for _, item := range items {
		k, v, err := asPair[K, V](item)
		if err != nil {
			return nil, err
		}
		if err := d.insertDuringConstruct(k, v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func asPair[K comparable, V any](item any) (K, V, error) {
	var zeroK K
	var zeroV V
	var a, b any
	switch t := item.(type) {
	case [2]any:
		a, b = t[0], t[1]
	case []any:
		if len(t) != 2 {
			return zeroK, zeroV, &ValueMismatchError{Msg: "each item must be a 2-tuple"}
		}
		a, b = t[0], t[1]
	default:
		return zeroK, zeroV, &ValueMismatchError{Msg: "each item must be a 2-tuple"}
	}
	k, ok := a.(K)
	if !ok {
		return zeroK, zeroV, &ValueMismatchError{Msg: "pair key has the wrong type"}
	}
	v, ok := b.(V)
	if !ok {
		return zeroK, zeroV, &ValueMismatchError{Msg: "pair value has the wrong type"}
	}
	return k, v, nil
}

// Len returns the number of entries.
func (d *Dict[K, V]) Len() int { return d.core.Len() }

// Mode returns the Dict's construction mode.
func (d *Dict[K, V]) Mode() Mode { return d.mode }

// Contains reports whether key is present.
func (d *Dict[K, V]) Contains(key K) (bool, error) {
	_, ok, err := d.core.Get(key)
	return ok, err
}

// Get returns the value for key, or a *KeyMissingError if absent.
func (d *Dict[K, V]) Get(key K) (V, error) {
	v, ok, err := d.core.Get(key)
	if err != nil {
		return v, err
	}
	if !ok {
		var zero V
		return zero, &KeyMissingError{Key: key}
	}
	d.metrics.incOp("get")
	return v, nil
}

// MustGet returns the value for key, panicking if it is absent or if the
// configured hash/equal functions fail. Intended for call sites that have
// already established the key's presence (e.g. right after Set) and want to
// avoid a redundant error check.
func (d *Dict[K, V]) MustGet(key K) V {
	v, err := d.Get(key)
	if err != nil {
		panic(err)
	}
	return v
}

// GetOr returns the value for key, or def if key is absent. A hash/equality
// failure is still reported, since the lookup genuinely could not be
// completed.
func (d *Dict[K, V]) GetOr(key K, def V) (V, error) {
	v, ok, err := d.core.Get(key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Set inserts or updates key, subject to the Dict's mode: modes without
// insertNew reject a new key, modes without updateExisting reject
// overwriting an existing one. The capability check happens before any
// mutation, so a rejected Set never invalidates a cached immutable hash.
func (d *Dict[K, V]) Set(key K, val V) error {
	_, exists, err := d.core.Get(key)
	if err != nil {
		return err
	}
	caps := capsFor(d.mode)
	if !exists && !caps.insertNew {
		d.metrics.incModeViolation(d.mode.String())
		return modeViolation(d.mode, "insert")
	}
	if exists && !caps.updateExisting {
		d.metrics.incModeViolation(d.mode.String())
		return modeViolation(d.mode, "update")
	}
	before := d.core.ResizeCount()
	if err := d.core.Set(key, val); err != nil {
		return wrapAllocErr(err)
	}
	d.recordResize(before)
	d.invalidateHash()
	d.metrics.incOp("set")
	return nil
}

// Delete removes key. Returns *KeyMissingError if absent, or a
// *TypeMismatchError if the mode forbids deletion.
func (d *Dict[K, V]) Delete(key K) error {
	caps := capsFor(d.mode)
	if !caps.deleteClearPopItem {
		d.metrics.incModeViolation(d.mode.String())
		return modeViolation(d.mode, "delete")
	}
	if err := d.core.Delete(key); err != nil {
		if errors.Is(err, hashcore.ErrNotFound) {
			return &KeyMissingError{Key: key}
		}
		return err
	}
	d.invalidateHash()
	d.metrics.incOp("delete")
	return nil
}

// Clear removes every entry, subject to the same mode gate as Delete.
func (d *Dict[K, V]) Clear() error {
	caps := capsFor(d.mode)
	if !caps.deleteClearPopItem {
		d.metrics.incModeViolation(d.mode.String())
		return modeViolation(d.mode, "clear")
	}
	d.core.Clear()
	d.invalidateHash()
	d.metrics.incOp("clear")
	return nil
}

// Pop removes and returns the value for key. Returns *KeyMissingError if
// absent.
func (d *Dict[K, V]) Pop(key K) (V, error) {
	caps := capsFor(d.mode)
	if !caps.deleteClearPopItem {
		var zero V
		d.metrics.incModeViolation(d.mode.String())
		return zero, modeViolation(d.mode, "pop")
	}
	v, ok, err := d.core.Get(key)
	if err != nil {
		return v, err
	}
	if !ok {
		var zero V
		return zero, &KeyMissingError{Key: key}
	}
	if err := d.core.Delete(key); err != nil {
		return v, err
	}
	d.invalidateHash()
	d.metrics.incOp("pop")
	return v, nil
}

// PopOr removes and returns the value for key, or def if absent. A missing
// key is not an error here, unlike Pop.
func (d *Dict[K, V]) PopOr(key K, def V) (V, error) {
	caps := capsFor(d.mode)
	v, ok, err := d.core.Get(key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	if !caps.deleteClearPopItem {
		d.metrics.incModeViolation(d.mode.String())
		return def, modeViolation(d.mode, "pop")
	}
	if err := d.core.Delete(key); err != nil {
		return def, err
	}
	d.invalidateHash()
	d.metrics.incOp("pop")
	return v, nil
}

// PopItem removes and returns an arbitrary (key, value) pair: the first
// occupied slot in index order — deterministic given a fixed table state,
// not a promise about insertion order.
func (d *Dict[K, V]) PopItem() (K, V, error) {
	caps := capsFor(d.mode)
	if !caps.deleteClearPopItem {
		var zeroK K
		var zeroV V
		d.metrics.incModeViolation(d.mode.String())
		return zeroK, zeroV, modeViolation(d.mode, "popitem")
	}
	idx, ok := d.core.FirstOccupiedIndex()
	if !ok {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, &KeyMissingError{Key: "<empty>"}
	}
	k, v := d.core.At(idx)
	if err := d.core.Delete(k); err != nil {
		return k, v, err
	}
	d.invalidateHash()
	d.metrics.incOp("popitem")
	return k, v, nil
}

// SetDefault returns the existing value for key, or inserts and returns def
// if absent. Reading an existing key is always permitted regardless of
// mode, since it performs no mutation; inserting a missing key is gated on
// setdefaultMissing.
func (d *Dict[K, V]) SetDefault(key K, def V) (V, error) {
	existing, ok, err := d.core.Get(key)
	if err != nil {
		return existing, err
	}
	if ok {
		return existing, nil
	}
	caps := capsFor(d.mode)
	if !caps.setdefaultMissing {
		d.metrics.incModeViolation(d.mode.String())
		return def, modeViolation(d.mode, "setdefault")
	}
	before := d.core.ResizeCount()
	if err := d.core.Set(key, def); err != nil {
		return def, wrapAllocErr(err)
	}
	d.recordResize(before)
	d.invalidateHash()
	d.metrics.incOp("setdefault")
	return def, nil
}

func (d *Dict[K, V]) invalidateHash() {
	d.hashValid = false
}

func newCoreLike[K comparable, V any](d *Dict[K, V], capacity int) *hashcore.Core[K, V] {
	return hashcore.New[K, V](capacity, d.hashFn, d.eqFn)
}
