package hashcore

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/zdict-go/zdict/internal/refhandle"
)

func newIntCore(t testing.TB, initialCap int) *Core[int, int] {
	t.Helper()
	return New[int, int](initialCap, refhandle.DefaultHash[int](), refhandle.DefaultEqual[int]())
}

func TestSetGetDelete(t *testing.T) {
	c := newIntCore(t, 16)

	if err := c.Set(1, 100); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := c.Get(1)
	if err != nil || !ok || v != 100 {
		t.Fatalf("Get(1) = %d, %v, %v", v, ok, err)
	}

	if err := c.Set(1, 200); err != nil {
		t.Fatalf("Set update: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("update should not change size, got %d", c.Len())
	}
	v, ok, _ = c.Get(1)
	if !ok || v != 200 {
		t.Fatalf("Get after update = %d, %v", v, ok)
	}

	if err := c.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(1); ok {
		t.Fatalf("key should be gone after delete")
	}
	if err := c.Delete(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should return ErrNotFound, got %v", err)
	}
}

// TestDictEquivalence checks that, for a sequence of insert/delete/lookup
// operations, Core's contents match a reference Go map at every step.
func TestDictEquivalence(t *testing.T) {
	c := newIntCore(t, 16)
	ref := map[int]int{}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		k := rng.Intn(200)
		switch rng.Intn(3) {
		case 0:
			v := rng.Int()
			if err := c.Set(k, v); err != nil {
				t.Fatalf("Set: %v", err)
			}
			ref[k] = v
		case 1:
			_ = c.Delete(k)
			delete(ref, k)
		case 2:
			v, ok, err := c.Get(k)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			refV, refOK := ref[k]
			if ok != refOK || (ok && v != refV) {
				t.Fatalf("mismatch at key %d: core=(%d,%v) ref=(%d,%v)", k, v, ok, refV, refOK)
			}
		}

		if c.Len() != len(ref) {
			t.Fatalf("size mismatch: core=%d ref=%d", c.Len(), len(ref))
		}
	}

	for k, v := range ref {
		got, ok, err := c.Get(k)
		if err != nil || !ok || got != v {
			t.Fatalf("final check failed for key %d: got=(%d,%v,%v) want %d", k, got, ok, err, v)
		}
	}
}

func TestLoadFactorInvariant(t *testing.T) {
	c := newIntCore(t, 16)
	for i := 0; i < 10000; i++ {
		if err := c.Set(i, i); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if c.LoadFactor() > loadFactor {
			t.Fatalf("load factor %f exceeds %f at size %d, capacity %d", c.LoadFactor(), loadFactor, c.Len(), c.Capacity())
		}
	}
}

func TestNoDuplicateKeys(t *testing.T) {
	c := newIntCore(t, 16)
	for i := 0; i < 500; i++ {
		_ = c.Set(i%50, i)
	}
	seen := map[int]bool{}
	count := 0
	c.Range(func(k, v int) bool {
		if seen[k] {
			t.Fatalf("key %d observed twice while scanning", k)
		}
		seen[k] = true
		count++
		return true
	})
	if count != c.Len() {
		t.Fatalf("scanned %d occupied slots, Len()=%d", count, c.Len())
	}
	if len(seen) != c.Len() {
		t.Fatalf("distinct keys %d != size %d", len(seen), c.Len())
	}
}

// TestProbeIntegrity reimplements the probe walk independently and checks it
// reaches every occupied slot without passing an EMPTY meta byte first.
func TestProbeIntegrity(t *testing.T) {
	c := newIntCore(t, 16)
	for i := 0; i < 2000; i++ {
		_ = c.Set(i, i)
	}
	hashFn := refhandle.DefaultHash[int]()

	c.Range(func(k, v int) bool {
		h, err := hashFn(k)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		start := h1(h, c.capacity)
		mask := c.capacity - 1
		reached := false
		for step := 0; step < c.capacity; step++ {
			pos := (start + step) & mask
			if c.meta[pos] == metaEmpty {
				t.Fatalf("probe for key %d hit EMPTY before reaching its slot", k)
			}
			if c.keys[pos] == k && c.meta[pos] != metaTombstone {
				reached = true
				break
			}
		}
		if !reached {
			t.Fatalf("probe for key %d never reached its slot", k)
		}
		return true
	})
}

func TestIdempotentResize(t *testing.T) {
	c := newIntCore(t, 16)
	if err := c.Set(7, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	capBefore := c.Capacity()
	sizeBefore := c.Len()

	for i := 0; i < 100; i++ {
		if err := c.Set(7, 1); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	if c.Capacity() != capBefore {
		t.Fatalf("capacity changed on idempotent sets: %d -> %d", capBefore, c.Capacity())
	}
	if c.Len() != sizeBefore {
		t.Fatalf("size changed on idempotent sets: %d -> %d", sizeBefore, c.Len())
	}
}

func TestGrowsAndShrinksNever(t *testing.T) {
	c := newIntCore(t, 16)
	for i := 0; i < 1001; i++ {
		_ = c.Set(i, i)
	}
	for i := 0; i < 1000; i++ {
		_ = c.Delete(i)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if _, ok, _ := c.Get(1000); !ok {
		t.Fatalf("expected key 1000 to survive")
	}
	if _, ok, _ := c.Get(500); ok {
		t.Fatalf("expected key 500 to be gone")
	}
	if c.ResizeCount() == 0 {
		t.Fatalf("expected at least one resize while growing to 1001 entries")
	}
	// Non-goal: no shrinking on deletion.
	capAfterDeletes := c.Capacity()
	for i := 1001; i < 1100; i++ {
		_ = c.Delete(i) // no-ops, all absent
	}
	if c.Capacity() != capAfterDeletes {
		t.Fatalf("capacity changed from no-op deletes: %d -> %d", capAfterDeletes, c.Capacity())
	}
}

// countedHandle implements refhandle.Retainer/Releaser so the reference
// discipline property can be checked: total retains must equal total
// releases at the end of the Core's lifetime, at the slot-ownership level
// (insert, update-overwrite, delete, clear, free).
type countedHandle struct {
	id int
	rc *refCounts
}

type refCounts struct {
	retains, releases int
}

func (h countedHandle) Retain()  { h.rc.retains++ }
func (h countedHandle) Release() { h.rc.releases++ }

func TestReferenceDiscipline(t *testing.T) {
	rc := &refCounts{}
	c := New[int, countedHandle](16, refhandle.DefaultHash[int](), refhandle.DefaultEqual[int]())

	for i := 0; i < 300; i++ {
		if err := c.Set(i, countedHandle{id: i, rc: rc}); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	// Update-in-place: retains the new value, releases the old one.
	for i := 0; i < 300; i += 2 {
		if err := c.Set(i, countedHandle{id: i, rc: rc}); err != nil {
			t.Fatalf("Set update: %v", err)
		}
	}
	for i := 0; i < 100; i++ {
		if err := c.Delete(i); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}
	c.Clear()
	c.Free()

	if rc.retains != rc.releases {
		t.Fatalf("reference discipline violated: retains=%d releases=%d", rc.retains, rc.releases)
	}
}

// TestResizeStrictAbort verifies that if rehashing an entry during resize
// fails, the original table is left completely untouched.
func TestResizeStrictAbort(t *testing.T) {
	failAt := 42
	// armed is set only once the table is populated, so hashing failAt fails
	// during the explicit resize below and nowhere earlier (the growth resize
	// while inserting the first 20 keys also calls hashFn).
	armed := false
	hashFn := func(k int) (uint64, error) {
		if k == failAt && armed {
			return 0, fmt.Errorf("synthetic hash failure for %d", k)
		}
		h, _ := refhandle.DefaultHash[int]()(k)
		return h, nil
	}

	c := New[int, int](16, hashFn, refhandle.DefaultEqual[int]())
	for i := 0; i < 20; i++ {
		if err := c.Set(i, i*10); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if err := c.Set(failAt, 999); err != nil {
		t.Fatalf("Set(failAt): %v", err)
	}

	capBefore := c.Capacity()
	sizeBefore := c.Len()

	armed = true
	err := c.resize(c.Capacity()*2, 0)
	if err == nil {
		t.Fatalf("expected resize to fail")
	}
	if c.Capacity() != capBefore {
		t.Fatalf("capacity changed after aborted resize: %d -> %d", capBefore, c.Capacity())
	}
	if c.Len() != sizeBefore {
		t.Fatalf("size changed after aborted resize: %d -> %d", sizeBefore, c.Len())
	}
	// The table must still be fully usable.
	v, ok, err := c.Get(5)
	if err != nil || !ok || v != 50 {
		t.Fatalf("table unusable after aborted resize: %d %v %v", v, ok, err)
	}
}

func TestHashFailurePropagatesNoStateChange(t *testing.T) {
	boom := errors.New("boom")
	hashFn := func(k int) (uint64, error) {
		if k == 13 {
			return 0, boom
		}
		h, _ := refhandle.DefaultHash[int]()(k)
		return h, nil
	}
	c := New[int, int](16, hashFn, refhandle.DefaultEqual[int]())
	sizeBefore := c.Len()

	if err := c.Set(13, 1); !errors.Is(err, boom) {
		t.Fatalf("expected boom error, got %v", err)
	}
	if c.Len() != sizeBefore {
		t.Fatalf("size changed despite hash failure: %d -> %d", sizeBefore, c.Len())
	}
}
