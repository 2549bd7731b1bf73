package zdict

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsMatchesReferenceUnordered(t *testing.T) {
	d, err := FromMap(map[string]int{"a": 1, "b": 2, "c": 3})
	require.NoError(t, err)

	want := []Pair[string, int]{{Key: "a", Val: 1}, {Key: "b", Val: 2}, {Key: "c", Val: 3}}
	got := d.Items()

	less := func(a, b Pair[string, int]) bool { return a.Key < b.Key }
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(less)); diff != "" {
		t.Fatalf("Items() mismatch (-want +got):\n%s", diff)
	}
}

func TestDebugSnapshotFieldsWithTestify(t *testing.T) {
	d := New[string, int](WithMode[string, int](ModeArena))
	require.NoError(t, d.Set("a", 1))
	require.NoError(t, d.Set("b", 2))

	snap := d.DebugSnapshot()
	assert.Equal(t, 2, snap.Len)
	assert.Equal(t, "arena", snap.Mode)
	assert.GreaterOrEqual(t, snap.Capacity, 2)
	assert.LessOrEqual(t, snap.LoadFactor, 1.0)
}

func TestCopyDeepEqualViaCmp(t *testing.T) {
	d, err := FromMap(map[string]int{"x": 10, "y": 20})
	require.NoError(t, err)
	cp, err := d.Copy()
	require.NoError(t, err)

	less := func(a, b Pair[string, int]) bool { return a.Key < b.Key }
	if diff := cmp.Diff(d.Items(), cp.Items(), cmpopts.SortSlices(less)); diff != "" {
		t.Fatalf("copy diverges from original (-orig +copy):\n%s", diff)
	}
}
