package refhandle

import "testing"

type countedHandle struct {
	id       int
	retained *int
	released *int
}

func (h countedHandle) Retain()  { *h.retained++ }
func (h countedHandle) Release() { *h.released++ }

func TestRetainReleaseOptIn(t *testing.T) {
	var retained, released int
	h := countedHandle{id: 1, retained: &retained, released: &released}

	Retain(h)
	Retain(h)
	Release(h)

	if retained != 2 {
		t.Errorf("retained = %d, want 2", retained)
	}
	if released != 1 {
		t.Errorf("released = %d, want 1", released)
	}
}

func TestRetainReleasePlainValueNoOp(t *testing.T) {
	// Must not panic for values that don't implement Retainer/Releaser.
	Retain(42)
	Retain("a string key")
	Release(42)
	Release("a string key")
}

func TestDefaultHashStableAndDistinguishes(t *testing.T) {
	hashStr := DefaultHash[string]()
	h1, err := hashStr("alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := hashStr("alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash not stable across calls: %d != %d", h1, h2)
	}

	h3, err := hashStr("beta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 == h3 {
		t.Errorf("distinct keys hashed identically (allowed but astronomically unlikely here): %d", h1)
	}
}

func TestDefaultHashIntKeys(t *testing.T) {
	hashInt := DefaultHash[int]()
	a, _ := hashInt(1000)
	b, _ := hashInt(1000)
	c, _ := hashInt(1001)
	if a != b {
		t.Errorf("hash not stable: %d != %d", a, b)
	}
	if a == c {
		t.Errorf("distinct ints hashed identically: %d", a)
	}
}

func TestDefaultEqual(t *testing.T) {
	eq := DefaultEqual[string]()
	ok, err := eq("x", "x")
	if err != nil || !ok {
		t.Fatalf("expected equal, got ok=%v err=%v", ok, err)
	}
	ok, err = eq("x", "y")
	if err != nil || ok {
		t.Fatalf("expected not equal, got ok=%v err=%v", ok, err)
	}
}
