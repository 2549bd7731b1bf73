package zdict

import "fmt"

// KeyMissingError is returned by Get, Pop, Delete, and PopItem when the key
// is not present.
type KeyMissingError struct {
	Key any
}

func (e *KeyMissingError) Error() string {
	return fmt.Sprintf("zdict: key missing: %v", e.Key)
}

// TypeMismatchError is returned when an operation is attempted that the
// current Mode does not permit (e.g. inserting into a readonly Dict).
type TypeMismatchError struct {
	Msg string
}

func (e *TypeMismatchError) Error() string { return "zdict: " + e.Msg }

func modeViolation(m Mode, op string) *TypeMismatchError {
	return &TypeMismatchError{Msg: fmt.Sprintf("cannot %s in '%s' mode", op, m)}
}

// ValueMismatchError is returned when a constructor argument doesn't have
// the shape the constructor requires — for example a FromPairsAny entry
// that isn't a 2-element pair.
type ValueMismatchError struct {
	Msg string
}

func (e *ValueMismatchError) Error() string { return "zdict: " + e.Msg }

// HashFailureError and EqualityFailureError are documentation-only wrapper
// types a caller's HashFunc/EqualFunc MAY return to positively identify
// which side of the contract failed; zdict itself never wraps these errors,
// it propagates whatever the host function returned unchanged. DefaultHash
// and DefaultEqual never fail, so they never produce one.
type HashFailureError struct {
	Err error
}

func (e *HashFailureError) Error() string { return "zdict: hash failure: " + e.Err.Error() }
func (e *HashFailureError) Unwrap() error { return e.Err }

type EqualityFailureError struct {
	Err error
}

func (e *EqualityFailureError) Error() string { return "zdict: equality failure: " + e.Err.Error() }
func (e *EqualityFailureError) Unwrap() error { return e.Err }

// AllocationFailureError wraps hashcore.AllocationFailure at the facade
// boundary so callers of pkg/zdict never need to import internal/hashcore to
// use errors.As against it.
type AllocationFailureError struct {
	Inner error
}

func (e *AllocationFailureError) Error() string { return "zdict: " + e.Inner.Error() }
func (e *AllocationFailureError) Unwrap() error { return e.Inner }
