package zdict

// Mode selects which mutations a Dict permits. It is a tagged variant, not a
// dynamic-dispatch mechanism: a small table of per-mode capability flags is
// cheaper than dispatching on every call, since Get is mode-agnostic and
// sits on the hot path.
type Mode uint8

const (
	// ModeMutable permits every operation: insert, update, delete, clear,
	// pop, popitem, setdefault. Not hashable.
	ModeMutable Mode = iota
	// ModeImmutable forbids every mutation. Hashable — the hash is computed
	// lazily over the sorted (key, value) pairs and cached forever once
	// computed, because nothing can change contents afterwards.
	ModeImmutable
	// ModeReadonly forbids every mutation and is not hashable. Distinct from
	// ModeImmutable only in that it carries no hash-caching machinery; use it
	// for a read-only view that is never used as a map/set key itself.
	ModeReadonly
	// ModeInsert permits inserting new keys and setdefault on a missing key,
	// but forbids updating an existing key, deleting, clearing, or popping.
	// Not hashable. UpdatePairs pre-validates the whole batch before applying
	// anything.
	ModeInsert
	// ModeArena permits every mutation, like ModeMutable, but additionally
	// reserves a larger initial capacity up front to reduce incremental
	// resize churn for workloads that build up a large table in one shot
	// (see WithInitialCapacity).
	ModeArena
)

func (m Mode) String() string {
	switch m {
	case ModeMutable:
		return "mutable"
	case ModeImmutable:
		return "immutable"
	case ModeReadonly:
		return "readonly"
	case ModeInsert:
		return "insert"
	case ModeArena:
		return "arena"
	default:
		return "unknown"
	}
}

// capabilities is the per-mode permission table: which mutations each Mode
// allows.
type capabilities struct {
	insertNew          bool
	updateExisting     bool
	deleteClearPopItem bool
	setdefaultMissing  bool
	hashable           bool
}

var modeCapabilities = map[Mode]capabilities{
	ModeMutable: {
		insertNew: true, updateExisting: true, deleteClearPopItem: true,
		setdefaultMissing: true, hashable: false,
	},
	ModeImmutable: {
		insertNew: false, updateExisting: false, deleteClearPopItem: false,
		setdefaultMissing: false, hashable: true,
	},
	ModeReadonly: {
		insertNew: false, updateExisting: false, deleteClearPopItem: false,
		setdefaultMissing: false, hashable: false,
	},
	ModeInsert: {
		insertNew: true, updateExisting: false, deleteClearPopItem: false,
		setdefaultMissing: true, hashable: false,
	},
	ModeArena: {
		insertNew: true, updateExisting: true, deleteClearPopItem: true,
		setdefaultMissing: true, hashable: false,
	},
}

func capsFor(m Mode) capabilities {
	c, ok := modeCapabilities[m]
	if !ok {
		return capabilities{}
	}
	return c
}
