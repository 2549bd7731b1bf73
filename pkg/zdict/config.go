package zdict

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/zdict-go/zdict/internal/refhandle"
)

const (
	defaultInitialCapacity = 16
	// arenaDefaultCapacity is the bulk pre-reservation arena mode applies
	// when the caller doesn't specify WithInitialCapacity explicitly,
	// trading a larger up-front allocation for fewer resize events during
	// bulk construction.
	arenaDefaultCapacity = 256
)

type config[K comparable, V any] struct {
	mode            Mode
	initialCapacity int
	capacitySet     bool
	hashFn          refhandle.HashFunc[K]
	eqFn            refhandle.EqualFunc[K]
	valueEqFn       func(a, b V) bool
	logger          *zap.Logger
	registry        *prometheus.Registry
}

func defaultConfig[K comparable, V any]() *config[K, V] {
	return &config[K, V]{
		mode:   ModeMutable,
		logger: zap.NewNop(),
	}
}

// Option configures a Dict at construction time, using the usual Go
// functional-options pattern.
type Option[K comparable, V any] func(*config[K, V])

// WithMode selects the Dict's capability mode. Defaults to ModeMutable.
func WithMode[K comparable, V any](m Mode) Option[K, V] {
	return func(c *config[K, V]) { c.mode = m }
}

// WithInitialCapacity sets the initial slot capacity to n, rounded up to a
// power of two and to at least 16, overriding the mode-dependent default.
// The table still grows once an insert would take it past 0.7 of that
// capacity, so it holds fewer than n entries before the first resize.
func WithInitialCapacity[K comparable, V any](n int) Option[K, V] {
	return func(c *config[K, V]) {
		c.initialCapacity = n
		c.capacitySet = true
	}
}

// WithHashFunc overrides the key hashing strategy. Defaults to
// refhandle.DefaultHash, which never fails.
func WithHashFunc[K comparable, V any](fn refhandle.HashFunc[K]) Option[K, V] {
	return func(c *config[K, V]) { c.hashFn = fn }
}

// WithEqualFunc overrides key equality. Defaults to refhandle.DefaultEqual
// (Go's == operator).
func WithEqualFunc[K comparable, V any](fn refhandle.EqualFunc[K]) Option[K, V] {
	return func(c *config[K, V]) { c.eqFn = fn }
}

// WithValueEqualFunc overrides value equality used by Equal/EqualMap.
// Defaults to reflect.DeepEqual, since V is not required to be comparable.
func WithValueEqualFunc[K comparable, V any](fn func(a, b V) bool) Option[K, V] {
	return func(c *config[K, V]) { c.valueEqFn = fn }
}

// WithLogger attaches a zap logger used for resize diagnostics (logged at
// Debug). Mode violations are counted in metrics but not logged. Defaults to
// a no-op logger.
func WithLogger[K comparable, V any](l *zap.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics registers Dict instrumentation against the given Prometheus
// registry. Without this option, metrics are collected into a discarded
// no-op sink.
func WithMetrics[K comparable, V any](reg *prometheus.Registry) Option[K, V] {
	return func(c *config[K, V]) { c.registry = reg }
}

func applyOptions[K comparable, V any](cfg *config[K, V], opts []Option[K, V]) {
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.capacitySet {
		if cfg.mode == ModeArena {
			cfg.initialCapacity = arenaDefaultCapacity
		} else {
			cfg.initialCapacity = defaultInitialCapacity
		}
	}
	if cfg.hashFn == nil {
		cfg.hashFn = refhandle.DefaultHash[K]()
	}
	if cfg.eqFn == nil {
		cfg.eqFn = refhandle.DefaultEqual[K]()
	}
}
