package zdict

import "github.com/prometheus/client_golang/prometheus"

// metricsSink is the dual noop/Prometheus instrumentation seam: callers that
// don't opt in via WithMetrics pay nothing but an interface call to a no-op.
type metricsSink interface {
	incOp(op string)
	incModeViolation(mode string)
	observeResize(newCapacity int)
}

type noopMetrics struct{}

func (noopMetrics) incOp(string)             {}
func (noopMetrics) incModeViolation(string)  {}
func (noopMetrics) observeResize(int)        {}

type promMetrics struct {
	ops            *prometheus.CounterVec
	modeViolations *prometheus.CounterVec
	resizes        prometheus.Counter
	capacity       prometheus.Gauge
}

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	m := &promMetrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zdict",
			Name:      "ops_total",
			Help:      "Number of zdict operations by kind.",
		}, []string{"op"}),
		modeViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zdict",
			Name:      "mode_violations_total",
			Help:      "Number of operations rejected by the current mode's capability table.",
		}, []string{"mode"}),
		resizes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zdict",
			Name:      "resizes_total",
			Help:      "Number of table resizes performed.",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zdict",
			Name:      "capacity",
			Help:      "Current backing-array capacity of the most recently resized Dict.",
		}),
	}
	reg.MustRegister(m.ops, m.modeViolations, m.resizes, m.capacity)
	return m
}

func (m *promMetrics) incOp(op string)            { m.ops.WithLabelValues(op).Inc() }
func (m *promMetrics) incModeViolation(mode string) { m.modeViolations.WithLabelValues(mode).Inc() }
func (m *promMetrics) observeResize(newCapacity int) {
	m.resizes.Inc()
	m.capacity.Set(float64(newCapacity))
}
