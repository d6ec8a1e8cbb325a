package refobj

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a prometheus.Collector reporting on objects and spawns. A nil
// *Metrics records nothing.
type Metrics struct {
	allocs        prometheus.Counter
	allocFailures prometheus.Counter
	frees         prometheus.Counter
	leaks         prometheus.Counter
	spawns        prometheus.Counter
	spawnFailures prometheus.Counter
	live          prometheus.Gauge
	liveBytes     prometheus.Gauge
}

// NewMetrics constructs the metrics under the given namespace. It must be
// registered by the caller to be exported.
func NewMetrics(namespace string) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refobj",
			Name:      name,
			Help:      help,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refobj",
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		allocs:        counter("allocs_total", "Objects allocated"),
		allocFailures: counter("alloc_failures_total", "Allocations that failed"),
		frees:         counter("frees_total", "Objects freed by their last release"),
		leaks:         counter("leaked_total", "Objects garbage collected with outstanding references"),
		spawns:        counter("spawns_total", "Goroutines started with a handed off reference"),
		spawnFailures: counter("spawn_failures_total", "Spawns that failed and released their reference"),
		live:          gauge("live_objects", "Objects allocated and not yet freed"),
		liveBytes:     gauge("live_bytes", "Payload bytes allocated and not yet freed"),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.allocs, m.allocFailures, m.frees, m.leaks,
		m.spawns, m.spawnFailures,
		m.live, m.liveBytes,
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

func (m *Metrics) allocated(size int64) {
	if m == nil {
		return
	}
	m.allocs.Inc()
	m.live.Inc()
	m.liveBytes.Add(float64(size))
}

func (m *Metrics) allocFailed() {
	if m != nil {
		m.allocFailures.Inc()
	}
}

func (m *Metrics) freed(size int64) {
	if m == nil {
		return
	}
	m.frees.Inc()
	m.live.Dec()
	m.liveBytes.Sub(float64(size))
}

func (m *Metrics) leaked(size int64) {
	if m == nil {
		return
	}
	m.leaks.Inc()
	m.live.Dec()
	m.liveBytes.Sub(float64(size))
}

func (m *Metrics) spawned() {
	if m != nil {
		m.spawns.Inc()
	}
}

func (m *Metrics) spawnFailed() {
	if m != nil {
		m.spawnFailures.Inc()
	}
}
