package buffer

import "github.com/prometheus/client_golang/prometheus"

// Metrics mirrors minidb's plain hits/misses BufferPool fields, but as
// prometheus counters so a running instance can be scraped, grounded on
// opa/storage/disk/metrics.go's per-component counter-vec pattern.
type Metrics struct {
	HitsTotal         prometheus.Counter
	MissesTotal       prometheus.Counter
	VacuumTotal       prometheus.Counter
	EvictedPagesTotal prometheus.Counter
}

// NewMetrics constructs a fresh, unregistered set of counters. Each
// BufferPool owns its own Metrics rather than sharing package-level
// collectors, so multiple pools in one process don't collide on
// registration.
func NewMetrics() *Metrics {
	return &Metrics{
		HitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buffer_pool_hits_total",
			Help: "Number of GetPage/GetPageCatalog calls resolved against a resident page.",
		}),
		MissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buffer_pool_misses_total",
			Help: "Number of GetPage/GetPageCatalog calls for a handle with no resident page.",
		}),
		VacuumTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buffer_pool_vacuum_total",
			Help: "Number of Vacuum passes that evicted at least one page.",
		}),
		EvictedPagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buffer_pool_evicted_pages_total",
			Help: "Total number of pages dropped by Vacuum.",
		}),
	}
}

// Register adds every counter to reg, so the pool's counters are
// reachable from a /metrics scrape.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.HitsTotal, m.MissesTotal, m.VacuumTotal, m.EvictedPagesTotal} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
