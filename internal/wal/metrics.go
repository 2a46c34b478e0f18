package wal

import "github.com/prometheus/client_golang/prometheus"

// Metrics tracks append/commit/vacuum activity for one Wal instance,
// grounded on opa/storage/disk/metrics.go's per-component counter set.
type Metrics struct {
	AppendedRowsTotal prometheus.Counter
	CommitsTotal      prometheus.Counter
	VacuumTotal       prometheus.Counter
}

// NewMetrics constructs a fresh, unregistered set of counters.
func NewMetrics() *Metrics {
	return &Metrics{
		AppendedRowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wal_appended_rows_total",
			Help: "Number of rows appended via WriteTransaction.",
		}),
		CommitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wal_commits_total",
			Help: "Number of Commit calls that synced the wal file.",
		}),
		VacuumTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wal_vacuum_total",
			Help: "Number of Vacuum passes that compacted the wal file.",
		}),
	}
}

// Register adds every counter to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.AppendedRowsTotal, m.CommitsTotal, m.VacuumTotal} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
