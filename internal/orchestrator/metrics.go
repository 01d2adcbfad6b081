package orchestrator

import "github.com/prometheus/client_golang/prometheus"

var (
	loadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orchd",
		Subsystem: "orchestrator",
		Name:      "loads_total",
		Help:      "Total successful model loads",
	})

	loadFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orchd",
		Subsystem: "orchestrator",
		Name:      "load_failures_total",
		Help:      "Total failed model loads",
	})

	evictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orchd",
		Subsystem: "orchestrator",
		Name:      "evictions_total",
		Help:      "Total evictions performed to free VRAM",
	})

	unloadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orchd",
		Subsystem: "orchestrator",
		Name:      "unloads_total",
		Help:      "Total explicit model unloads",
	})

	usedVRAMGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "orchd",
		Subsystem: "orchestrator",
		Name:      "used_vram_gb",
		Help:      "Bookkeeping VRAM usage in GB (static estimates, not measured)",
	})

	activeRequestsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "orchd",
		Subsystem: "orchestrator",
		Name:      "active_requests",
		Help:      "In-flight generation requests per model",
	}, []string{"model"})
)

func init() {
	prometheus.MustRegister(loadsTotal, loadFailuresTotal, evictionsTotal, unloadsTotal, usedVRAMGauge, activeRequestsGauge)
}

// updateVRAMGaugeLocked refreshes the used-VRAM gauge. Caller holds o.mu.
func (o *Orchestrator) updateVRAMGaugeLocked() {
	usedVRAMGauge.Set(o.usedVRAMLocked())
}
