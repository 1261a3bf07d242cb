// Package metrics collects run-level Prometheus metrics in a private
// registry and dumps them in text exposition format at the end of a
// run. There is no HTTP server here: network exposition is explicitly
// out of scope, so the registry exists purely to let Dump reuse the
// Prometheus client's naming, label, and text-format conventions for
// an otherwise offline simulator.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector holds the run's Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	CoresOpened      prometheus.Gauge
	CurrentLevel     prometheus.Gauge
	Escalations      prometheus.Counter
	JobsDispatched   prometheus.Counter
	JobsDiscarded    prometheus.Counter
	JobsReclaimed    prometheus.Counter
	CoreIdleSeconds  *prometheus.GaugeVec
	CoreSlackSeconds *prometheus.GaugeVec
}

// New registers and returns a fresh Collector.
func New() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		CoresOpened: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mcsim", Name: "cores_opened", Help: "Number of cores the partitioner opened.",
		}),
		CurrentLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mcsim", Name: "current_level", Help: "System criticality level at end of run.",
		}),
		Escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcsim", Name: "escalations_total", Help: "Number of criticality escalations.",
		}),
		JobsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcsim", Name: "jobs_dispatched_total", Help: "Number of jobs dispatched to a core.",
		}),
		JobsDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcsim", Name: "jobs_discarded_total", Help: "Number of jobs moved to a discarded queue.",
		}),
		JobsReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mcsim", Name: "jobs_reclaimed_total", Help: "Number of discarded jobs opportunistically re-admitted.",
		}),
		CoreIdleSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mcsim", Name: "core_idle_seconds", Help: "Accumulated idle time per core.",
		}, []string{"core"}),
		CoreSlackSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mcsim", Name: "core_slack_seconds", Help: "Most recently computed slack per core at the current level.",
		}, []string{"core"}),
	}

	registry.MustRegister(
		c.CoresOpened, c.CurrentLevel, c.Escalations,
		c.JobsDispatched, c.JobsDiscarded, c.JobsReclaimed,
		c.CoreIdleSeconds, c.CoreSlackSeconds,
	)
	return c
}

// Dump writes every collected metric, in Prometheus text exposition
// format, to w.
func (c *Collector) Dump(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
