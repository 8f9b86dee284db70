// Package metrics exposes Prometheus counters for deposits and weekly jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "faccao"

// Collector is a prometheus.Collector for the bot's deposit flow.
type Collector struct {
	depositsAccepted  prometheus.Counter
	depositsRejected  *prometheus.CounterVec
	quantityDeposited prometheus.Counter
	windowsTimedOut   prometheus.Counter
	jobRuns           *prometheus.CounterVec
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		depositsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_accepted_total",
			Help:      "The number of deposits recorded.",
		}),
		depositsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposits_rejected_total",
			Help:      "The number of deposits rejected before recording.",
		}, []string{"reason"}),
		quantityDeposited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantity_deposited_total",
			Help:      "The farm quantity deposited across all members.",
		}),
		windowsTimedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposit_windows_timed_out_total",
			Help:      "The number of deposit windows that expired without a message.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weekly_job_runs_total",
			Help:      "The number of weekly job runs by job and outcome.",
		}, []string{"job", "outcome"}),
	}
}

func (c *Collector) DepositAccepted(quantity int64) {
	c.depositsAccepted.Inc()
	c.quantityDeposited.Add(float64(quantity))
}

func (c *Collector) DepositRejected(reason string) {
	c.depositsRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) WindowTimedOut() {
	c.windowsTimedOut.Inc()
}

func (c *Collector) JobRun(job, outcome string) {
	c.jobRuns.WithLabelValues(job, outcome).Inc()
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.depositsAccepted.Describe(ch)
	c.depositsRejected.Describe(ch)
	c.quantityDeposited.Describe(ch)
	c.windowsTimedOut.Describe(ch)
	c.jobRuns.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.depositsAccepted.Collect(ch)
	c.depositsRejected.Collect(ch)
	c.quantityDeposited.Collect(ch)
	c.windowsTimedOut.Collect(ch)
	c.jobRuns.Collect(ch)
}
