// Package metrics instruments group assignment runs with Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"seating/grouping"
)

const namespace = "seating"

// Outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeInfeasible = "infeasible"
	OutcomeBudget     = "budget_exceeded"
	OutcomeInvalid    = "invalid_input"
)

type Collector struct {
	runs     *prometheus.CounterVec
	attempts prometheus.Histogram
	duration prometheus.Histogram
	groups   prometheus.Histogram
}

// New registers the collector's metrics with reg, or with
// prometheus.DefaultRegisterer when reg is nil.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assign",
			Name:      "runs_total",
			Help:      "Group assignment runs by outcome.",
		}, []string{"outcome"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assign",
			Name:      "attempts",
			Help:      "Shuffles tried per assignment run.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assign",
			Name:      "duration_seconds",
			Help:      "Wall time per assignment run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),
		groups: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assign",
			Name:      "groups",
			Help:      "Groups produced per successful run.",
			Buckets:   prometheus.LinearBuckets(1, 1, 12),
		}),
	}
	reg.MustRegister(c.runs, c.attempts, c.duration, c.groups)
	return c
}

// Observe records one grouping.Assign call.
func (c *Collector) Observe(res grouping.Result, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := Outcome(err)
	c.runs.WithLabelValues(outcome).Inc()
	c.duration.Observe(elapsed.Seconds())
	if outcome == OutcomeInvalid {
		return
	}
	c.attempts.Observe(float64(res.Attempts))
	if err == nil {
		c.groups.Observe(float64(len(res.Groups)))
	}
}

func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, grouping.ErrInfeasible):
		return OutcomeInfeasible
	case errors.Is(err, grouping.ErrBudgetExceeded):
		return OutcomeBudget
	}
	return OutcomeInvalid
}
