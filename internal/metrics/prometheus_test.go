package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"seating/grouping"
)

func TestOutcome(t *testing.T) {
	require.Equal(t, OutcomeOK, Outcome(nil))
	require.Equal(t, OutcomeInfeasible, Outcome(fmt.Errorf("%w in 5 attempts", grouping.ErrInfeasible)))
	require.Equal(t, OutcomeBudget, Outcome(grouping.ErrBudgetExceeded))
	require.Equal(t, OutcomeInvalid, Outcome(grouping.ErrEmptyRoster))
	require.Equal(t, OutcomeInvalid, Outcome(errors.New("boom")))
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.Observe(grouping.Result{Attempts: 3, Groups: make([]grouping.Group, 2)}, nil, time.Millisecond)
	c.Observe(grouping.Result{Attempts: 50}, grouping.ErrInfeasible, time.Second)
	c.Observe(grouping.Result{}, grouping.ErrEmptyRoster, 0)

	require.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues(OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues(OutcomeInfeasible)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.runs.WithLabelValues(OutcomeInvalid)))
	require.Equal(t, 3, testutil.CollectAndCount(c.runs))
}

func TestObserveNilCollector(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() { c.Observe(grouping.Result{}, nil, 0) })
}
