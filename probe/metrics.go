package probe

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
	"github.com/sony/gobreaker"
)

// metricPrefix is shared by every metric this package records.
const metricPrefix = "urlkit_probe_"

var (
	hopDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "urlkit_probe_hop_duration_seconds",
			Help:    "Duration of probe requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"host", "status_code"},
	)

	hopErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "urlkit_probe_errors_total",
			Help: "Total number of probe requests that failed",
		},
		[]string{"host"},
	)

	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "urlkit_probe_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"host"},
	)
)

// recordHop records metrics for a single hop.
func recordHop(host string, hop Hop) {
	if hop.Error != "" {
		hopErrors.With(prometheus.Labels{"host": host}).Inc()
		return
	}
	hopDuration.With(prometheus.Labels{
		"host":        host,
		"status_code": strconv.Itoa(hop.StatusCode),
	}).Observe(hop.ResponseTime.Seconds())
}

func recordCircuitBreakerState(host string, state gobreaker.State) {
	var value float64
	switch state {
	case gobreaker.StateClosed:
		value = 0
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	circuitBreakerState.With(prometheus.Labels{"host": host}).Set(value)
}

// WriteMetrics writes the probe metrics gathered from g in the Prometheus
// text exposition format. A nil g means prometheus.DefaultGatherer.
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), metricPrefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
