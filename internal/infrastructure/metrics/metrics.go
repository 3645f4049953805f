package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"valutatrade-service/internal/application"
)

var _ application.MetricsRecorder = (*Recorder)(nil)

// Recorder exposes refresh and ledger counters on a private registry.
type Recorder struct {
	registry       *prometheus.Registry
	refreshCycles  *prometheus.CounterVec
	refreshedPairs prometheus.Counter
	sourceFailures *prometheus.CounterVec
	ledgerOps      *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.refreshCycles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rates_refresh_cycles_total",
		Help: "Refresh cycles by outcome.",
	}, []string{"status"})
	r.refreshedPairs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rates_refreshed_pairs_total",
		Help: "Currency pairs collected across refresh cycles.",
	})
	r.sourceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rates_source_failures_total",
		Help: "Fetch failures by source.",
	}, []string{"source"})
	r.ledgerOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operations_total",
		Help: "Ledger operations by type and outcome.",
	}, []string{"op", "outcome"})

	r.registry.MustRegister(r.refreshCycles, r.refreshedPairs, r.sourceFailures, r.ledgerOps)
	return r
}

func (r *Recorder) RefreshCycle(status string, pairs int) {
	r.refreshCycles.WithLabelValues(status).Inc()
	r.refreshedPairs.Add(float64(pairs))
}

func (r *Recorder) SourceFailure(source string) {
	r.sourceFailures.WithLabelValues(source).Inc()
}

func (r *Recorder) LedgerOp(op, outcome string) {
	r.ledgerOps.WithLabelValues(op, outcome).Inc()
}

// Handler serves the registry for the /metrics route.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
