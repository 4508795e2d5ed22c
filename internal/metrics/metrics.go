package metrics

import "github.com/prometheus/client_golang/prometheus"

const metricPrefix = "coprogest_"

var (
	// SettlementRuns counts completed settlement computations
	SettlementRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "settlement_runs_total",
		Help: "Completed settlement computation runs",
	})

	// SettlementRunErrors counts failed settlement computations
	SettlementRunErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "settlement_run_errors_total",
		Help: "Failed settlement computation runs",
	})

	// StatementJobs counts statement generation jobs by outcome
	StatementJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "statement_jobs_total",
		Help: "Statement generation jobs by status",
	}, []string{"status"})
)

var registered bool

// Register registers all collectors with the default registry. Safe to call
// once per process; cmd/api and cmd/statement-worker both call it at startup.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(SettlementRuns, SettlementRunErrors, StatementJobs)
	registered = true
}
