package command

import "github.com/prometheus/client_golang/prometheus"

var (
	movementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_ledger_movements_total",
			Help: "Total number of movement operations by type and outcome",
		},
		[]string{"operation", "type", "outcome"},
	)

	txAttempts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stock_ledger_tx_attempts",
			Help:    "Number of attempts a coordinator transaction needed",
			Buckets: []float64{1, 2, 3, 4, 5, 8},
		},
		[]string{"operation"},
	)

	txConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_ledger_tx_conflicts_total",
			Help: "Total number of optimistic-concurrency conflicts",
		},
		[]string{"operation"},
	)

	commitFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_ledger_commit_failures_total",
			Help: "Total number of transactions that exhausted their retry budget",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(movementsTotal)
	prometheus.MustRegister(txAttempts)
	prometheus.MustRegister(txConflictsTotal)
	prometheus.MustRegister(commitFailuresTotal)
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if kind := domainKind(err); kind != "" {
		return kind
	}
	return "error"
}
