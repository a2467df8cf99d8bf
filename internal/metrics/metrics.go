package metrics

import (
	"net/http"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/normalizer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DecodesTotal counts decode requests per kind (transaction, block) and outcome
	DecodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_decodes_total",
			Help: "Total number of decode requests",
		},
		[]string{"kind", "status"},
	)

	// TransactionsTotal counts normalized transactions by execution result
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_transactions_total",
			Help: "Total number of normalized transactions",
		},
		[]string{"result"},
	)

	// UnresolvedRefsTotal counts sentinels substituted for out-of-range indices
	UnresolvedRefsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_unresolved_refs_total",
			Help: "Total number of account references replaced by a sentinel",
		},
		[]string{"role"},
	)

	// SkippedTransactionsTotal counts transactions dropped under the skip policy
	SkippedTransactionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "normalizer_skipped_transactions_total",
			Help: "Total number of block transactions skipped after a normalization error",
		},
	)

	// BlockFeesTotal accumulates lamports paid in fees across decoded blocks
	BlockFeesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "normalizer_block_fees_lamports_total",
			Help: "Total fees in lamports across decoded blocks",
		},
	)
)

func init() {
	prometheus.MustRegister(DecodesTotal)
	prometheus.MustRegister(TransactionsTotal)
	prometheus.MustRegister(UnresolvedRefsTotal)
	prometheus.MustRegister(SkippedTransactionsTotal)
	prometheus.MustRegister(BlockFeesTotal)
}

// ObserveUnresolved is a normalizer.Options.OnUnresolved hook
func ObserveUnresolved(ref normalizer.UnresolvedRef) {
	UnresolvedRefsTotal.WithLabelValues(string(ref.Role)).Inc()
}

// ObserveTransaction records the execution result of a normalized transaction
func ObserveTransaction(success bool) {
	if success {
		TransactionsTotal.WithLabelValues("success").Inc()
		return
	}
	TransactionsTotal.WithLabelValues("failed").Inc()
}

// Handler returns the Prometheus exposition handler
func Handler() http.Handler {
	return promhttp.Handler()
}
