package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BetsPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "punthub_bets_placed_total",
		Help: "Bets accepted, labeled by category.",
	}, []string{"category"})

	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "punthub_settlements_total",
		Help: "Terminal settlements applied, labeled by outcome.",
	}, []string{"outcome"})

	DuplicateCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "punthub_duplicate_callbacks_total",
		Help: "Provider callbacks answered idempotently, labeled by provider.",
	}, []string{"provider"})

	LedgerDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "punthub_ledger_entries_dropped_total",
		Help: "Transaction records dropped because the recorder queue was full.",
	})

	SweepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "punthub_sweep_duration_seconds",
		Help:    "Duration of one settlement sweep pass.",
		Buckets: prometheus.DefBuckets,
	}, []string{"category"})
)
