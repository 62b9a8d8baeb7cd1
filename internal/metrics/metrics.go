package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsObserved counts auction events observed on the source chain
	EventsObserved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settler_events_observed_total",
			Help: "Total number of source-chain auction events observed",
		},
		[]string{"event_type", "outcome"},
	)

	// MintsTotal counts mint transactions by terminal outcome
	MintsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settler_mints_total",
			Help: "Total number of mint transactions by outcome",
		},
		[]string{"outcome"},
	)

	// MintDuration tracks time from claim to confirmation
	MintDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settler_mint_duration_seconds",
			Help:    "Mint transaction processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PendingMints tracks the number of mint transactions awaiting execution
	PendingMints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "settler_pending_mints",
			Help: "Number of mint transactions in pending state",
		},
	)

	// AuctionsExpired counts auctions closed by the expiry sweep
	AuctionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settler_auctions_expired_total",
			Help: "Total number of auctions closed by the expiry sweep",
		},
	)

	// BidsSigned counts price attestations produced by the signing service
	BidsSigned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settler_bids_signed_total",
			Help: "Total number of bid attestations signed",
		},
		[]string{"token"},
	)

	// GasUsed tracks gas used for destination-chain mint transactions
	GasUsed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settler_mint_gas_used",
			Help:    "Gas used for destination-chain mint transactions",
			Buckets: []float64{21000, 50000, 100000, 200000, 300000, 500000},
		},
	)

	// LastProcessedBlock tracks the last source-chain block scanned for events
	LastProcessedBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "settler_last_processed_block",
			Help: "Last source-chain block number scanned for auction events",
		},
	)

	// ErrorsTotal counts errors by component
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settler_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
