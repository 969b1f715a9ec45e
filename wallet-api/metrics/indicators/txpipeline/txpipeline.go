// Package txpipeline measures signed transactions from first broadcast to block inclusion.
package txpipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Terrorbear/anchor-guardian/wallet-api/metrics/consts"
)

const (
	StageBroadcast = "broadcast"
	StageConfirm   = "confirm"
)

type PromIndicators struct {
	inFlight     prometheus.Gauge
	outcomes     *prometheus.CounterVec
	stageSeconds *prometheus.HistogramVec
	gasUsed      prometheus.Histogram
	gasBumps     prometheus.Histogram
}

// NewPromIndicators labels every series with client, e.g. "cli" or "serve".
func NewPromIndicators(reg prometheus.Registerer, client string) *PromIndicators {
	labels := prometheus.Labels{"client": client}
	factory := promauto.With(reg)
	return &PromIndicators{
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   consts.SmartWalletPromNamespace,
			Subsystem:   consts.TxSubsystem,
			Name:        "in_flight",
			Help:        "transactions between first broadcast and inclusion",
			ConstLabels: labels,
		}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   consts.SmartWalletPromNamespace,
			Subsystem:   consts.TxSubsystem,
			Name:        "total",
			Help:        "finished transactions by the stage they stopped at and their outcome",
			ConstLabels: labels,
		}, []string{"stage", "outcome"}),
		stageSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   consts.SmartWalletPromNamespace,
			Subsystem:   consts.TxSubsystem,
			Name:        "stage_seconds",
			Help:        "time spent broadcasting, including retries, and waiting for inclusion",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"stage"}),
		gasUsed: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   consts.SmartWalletPromNamespace,
			Subsystem:   consts.TxSubsystem,
			Name:        "gas_used",
			Help:        "gas used by included transactions",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(50000, 2, 8),
		}),
		gasBumps: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   consts.SmartWalletPromNamespace,
			Subsystem:   consts.TxSubsystem,
			Name:        "gas_price_bumps",
			Help:        "gas price increases needed before a broadcast was accepted",
			ConstLabels: labels,
			Buckets:     prometheus.LinearBuckets(0, 1, 6),
		}),
	}
}

// Track marks a transaction in flight until the returned func is called.
func (p *PromIndicators) Track() func() {
	p.inFlight.Inc()
	return p.inFlight.Dec
}

func (p *PromIndicators) Broadcast(elapsed time.Duration, bumps int) {
	p.stageSeconds.WithLabelValues(StageBroadcast).Observe(elapsed.Seconds())
	p.gasBumps.Observe(float64(bumps))
}

func (p *PromIndicators) Confirmed(elapsed time.Duration, gasUsed int64) {
	p.stageSeconds.WithLabelValues(StageConfirm).Observe(elapsed.Seconds())
	p.gasUsed.Observe(float64(gasUsed))
	p.outcomes.WithLabelValues(StageConfirm, "success").Inc()
}

func (p *PromIndicators) Failed(stage string) {
	p.outcomes.WithLabelValues(stage, "failed").Inc()
}
