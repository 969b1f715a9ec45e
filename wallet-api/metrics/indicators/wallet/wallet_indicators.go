package wallet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Terrorbear/anchor-guardian/wallet-api/metrics/consts"
)

// Indicators is what the dispatch engine and governance lifecycle report into.
type Indicators interface {
	IncDispatch(role, outcome string)
	IncGuardDenial(reason string)
	AddBudgetCharged(hotWallet string, amount float64)
	IncProposal(status string)
	ObserveDispatchSeconds(seconds float64)
}

type PromIndicators struct {
	dispatchTotal    *prometheus.CounterVec
	guardDenials     *prometheus.CounterVec
	budgetCharged    *prometheus.CounterVec
	proposalsTotal   *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
}

var _ Indicators = (*PromIndicators)(nil)

func NewPromIndicators(walletName string, reg prometheus.Registerer) *PromIndicators {
	labels := prometheus.Labels{"wallet_name": walletName}
	return &PromIndicators{
		dispatchTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   consts.SmartWalletPromNamespace,
				Name:        "dispatch_total",
				Help:        "Envelopes dispatched by caller role and outcome",
				ConstLabels: labels,
			},
			[]string{"role", "outcome"},
		),
		guardDenials: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   consts.SmartWalletPromNamespace,
				Name:        "guard_denials_total",
				Help:        "Hot-wallet requests denied by the guard, by reason",
				ConstLabels: labels,
			},
			[]string{"reason"},
		),
		budgetCharged: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   consts.SmartWalletPromNamespace,
				Name:        "budget_charged_total",
				Help:        "Gas-denom amount charged against each hot wallet's tank",
				ConstLabels: labels,
			},
			[]string{"hot_wallet"},
		),
		proposalsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   consts.SmartWalletPromNamespace,
				Name:        "proposals_total",
				Help:        "Governance proposal transitions by resulting status",
				ConstLabels: labels,
			},
			[]string{"status"},
		),
		dispatchDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace:   consts.SmartWalletPromNamespace,
				Name:        "dispatch_duration_seconds",
				Help:        "Time spent classifying, guarding and forwarding one envelope",
				ConstLabels: labels,
				Buckets:     prometheus.DefBuckets,
			},
		),
	}
}

func (p *PromIndicators) IncDispatch(role, outcome string) {
	p.dispatchTotal.WithLabelValues(role, outcome).Inc()
}

func (p *PromIndicators) IncGuardDenial(reason string) {
	p.guardDenials.WithLabelValues(reason).Inc()
}

func (p *PromIndicators) AddBudgetCharged(hotWallet string, amount float64) {
	p.budgetCharged.WithLabelValues(hotWallet).Add(amount)
}

func (p *PromIndicators) IncProposal(status string) {
	p.proposalsTotal.WithLabelValues(status).Inc()
}

func (p *PromIndicators) ObserveDispatchSeconds(seconds float64) {
	p.dispatchDuration.Observe(seconds)
}

// NopIndicators discards everything.
type NopIndicators struct{}

var _ Indicators = NopIndicators{}

func (NopIndicators) IncDispatch(string, string)       {}
func (NopIndicators) IncGuardDenial(string)            {}
func (NopIndicators) AddBudgetCharged(string, float64) {}
func (NopIndicators) IncProposal(string)               {}
func (NopIndicators) ObserveDispatchSeconds(float64)   {}
