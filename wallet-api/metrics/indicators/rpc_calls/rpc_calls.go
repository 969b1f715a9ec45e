package rpccalls

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Terrorbear/anchor-guardian/wallet-api/metrics/consts"
)

type PromIndicators struct {
	rpcRequestDurationSeconds *prometheus.HistogramVec
	rpcRequestTotal           *prometheus.CounterVec
}

func NewPromIndicators(walletName string, reg prometheus.Registerer) *PromIndicators {
	return &PromIndicators{
		rpcRequestDurationSeconds: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   consts.SmartWalletPromNamespace,
				Name:        "rpc_request_duration_seconds",
				Help:        "Duration of host <method> calls in seconds",
				ConstLabels: prometheus.Labels{"wallet_name": walletName},
			},
			[]string{"method", "target"},
		),
		rpcRequestTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   consts.SmartWalletPromNamespace,
				Name:        "rpc_request_total",
				Help:        "Total number of host <method> calls",
				ConstLabels: prometheus.Labels{"wallet_name": walletName},
			},
			[]string{"method", "target"},
		),
	}
}

// ObserveRPCRequestDurationSeconds observes the duration of a host call
func (p *PromIndicators) ObserveRPCRequestDurationSeconds(duration float64, method, target string) {
	p.rpcRequestDurationSeconds.With(prometheus.Labels{
		"method": method,
		"target": target,
	}).Observe(duration)
}

// AddRPCRequestTotal counts a host call
func (p *PromIndicators) AddRPCRequestTotal(method, target string) {
	p.rpcRequestTotal.With(prometheus.Labels{
		"method": method,
		"target": target,
	}).Inc()
}
