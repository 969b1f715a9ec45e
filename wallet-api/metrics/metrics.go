package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	"github.com/Terrorbear/anchor-guardian/wallet-api/utils"
)

type Metrics interface {
	Start(ctx context.Context, reg prometheus.Gatherer) <-chan error
}

type WalletMetrics struct {
	ipPortAddress string
	logger        logger.Logger
}

var _ Metrics = (*WalletMetrics)(nil)

func NewWalletMetrics(ipPortAddress string, logger logger.Logger) Metrics {
	return &WalletMetrics{
		ipPortAddress: ipPortAddress,
		logger:        logger,
	}
}

// Start serves "/metrics" and "/healthz" until ctx is done. The returned channel is closed after
// shutdown.
func (s WalletMetrics) Start(ctx context.Context, reg prometheus.Gatherer) <-chan error {
	s.logger.Info("Starting metrics server", logger.WithField("ipPortAddress", s.ipPortAddress))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:          scrapeLog{s.logger},
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return utils.RunServer(ctx, &http.Server{Addr: s.ipPortAddress, Handler: mux}, "metrics", s.logger)
}

// scrapeLog reports collector failures during a scrape, e.g. an unreachable wallet in the budget
// collector.
type scrapeLog struct {
	l logger.Logger
}

func (s scrapeLog) Println(v ...interface{}) {
	s.l.Warn("metrics scrape", logger.WithField("err", v))
}
