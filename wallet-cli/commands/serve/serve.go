package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	"github.com/Terrorbear/anchor-guardian/wallet-api/metrics"
	"github.com/Terrorbear/anchor-guardian/wallet-api/metrics/collectors/budget"
	"github.com/Terrorbear/anchor-guardian/wallet-api/nodeapi"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/base"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/conf"
)

// Serve runs the node api and the metrics endpoint for the configured wallet until interrupted.
func Serve() {
	conf.InitConfig()
	l := base.Logger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	chainIO := base.ChainIO(l, reg)
	h := base.Host(chainIO, reg)
	walletAddr := base.Wallet()
	reg.MustRegister(budget.NewCollector(walletAddr, h, l))

	height := func() int64 {
		status, err := chainIO.QueryNodeStatus(ctx)
		if err != nil {
			l.Warn("node status unavailable", logger.WithField("err", err))
			return 0
		}
		return status.SyncInfo.LatestBlockHeight
	}
	api := nodeapi.NewServer(walletAddr, h, l, nodeapi.WithHeight(height))

	apiErrs := api.Start(ctx, conf.C.Server.APIAddress)
	metricErrs := metrics.NewWalletMetrics(conf.C.Server.MetricsAddress, l).Start(ctx, reg)
	for apiErrs != nil || metricErrs != nil {
		select {
		case err, ok := <-apiErrs:
			if !ok {
				apiErrs = nil
				continue
			}
			l.Error("node api failed", logger.WithField("err", err))
			stop()
		case err, ok := <-metricErrs:
			if !ok {
				metricErrs = nil
				continue
			}
			l.Error("metrics server failed", logger.WithField("err", err))
			stop()
		}
	}
}
