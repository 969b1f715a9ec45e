package scenario

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Terrorbear/anchor-guardian/scenario"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-api/iac"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	"github.com/Terrorbear/anchor-guardian/wallet-api/metrics"
	walletindicators "github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/wallet"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/base"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/conf"
)

type Options struct {
	// Output is where the yaml report goes. Empty prints to stdout.
	Output string
	// Redis keeps the wallet state in the configured redis instead of memory.
	Redis bool
	// Kafka publishes every audit event to the configured topic.
	Kafka bool
	// ServeMetrics keeps the process alive after the run, serving the dispatch metrics.
	ServeMetrics bool
}

func Run(o Options) {
	conf.InitConfig()
	l := base.Logger()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	opts := []scenario.Option{scenario.WithIndicators(walletindicators.NewPromIndicators("scenario", reg))}
	if o.Redis {
		store := state.NewRedisStore(conf.C.Redis.StoreConfig())
		if err := store.Ping(ctx); err != nil {
			panic(fmt.Sprintf("redis unreachable at %s: %s", conf.C.Redis.Host, err))
		}
		defer store.Close()
		opts = append(opts, scenario.WithStore(store))
	}
	if o.Kafka {
		publisher := iac.NewPublisher(conf.C.Kafka.Brokers, conf.C.Kafka.Topic)
		defer publisher.Close()
		opts = append(opts, scenario.WithSink(iac.NewEventSink(publisher, "")))
	}

	report, runErr := scenario.Run(ctx, conf.C.Scenario, l, opts...)
	if report != nil {
		writeReport(report, o.Output)
	}
	if runErr != nil {
		panic(runErr)
	}
	l.Info("scenario completed", logger.WithField("steps", len(report.Steps)), logger.WithField("wallet", report.Contracts["smart_wallet"]))

	if o.ServeMetrics {
		for err := range metrics.NewWalletMetrics(conf.C.Server.MetricsAddress, l).Start(ctx, reg) {
			l.Error("metrics server stopped", logger.WithField("err", err))
		}
	}
}

func writeReport(report *scenario.Report, path string) {
	out, err := report.YAML()
	if err != nil {
		panic(err)
	}
	if path == "" {
		fmt.Print(string(out))
		return
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		panic(err)
	}
	fmt.Printf("Report written to %s\n", path)
}
