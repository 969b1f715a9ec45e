package budget

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	"github.com/Terrorbear/anchor-guardian/wallet-api/metrics/consts"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

const queryTimeout = 5 * time.Second

var hotWalletsQuery = []byte(`{"hot_wallets":{}}`)

// Collector reports the gas tank of every hot wallet registered on one smart wallet, read
// through the wallet's hot_wallets query on each scrape.
type Collector struct {
	walletAddr string
	querier    host.Host
	logger     logger.Logger

	tankBalance *prometheus.Desc
	tankMax     *prometheus.Desc
	lastUsedAt  *prometheus.Desc
	cooldown    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(walletAddr string, querier host.Host, logger logger.Logger) *Collector {
	labels := []string{"wallet", "hot_wallet", "label"}
	return &Collector{
		walletAddr: walletAddr,
		querier:    querier,
		logger:     logger,
		tankBalance: prometheus.NewDesc(
			consts.SmartWalletPromNamespace+"_gas_tank_balance",
			"Amount charged to the hot wallet's gas tank since its last policy update.",
			labels,
			prometheus.Labels{},
		),
		tankMax: prometheus.NewDesc(
			consts.SmartWalletPromNamespace+"_gas_tank_max",
			"Gas tank ceiling of the hot wallet.",
			labels,
			prometheus.Labels{},
		),
		lastUsedAt: prometheus.NewDesc(
			consts.SmartWalletPromNamespace+"_hot_wallet_last_used_height",
			"Block height of the hot wallet's last authorized call.",
			labels,
			prometheus.Labels{},
		),
		cooldown: prometheus.NewDesc(
			consts.SmartWalletPromNamespace+"_hot_wallet_cooldown_blocks",
			"Blocks a hot wallet waits between calls.",
			labels,
			prometheus.Labels{},
		),
	}
}

// Describe describes to Prometheus the metrics this collector will collect
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tankBalance
	ch <- c.tankMax
	ch <- c.lastUsedAt
	ch <- c.cooldown
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	raw, err := c.querier.Query(ctx, c.walletAddr, hotWalletsQuery)
	if err != nil {
		c.logger.Error("Failed to query hot wallets", logger.WithField("wallet", c.walletAddr), logger.WithField("err", err))
		return
	}
	resp, err := wallet.UnmarshalHotWalletsResponse(raw)
	if err != nil {
		c.logger.Error("Failed to decode hot wallets", logger.WithField("wallet", c.walletAddr), logger.WithField("err", err))
		return
	}
	for _, hw := range resp.HotWallets {
		labels := []string{c.walletAddr, hw.Address, hw.Label}
		// 128-bit amounts lose precision as float64; gauges only need the magnitude
		balance, _ := strconv.ParseFloat(hw.GasTankBalance, 64)
		ceiling, _ := strconv.ParseFloat(hw.GasTankMax, 64)
		ch <- prometheus.MustNewConstMetric(c.tankBalance, prometheus.GaugeValue, balance, labels...)
		ch <- prometheus.MustNewConstMetric(c.tankMax, prometheus.GaugeValue, ceiling, labels...)
		ch <- prometheus.MustNewConstMetric(c.cooldown, prometheus.GaugeValue, float64(hw.GasCooldown), labels...)
		if hw.LastUsedAt != nil {
			ch <- prometheus.MustNewConstMetric(c.lastUsedAt, prometheus.GaugeValue, float64(*hw.LastUsedAt), labels...)
		}
	}
}
