package metrics_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	"github.com/Terrorbear/anchor-guardian/wallet-api/metrics"
	walletindicators "github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/wallet"
)

type WalletMetricsTestSuite struct {
	suite.Suite
	reg         *prometheus.Registry
	logger      logger.Logger
	testAddress string
}

func (suite *WalletMetricsTestSuite) SetupTest() {
	suite.reg = prometheus.NewRegistry()
	suite.logger = logger.NewMockLogger()
	suite.testAddress = "localhost:18090"
}

func (suite *WalletMetricsTestSuite) Test_Start() {
	indicators := walletindicators.NewPromIndicators("localwallet", suite.reg)
	indicators.IncDispatch("owner", "forwarded")

	metricsServer := metrics.NewWalletMetrics(suite.testAddress, suite.logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errChan := metricsServer.Start(ctx, suite.reg)

	// wait for the listener
	time.Sleep(500 * time.Millisecond)

	resp, err := http.Get("http://" + suite.testAddress + "/metrics")
	if !assert.NoError(suite.T(), err, "failed to make request to /metrics") {
		return
	}
	defer resp.Body.Close()
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), string(body), "smartwallet_dispatch_total")

	health, err := http.Get("http://" + suite.testAddress + "/healthz")
	if assert.NoError(suite.T(), err) {
		assert.Equal(suite.T(), http.StatusOK, health.StatusCode)
		health.Body.Close()
	}

	cancel()
	select {
	case err, ok := <-errChan:
		suite.False(ok, "server failed with error: %v", err)
	case <-time.After(2 * time.Second):
		suite.T().Fatal("server shutdown timed out")
	}
}

func TestWalletMetricsTestSuite(t *testing.T) {
	suite.Run(t, new(WalletMetricsTestSuite))
}
