package wallet

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type WalletIndicatorsTestSuite struct {
	suite.Suite
	reg        *prometheus.Registry
	indicators *PromIndicators
}

func (suite *WalletIndicatorsTestSuite) SetupTest() {
	suite.reg = prometheus.NewRegistry()
	suite.indicators = NewPromIndicators("localwallet", suite.reg)
}

func (suite *WalletIndicatorsTestSuite) Test_IncDispatch() {
	suite.indicators.IncDispatch("hot_wallet", "forwarded")
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.indicators.dispatchTotal.WithLabelValues("hot_wallet", "forwarded")))
}

func (suite *WalletIndicatorsTestSuite) Test_IncGuardDenial() {
	suite.indicators.IncGuardDenial("cooldown_active")
	suite.indicators.IncGuardDenial("cooldown_active")
	assert.Equal(suite.T(), 2.0, testutil.ToFloat64(suite.indicators.guardDenials.WithLabelValues("cooldown_active")))
}

func (suite *WalletIndicatorsTestSuite) Test_AddBudgetCharged() {
	suite.indicators.AddBudgetCharged("terra1hot", 1500)
	assert.Equal(suite.T(), 1500.0, testutil.ToFloat64(suite.indicators.budgetCharged.WithLabelValues("terra1hot")))
}

func (suite *WalletIndicatorsTestSuite) Test_IncProposal() {
	suite.indicators.IncProposal("executed")
	assert.Equal(suite.T(), 1.0, testutil.ToFloat64(suite.indicators.proposalsTotal.WithLabelValues("executed")))
}

func TestWalletIndicatorsTestSuite(t *testing.T) {
	suite.Run(t, new(WalletIndicatorsTestSuite))
}
