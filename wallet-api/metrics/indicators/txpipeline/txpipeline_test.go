package txpipeline

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type TxPipelineTestSuite struct {
	suite.Suite
	reg        *prometheus.Registry
	indicators *PromIndicators
}

func (suite *TxPipelineTestSuite) SetupTest() {
	suite.reg = prometheus.NewRegistry()
	suite.indicators = NewPromIndicators(suite.reg, "test")
}

func (suite *TxPipelineTestSuite) Test_Track() {
	doneA := suite.indicators.Track()
	doneB := suite.indicators.Track()
	suite.Equal(2.0, testutil.ToFloat64(suite.indicators.inFlight))
	doneA()
	suite.Equal(1.0, testutil.ToFloat64(suite.indicators.inFlight))
	doneB()
	suite.Equal(0.0, testutil.ToFloat64(suite.indicators.inFlight))
}

func (suite *TxPipelineTestSuite) Test_Outcomes() {
	suite.indicators.Failed(StageBroadcast)
	suite.indicators.Confirmed(2*time.Second, 180000)
	suite.indicators.Confirmed(time.Second, 90000)

	suite.Equal(1.0, testutil.ToFloat64(suite.indicators.outcomes.WithLabelValues(StageBroadcast, "failed")))
	suite.Equal(2.0, testutil.ToFloat64(suite.indicators.outcomes.WithLabelValues(StageConfirm, "success")))
	suite.Equal(1, testutil.CollectAndCount(suite.indicators.gasUsed))
}

func (suite *TxPipelineTestSuite) Test_Broadcast() {
	suite.indicators.Broadcast(300*time.Millisecond, 2)
	suite.Equal(1, testutil.CollectAndCount(suite.indicators.stageSeconds))
	suite.Equal(1, testutil.CollectAndCount(suite.indicators.gasBumps))
	suite.Equal(1, testutil.CollectAndCount(suite.reg, "smartwallet_tx_gas_price_bumps"))
}

func TestTxPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(TxPipelineTestSuite))
}
