package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
)

func TestScenario(t *testing.T) {
	extra := events.NewRecorder()
	report, err := Run(context.Background(), DefaultConfig(), logger.NewMockLogger(), WithSink(extra))
	require.NoError(t, err)

	for _, s := range report.Steps {
		assert.Equal(t, s.Expect, s.Outcome, s.Name)
	}

	step, ok := report.Step("farmer overspends the gas tank")
	require.True(t, ok)
	assert.Equal(t, "budget_exceeded", step.Outcome)
	step, ok = report.Step("farmer claims again inside cooldown")
	require.True(t, ok)
	assert.Equal(t, "cooldown_active", step.Outcome)

	require.Len(t, report.Calls["bluna_custody"], 1)
	deposit := report.Calls["bluna_custody"][0]
	assert.Equal(t, "deposit_collateral", deposit.Kind)
	assert.Equal(t, "bluna", deposit.Token)
	assert.Equal(t, "smart_wallet", deposit.Sender)
	assert.Equal(t, "1000000", deposit.Amount)

	require.Len(t, report.Calls["overseer"], 1)
	assert.Equal(t, "lock_collateral", report.Calls["overseer"][0].Kind)

	require.Len(t, report.Calls["market"], 2)
	assert.Equal(t, "borrow_stable", report.Calls["market"][0].Kind)
	assert.Equal(t, "smart_wallet", report.Calls["market"][0].Sender)

	require.Len(t, report.Calls["reward"], 1)
	assert.Equal(t, "claim_rewards", report.Calls["reward"][0].Kind)

	assert.Equal(t, "499000000", report.Balances["smart_wallet/bluna"])
	assert.Equal(t, "1000000", report.Balances["bluna_custody/bluna"])
	assert.Equal(t, "1000000000", report.Balances["smart_wallet/uusd"])

	require.Len(t, report.HotWallets, 2)
	labels := []string{report.HotWallets[0].Label, report.HotWallets[1].Label}
	assert.ElementsMatch(t, []string{"farmer", "liquidator"}, labels)
	for _, hw := range report.HotWallets {
		assert.NotNil(t, hw.LastUsedAt, hw.Label)
		assert.Equal(t, "0", hw.GasTankBalance, hw.Label)
	}

	assert.NotEmpty(t, report.Audit)
	assert.Len(t, extra.Events(), len(report.Audit))
	assert.NotEmpty(t, extra.Filter(events.TypeGuard, ""))
}

func TestScenarioReportYAML(t *testing.T) {
	report, err := Run(context.Background(), DefaultConfig(), logger.NewMockLogger())
	require.NoError(t, err)

	out, err := report.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "outcome: cooldown_active")

	var decoded Report
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, len(report.Steps), len(decoded.Steps))
	assert.Equal(t, report.Contracts, decoded.Contracts)
}

func TestScenarioStopsOnUnexpectedOutcome(t *testing.T) {
	cfg := DefaultConfig()
	// a tank large enough that the overspend is allowed
	cfg.GasTankMax = "1000000000"
	report, err := Run(context.Background(), cfg, logger.NewMockLogger())
	require.Error(t, err)
	require.NotNil(t, report)
	last := report.Steps[len(report.Steps)-1]
	assert.Equal(t, "farmer overspends the gas tank", last.Name)
	assert.Equal(t, "ok", last.Outcome)
	assert.Empty(t, report.HotWallets)
}

func TestScenarioRejectsUnknownChargePolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChargePolicy = "never"
	_, err := Run(context.Background(), cfg, logger.NewMockLogger())
	assert.Error(t, err)
}
