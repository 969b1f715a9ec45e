package dispatch

import (
	"context"
	"errors"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/smartwallet/guard"
	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/smartwallet/policy"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	walletindicators "github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/wallet"
)

const (
	owner    = "terra1x46rqay4d3cssq8gxxvqz8xt6nwlz4td20k38v"
	multisig = "terra1cw3multisig00000000000000000000000000"
	farmer   = "terra1fmcjjt6yc9wqup2r06urnrd928jhrde6gcld6n"
	stranger = "terra17lmam6zguazs5q5u6z5mmx76uj63gldnse2pdp"
	market   = "terra15dwd5mj8v59wpj0wvt233mf5efdff808c5tkal"
	overseer = "terra1qljxd0y3j3gk97025qvl3lgq8ygup4gsksvaxv"
)

var borrow = []byte(`{"borrow_stable":{"borrow_amount":"75000000"}}`)

type DispatchTestSuite struct {
	suite.Suite
	ctx      context.Context
	host     *host.MockHost
	policies *policy.Store
	guard    *guard.Guard
	engine   *Engine
	recorder *events.Recorder
	reg      *prometheus.Registry
}

func (suite *DispatchTestSuite) SetupTest() {
	suite.setup(guard.ChargeOnAuthorize)
}

func (suite *DispatchTestSuite) setup(charge guard.ChargePolicy) {
	suite.ctx = context.Background()
	suite.host = host.NewMockHost()
	suite.recorder = events.NewRecorder()
	suite.reg = prometheus.NewRegistry()
	kv := state.NewMemStore()
	l := logger.NewMockLogger()

	suite.policies = policy.NewStore(kv, suite.recorder, l)
	suite.Require().NoError(suite.policies.Init(suite.ctx, policy.WalletConfig{
		Owner:                owner,
		GoverningMultisig:    multisig,
		WhitelistedContracts: []policy.WhitelistedContract{{Address: market, Label: "anchor_market", CodeID: 226}},
		HotWallets: []policy.HotWallet{{
			Address:             farmer,
			Label:               "farmer",
			GasCooldown:         1000,
			GasTankMax:          math.NewUint(100000000),
			WhitelistedMessages: []policy.MessageKind{0, 1, 2},
		}},
	}))
	suite.guard = guard.New(suite.policies, kv, suite.recorder, l, charge)
	suite.engine = NewEngine(suite.policies, suite.guard, suite.host, l,
		WithSink(suite.recorder),
		WithIndicators(walletindicators.NewPromIndicators("localwallet", suite.reg)))
}

func (suite *DispatchTestSuite) Test_OwnerDirectForward() {
	env := envelope.Envelope{Target: overseer, Payload: []byte(`{"lock_collateral":{"collaterals":[]}}`)}
	res, err := suite.engine.Dispatch(suite.ctx, owner, env, 10)
	suite.Require().NoError(err)
	suite.Equal(StateDirectForward, res.State)
	suite.Equal(RoleOwner, res.Role)
	suite.Equal(policy.KindLockCollateral, res.Kind)
	suite.NotNil(res.Tx)

	calls := suite.host.Calls()
	suite.Require().Len(calls, 1)
	suite.Equal(overseer, calls[0].Target)
	suite.Equal(env.Payload, calls[0].Payload)
}

func (suite *DispatchTestSuite) Test_GovernanceBypassesWhitelist() {
	ok, err := suite.policies.IsWhitelisted(suite.ctx, overseer)
	suite.Require().NoError(err)
	suite.Require().False(ok)

	funds := sdk.NewCoins(sdk.NewInt64Coin("uluna", 1000000000))
	res, err := suite.engine.Dispatch(suite.ctx, multisig, envelope.Envelope{Target: overseer, Payload: []byte(`{"anything":{}}`), Funds: funds}, 10)
	suite.Require().NoError(err)
	suite.Equal(StateDirectForward, res.State)
	suite.Equal(RoleMultisig, res.Role)
	suite.Equal(policy.KindUnknown, res.Kind)
	suite.True(suite.host.Calls()[0].Funds.Equal(funds))
}

func (suite *DispatchTestSuite) Test_UnknownCallerRejected() {
	res, err := suite.engine.Dispatch(suite.ctx, stranger, envelope.Envelope{Target: market, Payload: borrow}, 10)
	suite.ErrorIs(err, walleterrors.ErrUnauthorized)
	suite.Equal(StateRejected, res.State)
	suite.Equal(RoleUnknown, res.Role)
	suite.Empty(suite.host.Calls())

	_, err = suite.engine.Dispatch(suite.ctx, "", envelope.Envelope{Target: market, Payload: borrow}, 10)
	suite.ErrorIs(err, walleterrors.ErrUnauthorized)
	n, err := testutil.GatherAndCount(suite.reg, "smartwallet_dispatch_total")
	suite.Require().NoError(err)
	suite.Equal(1, n)
}

func (suite *DispatchTestSuite) Test_HotWalletGuardedForward() {
	env := envelope.Envelope{Target: market, Payload: borrow, Funds: sdk.NewCoins(sdk.NewInt64Coin("uusd", 2500))}
	res, err := suite.engine.Dispatch(suite.ctx, farmer, env, 5000)
	suite.Require().NoError(err)
	suite.Equal(StateGuardedForward, res.State)
	suite.Equal(RoleHotWallet, res.Role)
	suite.Equal(policy.KindBorrowStable, res.Kind)

	st, err := suite.guard.StateOf(suite.ctx, farmer)
	suite.Require().NoError(err)
	suite.True(st.GasTankBalance.Equal(math.NewUint(2500)))
	suite.Equal(uint64(5000), st.LastUsedAt)
}

func (suite *DispatchTestSuite) Test_HotWalletDenials() {
	cases := []struct {
		name string
		env  envelope.Envelope
		now  uint64
		want error
	}{
		{"contract", envelope.Envelope{Target: overseer, Payload: borrow}, 5000, walleterrors.ErrUnwhitelistedContract},
		{"message", envelope.Envelope{Target: market, Payload: []byte(`{"swap":{}}`)}, 5000, walleterrors.ErrUnwhitelistedMessage},
		{"budget", envelope.Envelope{Target: market, Payload: borrow, Funds: sdk.NewCoins(sdk.NewInt64Coin("uusd", 100000001))}, 5000, walleterrors.ErrBudgetExceeded},
		{"foreign denom", envelope.Envelope{Target: market, Payload: borrow, Funds: sdk.NewCoins(sdk.NewInt64Coin("uluna", 1))}, 5000, walleterrors.ErrBudgetExceeded},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			res, err := suite.engine.Dispatch(suite.ctx, farmer, tc.env, tc.now)
			suite.ErrorIs(err, tc.want)
			suite.Equal(StateRejected, res.State)
			suite.Equal(RoleHotWallet, res.Role)
		})
	}
	suite.Empty(suite.host.Calls())
	st, err := suite.guard.StateOf(suite.ctx, farmer)
	suite.Require().NoError(err)
	suite.False(st.Used)
}

func (suite *DispatchTestSuite) Test_HotWalletCooldown() {
	env := envelope.Envelope{Target: market, Payload: borrow}
	_, err := suite.engine.Dispatch(suite.ctx, farmer, env, 5000)
	suite.Require().NoError(err)

	res, err := suite.engine.Dispatch(suite.ctx, farmer, env, 5999)
	suite.ErrorIs(err, walleterrors.ErrCooldownActive)
	suite.Equal(StateRejected, res.State)

	_, err = suite.engine.Dispatch(suite.ctx, farmer, env, 6000)
	suite.NoError(err)
	suite.Len(suite.host.Calls(), 2)
}

func (suite *DispatchTestSuite) Test_MalformedPayload() {
	for _, payload := range []string{`not json`, `{"a":{},"b":{}}`, `[]`} {
		res, err := suite.engine.Dispatch(suite.ctx, owner, envelope.Envelope{Target: market, Payload: []byte(payload)}, 10)
		suite.ErrorIs(err, walleterrors.ErrMalformedEnvelope, payload)
		suite.Equal(StateRejected, res.State)
	}
	_, err := suite.engine.Dispatch(suite.ctx, owner, envelope.Envelope{Payload: borrow}, 10)
	suite.ErrorIs(err, walleterrors.ErrMalformedEnvelope)
	suite.Empty(suite.host.Calls())
}

func (suite *DispatchTestSuite) Test_DownstreamFailureSurfaced() {
	cause := errors.New("borrow amount too high; loan liability becomes greater than borrow limit")
	suite.host.FailOn(market, cause)

	res, err := suite.engine.Dispatch(suite.ctx, owner, envelope.Envelope{Target: market, Payload: borrow}, 10)
	suite.ErrorIs(err, walleterrors.ErrDownstreamFailure)
	suite.ErrorIs(err, cause)
	suite.Equal(StateDirectForward, res.State)

	var de *walleterrors.DownstreamError
	suite.Require().ErrorAs(err, &de)
	suite.Equal(market, de.Target)
}

func (suite *DispatchTestSuite) Test_ChargeStandsOnDownstreamFailure() {
	suite.host.FailOn(market, errors.New("market paused"))
	env := envelope.Envelope{Target: market, Payload: borrow, Funds: sdk.NewCoins(sdk.NewInt64Coin("uusd", 700))}

	_, err := suite.engine.Dispatch(suite.ctx, farmer, env, 5000)
	suite.ErrorIs(err, walleterrors.ErrDownstreamFailure)

	st, err := suite.guard.StateOf(suite.ctx, farmer)
	suite.Require().NoError(err)
	suite.True(st.GasTankBalance.Equal(math.NewUint(700)))
	suite.Equal(uint64(5000), st.LastUsedAt)
}

func (suite *DispatchTestSuite) Test_RefundOnDownstreamFailure() {
	suite.setup(guard.RefundOnDownstreamFailure)
	suite.host.FailOn(market, errors.New("market paused"))
	env := envelope.Envelope{Target: market, Payload: borrow, Funds: sdk.NewCoins(sdk.NewInt64Coin("uusd", 700))}

	_, err := suite.engine.Dispatch(suite.ctx, farmer, env, 5000)
	suite.ErrorIs(err, walleterrors.ErrDownstreamFailure)

	st, err := suite.guard.StateOf(suite.ctx, farmer)
	suite.Require().NoError(err)
	suite.True(st.GasTankBalance.IsZero())
	// the attempt still counts for the cooldown
	_, err = suite.engine.Dispatch(suite.ctx, farmer, env, 5001)
	suite.ErrorIs(err, walleterrors.ErrCooldownActive)
}

func (suite *DispatchTestSuite) Test_CanExecuteDoesNotCharge() {
	env := envelope.Envelope{Target: market, Payload: borrow, Funds: sdk.NewCoins(sdk.NewInt64Coin("uusd", 10))}
	role, err := suite.engine.CanExecute(suite.ctx, farmer, env, 5000)
	suite.NoError(err)
	suite.Equal(RoleHotWallet, role)

	role, err = suite.engine.CanExecute(suite.ctx, owner, envelope.Envelope{Target: overseer, Payload: borrow}, 5000)
	suite.NoError(err)
	suite.Equal(RoleOwner, role)

	_, err = suite.engine.CanExecute(suite.ctx, stranger, env, 5000)
	suite.ErrorIs(err, walleterrors.ErrUnauthorized)

	st, err := suite.guard.StateOf(suite.ctx, farmer)
	suite.Require().NoError(err)
	suite.False(st.Used)
	suite.Empty(suite.host.Calls())
}

func (suite *DispatchTestSuite) Test_EventsAndMetrics() {
	_, _ = suite.engine.Dispatch(suite.ctx, owner, envelope.Envelope{Target: market, Payload: borrow}, 10)
	_, _ = suite.engine.Dispatch(suite.ctx, farmer, envelope.Envelope{Target: overseer, Payload: borrow}, 10)

	forwards := suite.recorder.Filter(events.TypeDispatch, "forward")
	suite.Require().Len(forwards, 1)
	suite.Equal("owner", forwards[0].Get("role"))

	rejects := suite.recorder.Filter(events.TypeDispatch, "reject")
	suite.Require().Len(rejects, 1)
	suite.Equal("unwhitelisted_contract", rejects[0].Get("reason"))

	n, err := testutil.GatherAndCount(suite.reg, "smartwallet_dispatch_total")
	suite.Require().NoError(err)
	suite.Equal(2, n)
	n, err = testutil.GatherAndCount(suite.reg, "smartwallet_guard_denials_total")
	suite.Require().NoError(err)
	suite.Equal(1, n)
}

func TestDispatchTestSuite(t *testing.T) {
	suite.Run(t, new(DispatchTestSuite))
}
