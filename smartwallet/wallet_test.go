package smartwallet

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/suite"

	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/multisig"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

const (
	owner    = "terra1x46rqay4d3cssq8gxxvqz8xt6nwlz4td20k38v"
	voter2   = "terra17lmam6zguazs5q5u6z5mmx76uj63gldnse2pdp"
	voter3   = "terra1757tkx08n0cqrw7p86ny9lnxsqeth0wgp0em95"
	farmer   = "terra1fmcjjt6yc9wqup2r06urnrd928jhrde6gcld6n"
	market   = "terra15dwd5mj8v59wpj0wvt233mf5efdff808c5tkal"
	reward   = "terra17yap3mhph35pcwvhza38c2lkj7gzywzy05h7l0"
	overseer = "terra1qljxd0y3j3gk97025qvl3lgq8ygup4gsksvaxv"
)

const spawnMsg = `{"spawn_multi_sig":{
	"hot_wallets":[{"address":"` + farmer + `","label":"farmer","gas_cooldown":1000,"gas_tank_max":"100000000","whitelisted_messages":[0,1,2]}],
	"whitelisted_contracts":[
		{"address":"` + market + `","label":"anchor_market","code_id":226},
		{"address":"` + reward + `","label":"bluna_reward","code_id":220}],
	"max_voting_period_in_blocks":100,
	"required_weight":2,
	"multisig_voters":[{"addr":"` + owner + `","weight":1},{"addr":"` + voter2 + `","weight":1},{"addr":"` + voter3 + `","weight":1}],
	"cw3_code_id":7}}`

type WalletTestSuite struct {
	suite.Suite
	ctx    context.Context
	host   *host.MockHost
	wallet *Wallet
	cw3    string
}

func (suite *WalletTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.host = host.NewMockHost()
	suite.wallet = New(state.NewMemStore(), suite.host, logger.NewMockLogger())

	tx, err := suite.wallet.Instantiate(suite.ctx, owner, []byte(spawnMsg))
	suite.Require().NoError(err)
	addr, ok := tx.Attribute("instantiate", "_contract_address")
	suite.Require().True(ok)
	suite.cw3 = addr
}

func (suite *WalletTestSuite) execute(sender string, msg wallet.ExecuteMsg, now uint64) error {
	raw, err := msg.Marshal()
	suite.Require().NoError(err)
	_, err = suite.wallet.Execute(suite.ctx, sender, raw, now)
	return err
}

func (suite *WalletTestSuite) command(target, payload string, funds sdk.Coins) json.RawMessage {
	raw, err := RawCommand(envelope.Envelope{Target: target, Payload: []byte(payload), Funds: funds})
	suite.Require().NoError(err)
	return raw
}

func (suite *WalletTestSuite) query(msg wallet.QueryMsg) []byte {
	raw, err := msg.Marshal()
	suite.Require().NoError(err)
	out, err := suite.wallet.Query(suite.ctx, raw, 0)
	suite.Require().NoError(err)
	return out
}

func (suite *WalletTestSuite) Test_SpawnMultiSig() {
	instances := suite.host.Instances()
	suite.Require().Len(instances, 1)
	suite.Equal(uint64(7), instances[0].CodeID)

	instMsg, err := multisig.UnmarshalInstantiateMsg(instances[0].Msg)
	suite.Require().NoError(err)
	suite.Equal(int64(2), instMsg.RequiredWeight)
	suite.Equal(int64(100), *instMsg.MaxVotingPeriod.Height)
	suite.Len(instMsg.Voters, 3)

	cfg, err := wallet.UnmarshalConfigResponse(suite.query(wallet.QueryMsg{Config: &wallet.Config{}}))
	suite.Require().NoError(err)
	suite.Equal(suite.cw3, cfg.Cw3Address)
	suite.Equal(owner, cfg.Owner)
	suite.Equal("uusd", cfg.GasDenom)
	suite.Len(cfg.WhitelistedContracts, 2)
}

func (suite *WalletTestSuite) Test_InstantiateRejectsBadInput() {
	w := New(state.NewMemStore(), suite.host, logger.NewMockLogger())
	_, err := w.Instantiate(suite.ctx, owner, []byte(`{"unknown":{}}`))
	suite.ErrorIs(err, walleterrors.ErrInvalidRequest)

	bad := `{"create":{"owner":"` + owner + `","governing_multisig":"x","hot_wallets":[{"address":"a","label":"l","gas_cooldown":1,"gas_tank_max":"-5","whitelisted_messages":[]}],"whitelisted_contracts":[]}}`
	_, err = w.Instantiate(suite.ctx, owner, []byte(bad))
	suite.ErrorIs(err, walleterrors.ErrInvalidRequest)

	_, err = suite.wallet.Instantiate(suite.ctx, owner, []byte(spawnMsg))
	suite.ErrorIs(err, walleterrors.ErrInvalidRequest)
}

func (suite *WalletTestSuite) Test_ExecuteCommand() {
	err := suite.execute(farmer, wallet.ExecuteMsg{Execute: &wallet.Execute{
		Command: suite.command(market, `{"borrow_stable":{"borrow_amount":"1"}}`, sdk.NewCoins(sdk.NewInt64Coin("uusd", 10))),
	}}, 2000)
	suite.Require().NoError(err)

	status, err := wallet.UnmarshalHotWalletResponse(suite.query(wallet.QueryMsg{HotWallet: &wallet.QueryHot{Address: farmer}}))
	suite.Require().NoError(err)
	suite.Equal("10", status.GasTankBalance)
	suite.Equal("100000000", status.GasTankMax)
	suite.Require().NotNil(status.LastUsedAt)
	suite.Equal(int64(2000), *status.LastUsedAt)

	err = suite.execute(farmer, wallet.ExecuteMsg{Execute: &wallet.Execute{
		Command: suite.command(market, `{"borrow_stable":{"borrow_amount":"1"}}`, nil),
	}}, 2500)
	suite.ErrorIs(err, walleterrors.ErrCooldownActive)

	err = suite.execute(voter2, wallet.ExecuteMsg{Execute: &wallet.Execute{
		Command: suite.command(market, `{"borrow_stable":{}}`, nil),
	}}, 2500)
	suite.ErrorIs(err, walleterrors.ErrUnauthorized)
}

func (suite *WalletTestSuite) Test_MalformedCommand() {
	err := suite.execute(owner, wallet.ExecuteMsg{Execute: &wallet.Execute{
		Command: json.RawMessage(`{"wasm":{"execute":{"contract_addr":"` + market + `","funds":[],"msg":"!!"}}}`),
	}}, 1)
	suite.ErrorIs(err, walleterrors.ErrMalformedEnvelope)
	suite.Empty(suite.host.Calls())
}

func (suite *WalletTestSuite) Test_GovernanceUpsertHot() {
	newHot := wallet.HotWallet{Address: voter3, Label: "farmer", GasCooldown: 1000, GasTankMax: "100000000", WhitelistedMessages: []int64{1}}

	err := suite.execute(farmer, wallet.ExecuteMsg{UpsertHot: &wallet.UpsertHot{HotWallet: newHot}}, 1)
	suite.ErrorIs(err, walleterrors.ErrUnauthorized)

	suite.Require().NoError(suite.execute(suite.cw3, wallet.ExecuteMsg{UpsertHot: &wallet.UpsertHot{HotWallet: newHot}}, 1))

	all, err := wallet.UnmarshalHotWalletsResponse(suite.query(wallet.QueryMsg{HotWallets: &wallet.HotWallets{}}))
	suite.Require().NoError(err)
	suite.Len(all.HotWallets, 2)

	suite.Require().NoError(suite.execute(owner, wallet.ExecuteMsg{RmHot: &wallet.RmHot{Address: voter3}}, 2))
	suite.ErrorIs(suite.execute(owner, wallet.ExecuteMsg{RmHot: &wallet.RmHot{Address: voter3}}, 3), walleterrors.ErrNotFound)
}

func (suite *WalletTestSuite) Test_ContractsAndOwner() {
	entry := wallet.WhitelistedContract{Address: overseer, Label: "anchor_overseer", CodeID: 221}
	suite.Require().NoError(suite.execute(owner, wallet.ExecuteMsg{UpsertContract: &wallet.UpsertContract{Contract: entry}}, 1))
	suite.Require().NoError(suite.execute(owner, wallet.ExecuteMsg{UpsertContract: &wallet.UpsertContract{Contract: entry}}, 1))

	cfg, err := wallet.UnmarshalConfigResponse(suite.query(wallet.QueryMsg{Config: &wallet.Config{}}))
	suite.Require().NoError(err)
	suite.Len(cfg.WhitelistedContracts, 3)

	suite.Require().NoError(suite.execute(suite.cw3, wallet.ExecuteMsg{RmContract: &wallet.RmContract{Address: overseer}}, 2))
	suite.Require().NoError(suite.execute(suite.cw3, wallet.ExecuteMsg{UpdateOwner: &wallet.UpdateOwner{Owner: voter2}}, 3))

	cfg, err = wallet.UnmarshalConfigResponse(suite.query(wallet.QueryMsg{Config: &wallet.Config{}}))
	suite.Require().NoError(err)
	suite.Equal(voter2, cfg.Owner)
	suite.Len(cfg.WhitelistedContracts, 2)
	suite.ErrorIs(suite.execute(owner, wallet.ExecuteMsg{RmContract: &wallet.RmContract{Address: market}}, 4), walleterrors.ErrUnauthorized)
}

func (suite *WalletTestSuite) Test_NegativeCodeID() {
	entry := wallet.WhitelistedContract{Address: overseer, Label: "anchor_overseer", CodeID: -1}
	suite.ErrorIs(suite.execute(owner, wallet.ExecuteMsg{UpsertContract: &wallet.UpsertContract{Contract: entry}}, 1), walleterrors.ErrInvalidRequest)

	cfg, err := wallet.UnmarshalConfigResponse(suite.query(wallet.QueryMsg{Config: &wallet.Config{}}))
	suite.Require().NoError(err)
	suite.Len(cfg.WhitelistedContracts, 2)

	w := New(state.NewMemStore(), suite.host, logger.NewMockLogger())
	bad := `{"create":{"owner":"` + owner + `","governing_multisig":"x","hot_wallets":[],"whitelisted_contracts":[{"address":"` + market + `","label":"anchor_market","code_id":-7}]}}`
	_, err = w.Instantiate(suite.ctx, owner, []byte(bad))
	suite.ErrorIs(err, walleterrors.ErrInvalidRequest)
}

func (suite *WalletTestSuite) Test_CanExecute() {
	check := func(sender, target, payload string) wallet.CanExecuteResponse {
		resp, err := wallet.UnmarshalCanExecuteResponse(suite.query(wallet.QueryMsg{CanExecute: &wallet.CanExecute{
			Sender:  sender,
			Command: suite.command(target, payload, nil),
		}}))
		suite.Require().NoError(err)
		return resp
	}

	resp := check(farmer, market, `{"repay_stable":{}}`)
	suite.True(resp.CanExecute)
	suite.Equal("hot_wallet", resp.Role)

	resp = check(farmer, overseer, `{"repay_stable":{}}`)
	suite.False(resp.CanExecute)
	suite.Require().NotNil(resp.Reason)
	suite.Equal("unwhitelisted_contract", *resp.Reason)

	resp = check(farmer, market, `{"swap":{}}`)
	suite.False(resp.CanExecute)
	suite.Equal("unwhitelisted_message", *resp.Reason)

	resp = check(suite.cw3, overseer, `{"anything":{}}`)
	suite.True(resp.CanExecute)
	suite.Equal("multisig", resp.Role)

	resp = check(voter2, market, `{"repay_stable":{}}`)
	suite.False(resp.CanExecute)
	suite.Equal("unauthorized", *resp.Reason)
}

func (suite *WalletTestSuite) Test_DownstreamFailureKeepsCharge() {
	suite.host.FailOn(market, errors.New("borrow limit"))
	raw, err := (&wallet.ExecuteMsg{Execute: &wallet.Execute{
		Command: suite.command(market, `{"borrow_stable":{}}`, sdk.NewCoins(sdk.NewInt64Coin("uusd", 55))),
	}}).Marshal()
	suite.Require().NoError(err)

	tx, err := suite.wallet.Execute(suite.ctx, farmer, raw, 10)
	suite.ErrorIs(err, walleterrors.ErrDownstreamFailure)
	suite.NotNil(tx)

	_, st, err := suite.wallet.HotWalletStatus(suite.ctx, farmer)
	suite.Require().NoError(err)
	suite.Equal("55", st.GasTankBalance.String())
}

func TestWalletTestSuite(t *testing.T) {
	suite.Run(t, new(WalletTestSuite))
}
