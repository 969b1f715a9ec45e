// Package scenario replays the local-run walkthrough of the smart wallet on an in-process ledger:
// deploy, spawn the wallet with its multisig, fund it, lock collateral and borrow through
// governance, register a second hot wallet, then exercise the hot-wallet guard directly.
package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Terrorbear/anchor-guardian/localterra"
	"github.com/Terrorbear/anchor-guardian/smartwallet"
	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/smartwallet/guard"
	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	walletindicators "github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/wallet"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/cw20"
	cwmultisig "github.com/Terrorbear/anchor-guardian/wallet-cw/multisig"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

const expectOK = "ok"

type Config struct {
	GasDenom           string `yaml:"gas_denom" mapstructure:"gas_denom" toml:"gas_denom"`
	GasCooldown        uint64 `yaml:"gas_cooldown" mapstructure:"gas_cooldown" toml:"gas_cooldown"`
	GasTankMax         string `yaml:"gas_tank_max" mapstructure:"gas_tank_max" toml:"gas_tank_max"`
	MaxVotingPeriod    int64  `yaml:"max_voting_period" mapstructure:"max_voting_period" toml:"max_voting_period"`
	RequiredWeight     int64  `yaml:"required_weight" mapstructure:"required_weight" toml:"required_weight"`
	WalletFunding      string `yaml:"wallet_funding" mapstructure:"wallet_funding" toml:"wallet_funding"`
	CollateralTransfer string `yaml:"collateral_transfer" mapstructure:"collateral_transfer" toml:"collateral_transfer"`
	CollateralDeposit  string `yaml:"collateral_deposit" mapstructure:"collateral_deposit" toml:"collateral_deposit"`
	BorrowAmount       string `yaml:"borrow_amount" mapstructure:"borrow_amount" toml:"borrow_amount"`
	// OverBudgetSpend is attached to a hot-wallet call that must exceed the tank.
	OverBudgetSpend string `yaml:"over_budget_spend" mapstructure:"over_budget_spend" toml:"over_budget_spend"`
	ChargePolicy    string `yaml:"charge_policy" mapstructure:"charge_policy" toml:"charge_policy"`
}

// DefaultConfig carries the amounts of the original walkthrough.
func DefaultConfig() Config {
	return Config{
		GasDenom:           "uusd",
		GasCooldown:        1000,
		GasTankMax:         "100000000",
		MaxVotingPeriod:    100,
		RequiredWeight:     2,
		WalletFunding:      "1000000000uusd",
		CollateralTransfer: "500000000",
		CollateralDeposit:  "1000000",
		BorrowAmount:       "75000000",
		OverBudgetSpend:    "100000001uusd",
		ChargePolicy:       guard.ChargeOnAuthorize.String(),
	}
}

type options struct {
	kv         state.KVStore
	sink       events.Sink
	indicators walletindicators.Indicators
}

type Option func(*options)

// WithStore runs the ledger over kv instead of a fresh in-memory store.
func WithStore(kv state.KVStore) Option {
	return func(o *options) { o.kv = kv }
}

// WithSink also sends every audit event to sink.
func WithSink(sink events.Sink) Option {
	return func(o *options) { o.sink = sink }
}

func WithIndicators(indicators walletindicators.Indicators) Option {
	return func(o *options) { o.indicators = indicators }
}

// Runner keeps the accounts and contracts of one run.
type Runner struct {
	cfg    Config
	ledger *localterra.Ledger
	logger logger.Logger
	audit  *events.Recorder
	sink   events.Sink
	opts   options

	owner      string
	voter2     string
	voter3     string
	liquidator string
	farmer     string

	market   string
	overseer string
	custody  string
	reward   string
	bluna    string
	wallet   string
	cw3      string

	report *Report
}

func NewRunner(cfg Config, l logger.Logger, opts ...Option) (*Runner, error) {
	o := options{indicators: walletindicators.NopIndicators{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.kv == nil {
		o.kv = state.NewMemStore()
	}
	if _, err := guard.ParseChargePolicy(cfg.ChargePolicy); err != nil {
		return nil, err
	}
	audit := events.NewRecorder()
	var sink events.Sink = audit
	if o.sink != nil {
		sink = events.Fanout{audit, o.sink}
	}
	return &Runner{
		cfg:    cfg,
		ledger: localterra.New(o.kv, l),
		logger: l,
		audit:  audit,
		sink:   sink,
		opts:   o,
		report: newReport(),
	}, nil
}

// Run executes the walkthrough. The report is returned even when a step goes wrong, up to that
// step.
func Run(ctx context.Context, cfg Config, l logger.Logger, opts ...Option) (*Report, error) {
	r, err := NewRunner(cfg, l, opts...)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx)
}

func (r *Runner) Ledger() *localterra.Ledger { return r.ledger }

func (r *Runner) Run(ctx context.Context) (*Report, error) {
	phases := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"deploy", r.deploy},
		{"spawn", r.spawn},
		{"fund", r.fund},
		{"collateral", r.collateral},
		{"borrow", r.borrow},
		{"add hot wallet", r.addHotWallet},
		{"hot wallet calls", r.hotWalletCalls},
	}
	for _, phase := range phases {
		r.logger.Info("scenario phase", logger.WithField("phase", phase.name), logger.WithField("height", r.ledger.Height()))
		if err := phase.fn(ctx); err != nil {
			return r.report, fmt.Errorf("%s: %w", phase.name, err)
		}
	}
	if err := r.summarize(ctx); err != nil {
		return r.report, err
	}
	return r.report, nil
}

func (r *Runner) deploy(ctx context.Context) error {
	r.owner = r.account("owner", "test1")
	r.voter2 = r.account("voter2", "test2")
	r.voter3 = r.account("voter3", "test3")
	r.liquidator = r.account("liquidator", "test4")
	r.farmer = r.account("farmer", "test7")

	recorders := []struct {
		name  string
		label string
		addr  *string
	}{
		{"market", "anchor_market", &r.market},
		{"overseer", "anchor_overseer", &r.overseer},
		{"bluna_custody", "bluna_custody", &r.custody},
		{"reward", "bluna_reward", &r.reward},
	}
	for _, rc := range recorders {
		deployed, err := r.ledger.DeployCode(ctx, rc.name, localterra.RecorderCode(), []byte(`{}`), rc.label, r.owner)
		if err != nil {
			return err
		}
		*rc.addr = deployed.Address
		r.report.Contracts[rc.name] = deployed.Address
	}

	minter := cw20.MinterResponse{Minter: r.voter2}
	token := cw20.InstantiateMsg{
		Decimals:        6,
		InitialBalances: []cw20.Cw20Coin{{Address: r.voter2, Amount: "1000000000000"}},
		Mint:            &minter,
		Name:            "Bonded Luna",
		Symbol:          "BLUNA",
	}
	raw, err := token.Marshal()
	if err != nil {
		return err
	}
	deployed, err := r.ledger.DeployCode(ctx, "bluna", localterra.CW20Code(), raw, "bluna", r.owner)
	if err != nil {
		return err
	}
	r.bluna = deployed.Address
	r.report.Contracts["bluna"] = r.bluna

	if _, err := r.ledger.StoreCode(ctx, "cw3_fixed_multisig", localterra.MultisigCode(r.logger, r.sink, r.opts.indicators), r.owner); err != nil {
		return err
	}
	charge, _ := guard.ParseChargePolicy(r.cfg.ChargePolicy)
	walletCode := localterra.WalletCode(r.logger, r.sink,
		smartwallet.WithIndicators(r.opts.indicators),
		smartwallet.WithChargePolicy(charge))
	_, err = r.ledger.StoreCode(ctx, "smart_wallet", walletCode, r.owner)
	return err
}

func (r *Runner) spawn(ctx context.Context) error {
	cw3Code, ok := r.ledger.CodeID("cw3_fixed_multisig")
	if !ok {
		return localterra.ErrUnknownCode
	}
	walletCode, ok := r.ledger.CodeID("smart_wallet")
	if !ok {
		return localterra.ErrUnknownCode
	}
	denom := r.cfg.GasDenom
	msg := wallet.InstantiateMsg{SpawnMultiSig: &wallet.SpawnMultiSig{
		Cw3CodeID: int64(cw3Code),
		GasDenom:  &denom,
		HotWallets: []wallet.HotWallet{{
			Address:             r.farmer,
			Label:               "farmer",
			GasCooldown:         int64(r.cfg.GasCooldown),
			GasTankMax:          r.cfg.GasTankMax,
			WhitelistedMessages: []int64{0, 1, 2},
		}},
		MaxVotingPeriodInBlocks: r.cfg.MaxVotingPeriod,
		MultisigVoters: []wallet.MultisigVoter{
			{Addr: r.owner, Weight: 1},
			{Addr: r.voter2, Weight: 1},
			{Addr: r.voter3, Weight: 1},
		},
		RequiredWeight: r.cfg.RequiredWeight,
		WhitelistedContracts: []wallet.WhitelistedContract{
			{Address: r.market, Label: "anchor_market", CodeID: r.codeID("market")},
			{Address: r.reward, Label: "bluna_reward", CodeID: r.codeID("reward")},
		},
	}}
	raw, err := msg.Marshal()
	if err != nil {
		return err
	}
	_, err = r.step("instantiate smart wallet", r.owner, expectOK, func() (*host.TxResult, error) {
		addr, res, err := r.ledger.HostFor(r.owner).Instantiate(ctx, walletCode, "smart wallet", raw, nil)
		r.wallet = addr
		return res, err
	})
	if err != nil {
		return err
	}
	r.report.Contracts["smart_wallet"] = r.wallet

	out, err := r.ledger.Query(ctx, r.wallet, []byte(`{"config":{}}`))
	if err != nil {
		return err
	}
	cfg, err := wallet.UnmarshalConfigResponse(out)
	if err != nil {
		return err
	}
	r.cw3 = cfg.Cw3Address
	r.report.Contracts["cw3"] = r.cw3
	return nil
}

func (r *Runner) fund(ctx context.Context) error {
	coins, err := smartwallet.Funds(r.cfg.WalletFunding)
	if err != nil {
		return err
	}
	if _, err := r.ledger.FundAddress(ctx, r.owner, coins); err != nil {
		return err
	}
	_, err = r.step("fund smart wallet", r.owner, expectOK, func() (*host.TxResult, error) {
		return r.ledger.Send(ctx, r.owner, r.wallet, coins)
	})
	return err
}

func (r *Runner) collateral(ctx context.Context) error {
	transfer := cw20.ExecuteMsg{Transfer: &cw20.Transfer{Amount: r.cfg.CollateralTransfer, Recipient: r.wallet}}
	raw, err := transfer.Marshal()
	if err != nil {
		return err
	}
	if _, err := r.step("transfer bluna to wallet", r.voter2, expectOK, func() (*host.TxResult, error) {
		return r.ledger.HostFor(r.voter2).Submit(ctx, r.bluna, raw, nil)
	}); err != nil {
		return err
	}

	send := cw20.ExecuteMsg{Send: &cw20.Send{
		Amount:   r.cfg.CollateralDeposit,
		Contract: r.custody,
		Msg:      []byte(`{"deposit_collateral":{}}`),
	}}
	deposit, err := send.Marshal()
	if err != nil {
		return err
	}
	lock, err := json.Marshal(map[string]interface{}{
		"lock_collateral": map[string]interface{}{
			"collaterals": [][]string{{r.bluna, r.cfg.CollateralDeposit}},
		},
	})
	if err != nil {
		return err
	}
	msgs, err := r.throughWallet(
		envelope.Envelope{Target: r.bluna, Payload: deposit},
		envelope.Envelope{Target: r.overseer, Payload: lock},
	)
	if err != nil {
		return err
	}
	return r.governance(ctx, "deposit and lock collateral", msgs)
}

func (r *Runner) borrow(ctx context.Context) error {
	payload, err := json.Marshal(map[string]interface{}{
		"borrow_stable": map[string]string{"borrow_amount": r.cfg.BorrowAmount},
	})
	if err != nil {
		return err
	}
	msgs, err := r.throughWallet(envelope.Envelope{Target: r.market, Payload: payload})
	if err != nil {
		return err
	}
	return r.governance(ctx, "borrow stable", msgs)
}

func (r *Runner) addHotWallet(ctx context.Context) error {
	upsert := wallet.ExecuteMsg{UpsertHot: &wallet.UpsertHot{HotWallet: wallet.HotWallet{
		Address:             r.liquidator,
		Label:               "liquidator",
		GasCooldown:         int64(r.cfg.GasCooldown),
		GasTankMax:          r.cfg.GasTankMax,
		WhitelistedMessages: []int64{1},
	}}}
	payload, err := upsert.Marshal()
	if err != nil {
		return err
	}
	raw, err := envelope.Envelope{Target: r.wallet, Payload: payload}.Marshal()
	if err != nil {
		return err
	}
	return r.governance(ctx, "upsert liquidator hot wallet", []json.RawMessage{raw})
}

func (r *Runner) hotWalletCalls(ctx context.Context) error {
	overBudget, err := smartwallet.Funds(r.cfg.OverBudgetSpend)
	if err != nil {
		return err
	}
	calls := []struct {
		name    string
		sender  string
		target  string
		payload string
		funds   sdk.Coins
		advance int64
		expect  string
	}{
		{name: "farmer claims rewards", sender: r.farmer, target: r.reward, payload: `{"claim_rewards":{}}`, expect: expectOK},
		{name: "farmer claims again inside cooldown", sender: r.farmer, target: r.reward, payload: `{"claim_rewards":{}}`, expect: "cooldown_active"},
		{name: "farmer calls a contract off the whitelist", sender: r.farmer, target: r.custody, payload: `{"claim_rewards":{}}`, advance: int64(r.cfg.GasCooldown), expect: "unwhitelisted_contract"},
		{name: "farmer overspends the gas tank", sender: r.farmer, target: r.market, payload: `{"borrow_stable":{}}`, funds: overBudget, expect: "budget_exceeded"},
		{name: "farmer withdraws collateral", sender: r.farmer, target: r.market, payload: `{"withdraw_collateral":{}}`, expect: "unwhitelisted_message"},
		{name: "liquidator borrows", sender: r.liquidator, target: r.market, payload: `{"borrow_stable":{"borrow_amount":"1"}}`, expect: expectOK},
		{name: "liquidator claims rewards", sender: r.liquidator, target: r.reward, payload: `{"claim_rewards":{}}`, expect: "unwhitelisted_message"},
		{name: "stranger forwards a command", sender: r.voter2, target: r.market, payload: `{"repay_stable":{}}`, expect: "unauthorized"},
	}
	for _, c := range calls {
		if c.advance > 0 {
			r.ledger.AdvanceBlocks(c.advance)
		}
		raw, err := r.command(c.target, c.payload, c.funds)
		if err != nil {
			return err
		}
		if _, err := r.step(c.name, c.sender, c.expect, func() (*host.TxResult, error) {
			return r.ledger.HostFor(c.sender).Submit(ctx, r.wallet, raw, nil)
		}); err != nil {
			return err
		}
	}
	return nil
}

// governance proposes msgs as voter3, adds the owner's vote and executes as voter2: proposer
// plus one voter reaches the 2-of-3 quorum.
func (r *Runner) governance(ctx context.Context, title string, msgs []json.RawMessage) error {
	propose := cwmultisig.ExecuteMsg{Propose: &cwmultisig.Propose{Title: title, Description: title, Msgs: msgs}}
	res, err := r.step("propose "+title, r.voter3, expectOK, r.multisig(ctx, r.voter3, propose))
	if err != nil {
		return err
	}
	v, ok := res.Attribute("wasm", "proposal_id")
	if !ok {
		return fmt.Errorf("propose %q: no proposal_id in events", title)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}
	vote := cwmultisig.ExecuteMsg{Vote: &cwmultisig.Vote{ProposalID: id, Vote: "yes"}}
	if _, err := r.step("vote "+title, r.owner, expectOK, r.multisig(ctx, r.owner, vote)); err != nil {
		return err
	}
	execute := cwmultisig.ExecuteMsg{Execute: &cwmultisig.ProposalIDMsg{ProposalID: id}}
	_, err = r.step("execute "+title, r.voter2, expectOK, r.multisig(ctx, r.voter2, execute))
	return err
}

func (r *Runner) multisig(ctx context.Context, sender string, msg cwmultisig.ExecuteMsg) func() (*host.TxResult, error) {
	return func() (*host.TxResult, error) {
		raw, err := msg.Marshal()
		if err != nil {
			return nil, err
		}
		return r.ledger.HostFor(sender).Submit(ctx, r.cw3, raw, nil)
	}
}

// step runs fn and records it. An outcome other than expect ends the run.
func (r *Runner) step(name, sender, expect string, fn func() (*host.TxResult, error)) (*host.TxResult, error) {
	res, err := fn()
	outcome := walleterrors.Reason(err)
	s := Step{Name: name, Sender: r.report.nameOf(sender), Expect: expect, Outcome: outcome, Height: r.ledger.Height()}
	if res != nil {
		s.TxHash = res.TxHash
		s.Height = res.Height
	}
	if err != nil {
		s.Error = err.Error()
	}
	r.report.Steps = append(r.report.Steps, s)
	if outcome != expect {
		if err == nil {
			err = errors.New("succeeded")
		}
		return res, fmt.Errorf("step %q: expected %s, got %s: %w", name, expect, outcome, err)
	}
	r.logger.Debug("scenario step", logger.WithField("step", name), logger.WithField("outcome", outcome))
	return res, nil
}

func (r *Runner) account(name, uid string) string {
	addr := r.ledger.GenerateAddress(uid)
	r.report.Accounts[name] = addr
	return addr
}

func (r *Runner) codeID(name string) int64 {
	id, _ := r.ledger.CodeID(name)
	return int64(id)
}

// throughWallet wraps each inner command so the multisig asks the wallet to forward it.
func (r *Runner) throughWallet(inner ...envelope.Envelope) ([]json.RawMessage, error) {
	msgs := make([]json.RawMessage, 0, len(inner))
	for _, env := range inner {
		nested, err := envelope.Nest(r.wallet, env)
		if err != nil {
			return nil, err
		}
		raw, err := nested.Marshal()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, raw)
	}
	return msgs, nil
}

func (r *Runner) command(target, payload string, funds sdk.Coins) ([]byte, error) {
	cmd, err := smartwallet.RawCommand(envelope.Envelope{Target: target, Payload: []byte(payload), Funds: funds})
	if err != nil {
		return nil, err
	}
	return (&wallet.ExecuteMsg{Execute: &wallet.Execute{Command: cmd}}).Marshal()
}
