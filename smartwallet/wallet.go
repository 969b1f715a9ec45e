// Package smartwallet is the wallet contract: it decodes the wallet's instantiate, execute and
// query messages and routes them to the policy store, the guard and the dispatch engine.
package smartwallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Terrorbear/anchor-guardian/smartwallet/dispatch"
	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/smartwallet/guard"
	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/smartwallet/policy"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	walletindicators "github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/wallet"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/multisig"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

const MultisigLabel = "smart wallet governing multisig"

type Wallet struct {
	host     host.Host
	logger   logger.Logger
	policies *policy.Store
	guard    *guard.Guard
	engine   *dispatch.Engine
}

type options struct {
	sink       events.Sink
	indicators walletindicators.Indicators
	charge     guard.ChargePolicy
}

type Option func(*options)

func WithSink(sink events.Sink) Option {
	return func(o *options) { o.sink = sink }
}

func WithIndicators(indicators walletindicators.Indicators) Option {
	return func(o *options) { o.indicators = indicators }
}

func WithChargePolicy(charge guard.ChargePolicy) Option {
	return func(o *options) { o.charge = charge }
}

// New assembles a wallet over kv. h submits forwarded commands with the wallet's own identity; it
// must also implement host.Instantiator for spawn_multi_sig.
func New(kv state.KVStore, h host.Host, l logger.Logger, opts ...Option) *Wallet {
	o := options{
		sink:       events.Nop{},
		indicators: walletindicators.NopIndicators{},
		charge:     guard.ChargeOnAuthorize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	policies := policy.NewStore(kv, o.sink, l)
	g := guard.New(policies, kv, o.sink, l, o.charge)
	return &Wallet{
		host:     h,
		logger:   l,
		policies: policies,
		guard:    g,
		engine:   dispatch.NewEngine(policies, g, h, l, dispatch.WithSink(o.sink), dispatch.WithIndicators(o.indicators)),
	}
}

func (w *Wallet) Policies() *policy.Store { return w.policies }

func (w *Wallet) Guard() *guard.Guard { return w.guard }

func (w *Wallet) Engine() *dispatch.Engine { return w.engine }

// Instantiate configures the wallet from a wallet.InstantiateMsg sent by sender.
func (w *Wallet) Instantiate(ctx context.Context, sender string, raw []byte) (*host.TxResult, error) {
	msg, err := wallet.UnmarshalInstantiateMsg(raw)
	if err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	switch {
	case msg.SpawnMultiSig != nil:
		return w.spawnMultiSig(ctx, sender, msg.SpawnMultiSig)
	case msg.Create != nil:
		cfg, err := walletConfig(msg.Create.Owner, msg.Create.GoverningMultisig, msg.Create.GasDenom, msg.Create.HotWallets, msg.Create.WhitelistedContracts)
		if err != nil {
			return nil, err
		}
		return done(w.policies.Init(ctx, cfg))
	}
	return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "unknown instantiate message")
}

func (w *Wallet) spawnMultiSig(ctx context.Context, sender string, msg *wallet.SpawnMultiSig) (*host.TxResult, error) {
	inst, ok := w.host.(host.Instantiator)
	if !ok {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "host cannot instantiate contracts")
	}
	if msg.Cw3CodeID <= 0 || msg.MaxVotingPeriodInBlocks <= 0 || msg.RequiredWeight <= 0 {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "cw3_code_id, max_voting_period_in_blocks and required_weight must be positive")
	}
	period := msg.MaxVotingPeriodInBlocks
	instMsg := multisig.InstantiateMsg{
		MaxVotingPeriod: multisig.Duration{Height: &period},
		RequiredWeight:  msg.RequiredWeight,
	}
	for _, v := range msg.MultisigVoters {
		instMsg.Voters = append(instMsg.Voters, multisig.Voter{Addr: v.Addr, Weight: v.Weight})
	}
	initBytes, err := instMsg.Marshal()
	if err != nil {
		return nil, err
	}

	owner := sender
	if msg.Owner != nil {
		owner = *msg.Owner
	}
	// validate before creating anything
	cfg, err := walletConfig(owner, "", msg.GasDenom, msg.HotWallets, msg.WhitelistedContracts)
	if err != nil {
		return nil, err
	}

	cw3, tx, err := inst.Instantiate(ctx, uint64(msg.Cw3CodeID), MultisigLabel, initBytes, nil)
	if err != nil {
		return nil, fmt.Errorf("spawn multisig: %w", err)
	}
	cfg.GoverningMultisig = cw3
	if err := w.policies.Init(ctx, cfg); err != nil {
		return nil, err
	}
	w.logger.Info("wallet spawned its governing multisig",
		logger.WithField("owner", owner),
		logger.WithField("cw3Address", cw3))
	return tx, nil
}

// Execute runs a wallet.ExecuteMsg sent by sender at block height now.
func (w *Wallet) Execute(ctx context.Context, sender string, raw []byte, now uint64) (*host.TxResult, error) {
	msg, err := wallet.UnmarshalExecuteMsg(raw)
	if err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	ctx = events.WithHeight(ctx, int64(now))

	switch {
	case msg.Execute != nil:
		env, err := envelope.Decode(msg.Execute.Command)
		if err != nil {
			return nil, err
		}
		res, err := w.engine.Dispatch(ctx, sender, env, now)
		if err != nil && res != nil && res.State == dispatch.StateGuardedForward {
			// the charge was recorded before the forwarded call failed and must be kept
			tx := res.Tx
			if tx == nil {
				tx = &host.TxResult{}
			}
			return tx, err
		}
		if err != nil {
			return nil, err
		}
		return res.Tx, nil
	case msg.UpsertHot != nil:
		hw, err := hotWallet(msg.UpsertHot.HotWallet)
		if err != nil {
			return nil, err
		}
		_, err = w.policies.UpsertHotWallet(ctx, sender, hw)
		return done(err)
	case msg.RmHot != nil:
		return done(w.policies.RemoveHotWallet(ctx, sender, msg.RmHot.Address))
	case msg.UpsertContract != nil:
		entry, err := whitelistedContract(msg.UpsertContract.Contract)
		if err != nil {
			return nil, err
		}
		return done(w.policies.WhitelistContract(ctx, sender, entry))
	case msg.RmContract != nil:
		return done(w.policies.RemoveContract(ctx, sender, msg.RmContract.Address))
	case msg.UpdateOwner != nil:
		return done(w.policies.UpdateOwner(ctx, sender, msg.UpdateOwner.Owner))
	}
	return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "unknown execute message")
}

// Query answers a wallet.QueryMsg at block height now.
func (w *Wallet) Query(ctx context.Context, raw []byte, now uint64) ([]byte, error) {
	msg, err := wallet.UnmarshalQueryMsg(raw)
	if err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	switch {
	case msg.Config != nil:
		cfg, err := w.policies.Settings(ctx)
		if err != nil {
			return nil, err
		}
		resp := wallet.ConfigResponse{
			Cw3Address:           cfg.GoverningMultisig,
			GasDenom:             cfg.GasDenom,
			Owner:                cfg.Owner,
			WhitelistedContracts: make([]wallet.WhitelistedContract, 0, len(cfg.WhitelistedContracts)),
		}
		for _, wc := range cfg.WhitelistedContracts {
			resp.WhitelistedContracts = append(resp.WhitelistedContracts, wallet.WhitelistedContract{
				Address: wc.Address, CodeID: int64(wc.CodeID), Label: wc.Label,
			})
		}
		return resp.Marshal()
	case msg.HotWallet != nil:
		resp, err := w.hotWalletStatus(ctx, msg.HotWallet.Address)
		if err != nil {
			return nil, err
		}
		return resp.Marshal()
	case msg.HotWallets != nil:
		hws, err := w.policies.HotWallets(ctx)
		if err != nil {
			return nil, err
		}
		resp := wallet.HotWalletsResponse{HotWallets: make([]wallet.HotWalletResponse, 0, len(hws))}
		for _, hw := range hws {
			status, err := w.hotWalletStatus(ctx, hw.Address)
			if err != nil {
				return nil, err
			}
			resp.HotWallets = append(resp.HotWallets, status)
		}
		return resp.Marshal()
	case msg.CanExecute != nil:
		env, err := envelope.Decode(msg.CanExecute.Command)
		if err != nil {
			return nil, err
		}
		role, err := w.engine.CanExecute(ctx, msg.CanExecute.Sender, env, now)
		resp := wallet.CanExecuteResponse{CanExecute: err == nil, Role: role.String()}
		if err != nil {
			if !isDecision(err) {
				return nil, err
			}
			reason := walleterrors.Reason(err)
			resp.Reason = &reason
		}
		return resp.Marshal()
	}
	return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "unknown query message")
}

// HotWalletStatus is the hot_wallet query without the JSON round trip.
func (w *Wallet) HotWalletStatus(ctx context.Context, address string) (policy.HotWallet, guard.State, error) {
	hw, err := w.policies.HotWallet(ctx, address)
	if err != nil {
		return policy.HotWallet{}, guard.State{}, err
	}
	st, err := w.guard.StateOf(ctx, address)
	return hw, st, err
}

func (w *Wallet) hotWalletStatus(ctx context.Context, address string) (wallet.HotWalletResponse, error) {
	hw, st, err := w.HotWalletStatus(ctx, address)
	if err != nil {
		return wallet.HotWalletResponse{}, err
	}
	resp := wallet.HotWalletResponse{
		Address:             hw.Address,
		GasCooldown:         int64(hw.GasCooldown),
		GasTankBalance:      st.GasTankBalance.String(),
		GasTankMax:          hw.GasTankMax.String(),
		Label:               hw.Label,
		Revision:            int64(hw.Revision),
		WhitelistedMessages: make([]int64, 0, len(hw.WhitelistedMessages)),
	}
	if st.Used {
		last := int64(st.LastUsedAt)
		resp.LastUsedAt = &last
	}
	for _, k := range hw.WhitelistedMessages {
		resp.WhitelistedMessages = append(resp.WhitelistedMessages, int64(k))
	}
	return resp, nil
}

// done wraps the outcome of a call that forwards nothing. A failed call returns no result so
// that the host discards its writes.
func done(err error) (*host.TxResult, error) {
	if err != nil {
		return nil, err
	}
	return &host.TxResult{}, nil
}

// isDecision reports whether err is an access decision rather than a storage failure.
func isDecision(err error) bool {
	if errors.Is(err, walleterrors.ErrDownstreamFailure) {
		return false
	}
	for _, target := range []error{
		walleterrors.ErrUnauthorized,
		walleterrors.ErrUnknownWallet,
		walleterrors.ErrUnwhitelistedContract,
		walleterrors.ErrUnwhitelistedMessage,
		walleterrors.ErrCooldownActive,
		walleterrors.ErrBudgetExceeded,
		walleterrors.ErrMalformedEnvelope,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Funds is a convenience for callers building envelopes from a coin string such as "100uusd".
func Funds(s string) (sdk.Coins, error) {
	if s == "" {
		return nil, nil
	}
	coins, err := sdk.ParseCoinsNormalized(s)
	if err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	return coins, nil
}

// RawCommand marshals env as the command field of the wallet's execute message.
func RawCommand(env envelope.Envelope) (json.RawMessage, error) {
	return env.Marshal()
}
