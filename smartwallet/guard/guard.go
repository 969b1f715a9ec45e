// Package guard decides whether a hot wallet may make a direct call, and keeps the per-identity
// cooldown and gas-tank bookkeeping. It is the only writer of that bookkeeping.
package guard

import (
	"context"
	"errors"
	"strconv"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/smartwallet/policy"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
)

// ChargePolicy says what happens to an authorized charge when the forwarded call then fails.
type ChargePolicy int

const (
	// ChargeOnAuthorize keeps the charge, like a gas fee.
	ChargeOnAuthorize ChargePolicy = iota
	// RefundOnDownstreamFailure gives the amount back. The cooldown still applies.
	RefundOnDownstreamFailure
)

func (p ChargePolicy) String() string {
	switch p {
	case RefundOnDownstreamFailure:
		return "refund_on_downstream_failure"
	default:
		return "charge_on_authorize"
	}
}

func ParseChargePolicy(s string) (ChargePolicy, error) {
	switch s {
	case "", "charge_on_authorize":
		return ChargeOnAuthorize, nil
	case "refund_on_downstream_failure":
		return RefundOnDownstreamFailure, nil
	}
	return ChargeOnAuthorize, errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "unknown charge policy %q", s)
}

// PolicyReader is the read side of the policy store the guard depends on.
type PolicyReader interface {
	HotWallet(ctx context.Context, identity string) (policy.HotWallet, error)
	IsWhitelisted(ctx context.Context, address string) (bool, error)
}

// State is the runtime bookkeeping of one hot wallet.
type State struct {
	LastUsedAt     uint64    `json:"last_used_at"`
	GasTankBalance math.Uint `json:"gas_tank_balance"`
	Revision       uint64    `json:"revision"`
	Used           bool      `json:"used"`
}

type Request struct {
	Identity string
	Kind     policy.MessageKind
	Target   string
	// Amount is the spend in the wallet's gas denom.
	Amount math.Uint
	// ForeignFunds are attached coins in any other denom. Hot wallets have no budget for them.
	ForeignFunds sdk.Coins
	Now          uint64
}

type Decision struct {
	Allowed bool
	Reason  error
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason error) Decision { return Decision{Reason: reason} }

type Guard struct {
	policies PolicyReader
	kv       state.KVStore
	sink     events.Sink
	logger   logger.Logger
	charge   ChargePolicy

	locks sync.Map
}

func New(policies PolicyReader, kv state.KVStore, sink events.Sink, l logger.Logger, charge ChargePolicy) *Guard {
	if sink == nil {
		sink = events.Nop{}
	}
	return &Guard{policies: policies, kv: kv, sink: sink, logger: l, charge: charge}
}

func (g *Guard) ChargePolicy() ChargePolicy {
	return g.charge
}

// Authorize evaluates req and, when allowed, records the use and the charge before returning.
// A denial leaves every record untouched. The returned error is reserved for storage failures.
func (g *Guard) Authorize(ctx context.Context, req Request) (Decision, error) {
	unlock := g.lock(req.Identity)
	defer unlock()

	decision, hw, st, err := g.evaluate(ctx, req)
	if err != nil || !decision.Allowed {
		return decision, err
	}

	st.LastUsedAt = req.Now
	st.GasTankBalance = st.GasTankBalance.Add(amountOf(req))
	st.Revision = hw.Revision
	st.Used = true
	if err := state.SetJSON(ctx, g.kv, state.PKGuard+req.Identity, st); err != nil {
		return Decision{}, err
	}
	g.emit(ctx, events.New(events.TypeGuard, "charge", req.Identity, events.HeightFrom(ctx)).
		With("kind", req.Kind.String()).
		With("target", req.Target).
		With("amount", amountOf(req).String()).
		With("gas_tank_balance", st.GasTankBalance.String()).
		With("last_used_at", strconv.FormatUint(st.LastUsedAt, 10)))
	return decision, nil
}

// Check runs the same evaluation as Authorize without recording anything.
func (g *Guard) Check(ctx context.Context, req Request) (Decision, error) {
	unlock := g.lock(req.Identity)
	defer unlock()

	decision, _, _, err := g.evaluate(ctx, req)
	return decision, err
}

// Release returns amount to identity's gas tank, never going below zero.
func (g *Guard) Release(ctx context.Context, identity string, amount math.Uint) error {
	unlock := g.lock(identity)
	defer unlock()

	hw, err := g.policies.HotWallet(ctx, identity)
	if err != nil {
		return err
	}
	st, err := g.load(ctx, identity, hw)
	if err != nil {
		return err
	}
	if amount.IsNil() || amount.IsZero() {
		return nil
	}
	if st.GasTankBalance.LT(amount) {
		st.GasTankBalance = math.ZeroUint()
	} else {
		st.GasTankBalance = st.GasTankBalance.Sub(amount)
	}
	if err := state.SetJSON(ctx, g.kv, state.PKGuard+identity, st); err != nil {
		return err
	}
	g.emit(ctx, events.New(events.TypeGuard, "release", identity, events.HeightFrom(ctx)).
		With("amount", amount.String()).
		With("gas_tank_balance", st.GasTankBalance.String()))
	return nil
}

// StateOf returns the effective bookkeeping of identity under its current policy.
func (g *Guard) StateOf(ctx context.Context, identity string) (State, error) {
	hw, err := g.policies.HotWallet(ctx, identity)
	if err != nil {
		return State{}, err
	}
	return g.load(ctx, identity, hw)
}

func (g *Guard) evaluate(ctx context.Context, req Request) (Decision, policy.HotWallet, State, error) {
	hw, err := g.policies.HotWallet(ctx, req.Identity)
	if errors.Is(err, walleterrors.ErrNotFound) {
		return deny(errorsmod.Wrapf(walleterrors.ErrUnknownWallet, "%s", req.Identity)), hw, State{}, nil
	}
	if err != nil {
		return Decision{}, hw, State{}, err
	}

	whitelisted, err := g.policies.IsWhitelisted(ctx, req.Target)
	if err != nil {
		return Decision{}, hw, State{}, err
	}
	if !whitelisted {
		return deny(errorsmod.Wrapf(walleterrors.ErrUnwhitelistedContract, "%s", req.Target)), hw, State{}, nil
	}

	if !hw.Allows(req.Kind) {
		return deny(errorsmod.Wrapf(walleterrors.ErrUnwhitelistedMessage, "%s may not send %s", req.Identity, req.Kind)), hw, State{}, nil
	}

	st, err := g.load(ctx, req.Identity, hw)
	if err != nil {
		return Decision{}, hw, State{}, err
	}
	if st.Used {
		if req.Now < st.LastUsedAt {
			return deny(errorsmod.Wrapf(walleterrors.ErrCooldownActive, "now %d is before last use %d", req.Now, st.LastUsedAt)), hw, st, nil
		}
		if req.Now-st.LastUsedAt < hw.GasCooldown {
			return deny(errorsmod.Wrapf(walleterrors.ErrCooldownActive, "next call allowed at %d", st.LastUsedAt+hw.GasCooldown)), hw, st, nil
		}
	}

	if !req.ForeignFunds.IsZero() {
		return deny(errorsmod.Wrapf(walleterrors.ErrBudgetExceeded, "no budget for %s", req.ForeignFunds)), hw, st, nil
	}
	amount := amountOf(req)
	remaining := math.ZeroUint()
	if st.GasTankBalance.LT(hw.GasTankMax) {
		remaining = hw.GasTankMax.Sub(st.GasTankBalance)
	}
	if amount.GT(remaining) {
		return deny(errorsmod.Wrapf(walleterrors.ErrBudgetExceeded, "amount %s exceeds remaining %s of %s", amount, remaining, hw.GasTankMax)), hw, st, nil
	}
	return allow(), hw, st, nil
}

// load reads identity's bookkeeping. A policy revision newer than the recorded one means the
// policy was replaced: the tank is replenished, the cooldown clock is kept.
func (g *Guard) load(ctx context.Context, identity string, hw policy.HotWallet) (State, error) {
	var st State
	err := state.GetJSON(ctx, g.kv, state.PKGuard+identity, &st)
	switch {
	case errors.Is(err, state.ErrKeyNotFound):
		st = State{Revision: hw.Revision}
	case err != nil:
		return State{}, err
	}
	if st.GasTankBalance.IsNil() {
		st.GasTankBalance = math.ZeroUint()
	}
	if st.Revision != hw.Revision {
		st.GasTankBalance = math.ZeroUint()
		st.Revision = hw.Revision
	}
	return st, nil
}

func (g *Guard) lock(identity string) func() {
	v, _ := g.locks.LoadOrStore(identity, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (g *Guard) emit(ctx context.Context, event events.Event) {
	if err := g.sink.Emit(ctx, event); err != nil {
		g.logger.Error("failed to emit guard event", logger.WithField("identity", event.Caller), logger.WithField("err", err))
	}
}

func amountOf(req Request) math.Uint {
	if req.Amount.IsNil() {
		return math.ZeroUint()
	}
	return req.Amount
}
