// Package dispatch routes an inbound command by caller: the owner and the governing multisig are
// forwarded directly, hot wallets go through the guard, everyone else is rejected.
package dispatch

import (
	"context"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/shopspring/decimal"

	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/smartwallet/guard"
	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/smartwallet/policy"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	walletindicators "github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/wallet"
)

type Role int

const (
	RoleUnknown Role = iota
	RoleOwner
	RoleMultisig
	RoleHotWallet
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleMultisig:
		return "multisig"
	case RoleHotWallet:
		return "hot_wallet"
	default:
		return "unknown"
	}
}

type State int

const (
	StateIdle State = iota
	StateClassifying
	StateDirectForward
	StateGuardedForward
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateClassifying:
		return "classifying"
	case StateDirectForward:
		return "direct_forward"
	case StateGuardedForward:
		return "guarded_forward"
	case StateRejected:
		return "rejected"
	default:
		return "idle"
	}
}

// Result is the terminal state of one dispatch. Err is the rejection reason or the downstream
// failure; Tx may be set even when the forwarded call failed part way.
type Result struct {
	State State
	Role  Role
	Kind  policy.MessageKind
	Tx    *host.TxResult
	Err   error
}

type PolicyReader interface {
	Settings(ctx context.Context) (policy.WalletConfig, error)
	IsHotWallet(ctx context.Context, identity string) (bool, error)
}

type Authorizer interface {
	Authorize(ctx context.Context, req guard.Request) (guard.Decision, error)
	Check(ctx context.Context, req guard.Request) (guard.Decision, error)
	Release(ctx context.Context, identity string, amount math.Uint) error
	ChargePolicy() guard.ChargePolicy
}

type Engine struct {
	policies   PolicyReader
	guard      Authorizer
	host       host.Host
	sink       events.Sink
	logger     logger.Logger
	indicators walletindicators.Indicators
}

type Option func(*Engine)

func WithSink(sink events.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

func WithIndicators(indicators walletindicators.Indicators) Option {
	return func(e *Engine) { e.indicators = indicators }
}

func NewEngine(policies PolicyReader, authorizer Authorizer, h host.Host, l logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		policies:   policies,
		guard:      authorizer,
		host:       h,
		sink:       events.Nop{},
		logger:     l,
		indicators: walletindicators.NopIndicators{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatch runs one inbound command to a terminal state. The returned error is Result.Err, or a
// storage failure that prevented a decision.
func (e *Engine) Dispatch(ctx context.Context, caller string, env envelope.Envelope, now uint64) (*Result, error) {
	start := time.Now()
	defer func() { e.indicators.ObserveDispatchSeconds(time.Since(start).Seconds()) }()

	res := &Result{State: StateClassifying, Kind: policy.KindUnknown}
	cfg, err := e.policies.Settings(ctx)
	if err != nil {
		return res, err
	}
	res.Role, err = e.classify(ctx, cfg, caller)
	if err != nil {
		return res, err
	}
	if res.Role == RoleUnknown {
		return e.reject(ctx, caller, env, res, errorsmod.Wrapf(walleterrors.ErrUnauthorized, "%s may not execute through this wallet", caller))
	}

	kind, err := validate(env)
	if err != nil {
		return e.reject(ctx, caller, env, res, err)
	}
	res.Kind = policy.KindFromName(kind)

	if res.Role != RoleHotWallet {
		res.State = StateDirectForward
		return e.forward(ctx, caller, env, res, math.ZeroUint())
	}

	req := guardRequest(caller, res.Kind, env, cfg.GasDenom, now)
	decision, err := e.guard.Authorize(ctx, req)
	if err != nil {
		return res, err
	}
	if !decision.Allowed {
		e.indicators.IncGuardDenial(walleterrors.Reason(decision.Reason))
		return e.reject(ctx, caller, env, res, decision.Reason)
	}
	e.indicators.AddBudgetCharged(caller, decimal.NewFromBigInt(req.Amount.BigInt(), 0).InexactFloat64())
	res.State = StateGuardedForward
	return e.forward(ctx, caller, env, res, req.Amount)
}

// CanExecute reports what Dispatch would decide for caller without forwarding or charging.
func (e *Engine) CanExecute(ctx context.Context, caller string, env envelope.Envelope, now uint64) (Role, error) {
	cfg, err := e.policies.Settings(ctx)
	if err != nil {
		return RoleUnknown, err
	}
	role, err := e.classify(ctx, cfg, caller)
	if err != nil {
		return role, err
	}
	if role == RoleUnknown {
		return role, errorsmod.Wrapf(walleterrors.ErrUnauthorized, "%s may not execute through this wallet", caller)
	}
	kind, err := validate(env)
	if err != nil {
		return role, err
	}
	if role != RoleHotWallet {
		return role, nil
	}
	decision, err := e.guard.Check(ctx, guardRequest(caller, policy.KindFromName(kind), env, cfg.GasDenom, now))
	if err != nil {
		return role, err
	}
	return role, decision.Reason
}

func (e *Engine) classify(ctx context.Context, cfg policy.WalletConfig, caller string) (Role, error) {
	switch {
	case caller == "":
		return RoleUnknown, nil
	case caller == cfg.Owner:
		return RoleOwner, nil
	case caller == cfg.GoverningMultisig:
		return RoleMultisig, nil
	}
	hot, err := e.policies.IsHotWallet(ctx, caller)
	if err != nil {
		return RoleUnknown, err
	}
	if hot {
		return RoleHotWallet, nil
	}
	return RoleUnknown, nil
}

func (e *Engine) forward(ctx context.Context, caller string, env envelope.Envelope, res *Result, charged math.Uint) (*Result, error) {
	tx, err := e.host.Submit(ctx, env.Target, env.Payload, env.Funds)
	res.Tx = tx
	if err != nil {
		res.Err = walleterrors.Downstream(env.Target, err)
		if res.Role == RoleHotWallet && e.guard.ChargePolicy() == guard.RefundOnDownstreamFailure {
			if rerr := e.guard.Release(ctx, caller, charged); rerr != nil {
				e.logger.Error("failed to refund gas tank", logger.WithField("hotWallet", caller), logger.WithField("err", rerr))
			}
		}
		e.indicators.IncDispatch(res.Role.String(), "downstream_failure")
		e.logger.Warn("forwarded call failed",
			logger.WithField("caller", caller),
			logger.WithField("target", env.Target),
			logger.WithField("err", err))
		e.emit(ctx, caller, env, res, "forward_failed")
		return res, res.Err
	}
	e.indicators.IncDispatch(res.Role.String(), "forwarded")
	e.logger.Debug("forwarded",
		logger.WithField("caller", caller),
		logger.WithField("role", res.Role.String()),
		logger.WithField("target", env.Target),
		logger.WithField("kind", res.Kind.String()))
	e.emit(ctx, caller, env, res, "forward")
	return res, nil
}

func (e *Engine) reject(ctx context.Context, caller string, env envelope.Envelope, res *Result, reason error) (*Result, error) {
	res.State = StateRejected
	res.Err = reason
	e.indicators.IncDispatch(res.Role.String(), "rejected")
	e.logger.Info("dispatch rejected",
		logger.WithField("caller", caller),
		logger.WithField("target", env.Target),
		logger.WithField("reason", walleterrors.Reason(reason)))
	e.emit(ctx, caller, env, res, "reject")
	return res, reason
}

func (e *Engine) emit(ctx context.Context, caller string, env envelope.Envelope, res *Result, action string) {
	event := events.New(events.TypeDispatch, action, caller, events.HeightFrom(ctx)).
		With("role", res.Role.String()).
		With("state", res.State.String()).
		With("target", env.Target).
		With("kind", res.Kind.String())
	if res.Err != nil {
		event = event.With("reason", walleterrors.Reason(res.Err)).With("error", res.Err.Error())
	}
	if err := e.sink.Emit(ctx, event); err != nil {
		e.logger.Error("failed to emit dispatch event", logger.WithField("err", err))
	}
}

// validate checks the envelope can be put on the wire and returns the payload discriminant.
func validate(env envelope.Envelope) (string, error) {
	if _, err := env.Marshal(); err != nil {
		return "", err
	}
	return envelope.Discriminant(env.Payload)
}

func guardRequest(caller string, kind policy.MessageKind, env envelope.Envelope, gasDenom string, now uint64) guard.Request {
	amount := env.Funds.AmountOf(gasDenom)
	var foreign sdk.Coins
	for _, c := range env.Funds {
		if c.Denom != gasDenom {
			foreign = append(foreign, c)
		}
	}
	return guard.Request{
		Identity:     caller,
		Kind:         kind,
		Target:       env.Target,
		Amount:       math.NewUintFromBigInt(amount.BigInt()),
		ForeignFunds: foreign,
		Now:          now,
	}
}
