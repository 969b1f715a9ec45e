package io

import (
	"context"
	"errors"
	"time"

	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"golang.org/x/time/rate"

	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/wallet-api/chainio/types"
)

// RPCIndicators is the rpc_calls metric set.
type RPCIndicators interface {
	AddRPCRequestTotal(method, target string)
	ObserveRPCRequestDurationSeconds(duration float64, method, target string)
}

type nopRPCIndicators struct{}

func (nopRPCIndicators) AddRPCRequestTotal(string, string)                        {}
func (nopRPCIndicators) ObserveRPCRequestDurationSeconds(float64, string, string) {}

// Host adapts a ChainIO to host.Host so the wallet tooling can drive a real chain the same way
// it drives the in-process ledger. Submits are rate limited.
type Host struct {
	chain      ChainIO
	gas        types.GasParams
	limiter    *rate.Limiter
	indicators RPCIndicators
}

var (
	_ host.Host         = (*Host)(nil)
	_ host.Instantiator = (*Host)(nil)
)

type HostOption func(*Host)

// WithRateLimit allows perSecond submits with the given burst.
func WithRateLimit(perSecond float64, burst int) HostOption {
	return func(h *Host) { h.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func WithRPCIndicators(indicators RPCIndicators) HostOption {
	return func(h *Host) { h.indicators = indicators }
}

func NewHost(chain ChainIO, gas types.GasParams, opts ...HostOption) *Host {
	h := &Host{
		chain:      chain,
		gas:        gas,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		indicators: nopRPCIndicators{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) Submit(ctx context.Context, target string, payload []byte, funds sdktypes.Coins) (*host.TxResult, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	defer h.observe("submit", target, time.Now())
	res, err := h.chain.SendTransaction(ctx, types.ExecuteOptions{
		ContractAddr:  target,
		ExecuteMsg:    payload,
		Funds:         funds.String(),
		GasAdjustment: h.gas.GasAdjustment,
		GasPrice:      h.gas.GasPrice,
		Gas:           h.gas.Gas,
		Simulate:      h.gas.Simulate,
	})
	if err != nil {
		return nil, err
	}
	return TxResult(res), nil
}

func (h *Host) Query(ctx context.Context, target string, query []byte) ([]byte, error) {
	defer h.observe("query", target, time.Now())
	resp, err := h.chain.QueryContract(ctx, types.QueryOptions{ContractAddr: target, QueryMsg: query})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (h *Host) Instantiate(ctx context.Context, codeID uint64, label string, msg []byte, funds sdktypes.Coins) (string, *host.TxResult, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return "", nil, err
	}
	defer h.observe("instantiate", label, time.Now())
	res, err := h.chain.InstantiateContract(ctx, types.InstantiateOptions{
		CodeID:        codeID,
		Label:         label,
		InitMsg:       msg,
		Funds:         funds.String(),
		GasAdjustment: h.gas.GasAdjustment,
		GasPrice:      h.gas.GasPrice,
		Gas:           h.gas.Gas,
		Simulate:      h.gas.Simulate,
	})
	if err != nil {
		return "", nil, err
	}
	tx := TxResult(res)
	addr, ok := tx.Attribute("instantiate", "_contract_address")
	if !ok {
		return "", tx, errors.New("_contract_address not found")
	}
	return addr, tx, nil
}

func (h *Host) observe(method, target string, start time.Time) {
	h.indicators.AddRPCRequestTotal(method, target)
	h.indicators.ObserveRPCRequestDurationSeconds(time.Since(start).Seconds(), method, target)
}

// TxResult converts a committed transaction to the host result shape.
func TxResult(res *coretypes.ResultTx) *host.TxResult {
	if res == nil {
		return nil
	}
	return &host.TxResult{
		Height: res.Height,
		TxHash: res.Hash.String(),
		Events: res.TxResult.Events,
		Data:   res.TxResult.Data,
	}
}
