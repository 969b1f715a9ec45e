package io

import (
	"context"
	"errors"
	"testing"

	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	abci "github.com/cometbft/cometbft/abci/types"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Terrorbear/anchor-guardian/wallet-api/chainio/types"
	rpccalls "github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/rpc_calls"
)

type fakeChain struct {
	ChainIO
	executed     []types.ExecuteOptions
	instantiated []types.InstantiateOptions
	result       *coretypes.ResultTx
	queryData    []byte
	err          error
}

func (f *fakeChain) SendTransaction(_ context.Context, opts types.ExecuteOptions) (*coretypes.ResultTx, error) {
	f.executed = append(f.executed, opts)
	return f.result, f.err
}

func (f *fakeChain) InstantiateContract(_ context.Context, opts types.InstantiateOptions) (*coretypes.ResultTx, error) {
	f.instantiated = append(f.instantiated, opts)
	return f.result, f.err
}

func (f *fakeChain) QueryContract(_ context.Context, opts types.QueryOptions) (*wasmtypes.QuerySmartContractStateResponse, error) {
	return &wasmtypes.QuerySmartContractStateResponse{Data: f.queryData}, f.err
}

func committed(events ...abci.Event) *coretypes.ResultTx {
	return &coretypes.ResultTx{
		Hash:     []byte{0xab, 0xcd},
		Height:   42,
		TxResult: abci.ExecTxResult{Events: events},
	}
}

func TestHostSubmit(t *testing.T) {
	chain := &fakeChain{result: committed(abci.Event{Type: "wasm", Attributes: []abci.EventAttribute{{Key: "proposal_id", Value: "3"}}})}
	gas := types.GasParams{GasAdjustment: 1.3, GasPrice: sdktypes.NewInt64DecCoin("uusd", 1), Gas: 400000}
	reg := prometheus.NewRegistry()
	h := NewHost(chain, gas, WithRPCIndicators(rpccalls.NewPromIndicators("test", reg)), WithRateLimit(100, 1))

	res, err := h.Submit(context.Background(), "terra1wallet", []byte(`{"execute":{}}`), sdktypes.NewCoins(sdktypes.NewInt64Coin("uusd", 5)))
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.Height)
	assert.Equal(t, "ABCD", res.TxHash)
	id, ok := res.Attribute("wasm", "proposal_id")
	assert.True(t, ok)
	assert.Equal(t, "3", id)

	require.Len(t, chain.executed, 1)
	assert.Equal(t, "5uusd", chain.executed[0].Funds)
	assert.Equal(t, uint64(400000), chain.executed[0].Gas)

	count, err := testutil.GatherAndCount(reg, "smartwallet_rpc_request_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHostSubmitError(t *testing.T) {
	chain := &fakeChain{err: errors.New("out of gas")}
	h := NewHost(chain, types.GasParams{})
	_, err := h.Submit(context.Background(), "terra1wallet", []byte(`{}`), nil)
	assert.EqualError(t, err, "out of gas")
}

func TestHostInstantiate(t *testing.T) {
	chain := &fakeChain{result: committed(abci.Event{Type: "instantiate", Attributes: []abci.EventAttribute{
		{Key: "_contract_address", Value: "terra1wallet"},
		{Key: "code_id", Value: "9"},
	}})}
	h := NewHost(chain, types.GasParams{})
	addr, res, err := h.Instantiate(context.Background(), 9, "smart wallet", []byte(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "terra1wallet", addr)
	assert.NotNil(t, res)
	assert.Equal(t, uint64(9), chain.instantiated[0].CodeID)

	chain.result = committed()
	_, _, err = h.Instantiate(context.Background(), 9, "smart wallet", []byte(`{}`), nil)
	assert.Error(t, err)
}

func TestHostQuery(t *testing.T) {
	chain := &fakeChain{queryData: []byte(`{"cw3_address":"terra1cw3"}`)}
	h := NewHost(chain, types.GasParams{})
	out, err := h.Query(context.Background(), "terra1wallet", []byte(`{"config":{}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"cw3_address":"terra1cw3"}`, string(out))
}

func TestHostRateLimitHonoursContext(t *testing.T) {
	chain := &fakeChain{result: committed()}
	h := NewHost(chain, types.GasParams{}, WithRateLimit(0.001, 1))
	_, err := h.Submit(context.Background(), "terra1wallet", []byte(`{}`), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Submit(ctx, "terra1wallet", []byte(`{}`), nil)
	assert.Error(t, err)
	assert.Len(t, chain.executed, 1)
}
