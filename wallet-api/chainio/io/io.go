package io

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"cosmossdk.io/math"
	"github.com/CosmWasm/wasmd/x/wasm"
	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	cryptocodec "github.com/cosmos/cosmos-sdk/crypto/codec"
	"github.com/cosmos/cosmos-sdk/crypto/keyring"
	"github.com/cosmos/cosmos-sdk/std"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	"github.com/cosmos/cosmos-sdk/types/module"
	authtx "github.com/cosmos/cosmos-sdk/x/auth/tx"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	"github.com/Terrorbear/anchor-guardian/wallet-api/chainio/types"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	"github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/txpipeline"
	"github.com/Terrorbear/anchor-guardian/wallet-api/signer"
)

type ChainIO interface {
	// SetupKeyring loads keyName from the keyring and signs with it from then on.
	// keyringBackend is one of os, file or test.
	SetupKeyring(keyName, keyringBackend string, keyringServiceName ...string) (ChainIO, error)
	SendTransaction(ctx context.Context, opts types.ExecuteOptions) (*coretypes.ResultTx, error)
	ExecuteContract(opts types.ExecuteOptions) (*sdktypes.TxResponse, error)
	InstantiateContract(ctx context.Context, opts types.InstantiateOptions) (*coretypes.ResultTx, error)
	BroadcastTx(signedTx sdktypes.Tx) (*sdktypes.TxResponse, error)
	QueryContract(ctx context.Context, opts types.QueryOptions) (*wasmtypes.QuerySmartContractStateResponse, error)
	QueryBalances(ctx context.Context, address string) (sdktypes.Coins, error)
	QueryNodeStatus(ctx context.Context) (*coretypes.ResultStatus, error)
	QueryTransaction(ctx context.Context, txHash string) (*coretypes.ResultTx, error)
	QueryAccount(address string) (client.Account, error)
	GetCurrentAccount() (client.Account, error)
	GetClientCtx() client.Context
	GetSigner() *signer.Signer
}

// TxIndicators receives the progress of every signed transaction.
type TxIndicators interface {
	Track() func()
	Broadcast(elapsed time.Duration, bumps int)
	Confirmed(elapsed time.Duration, gasUsed int64)
	Failed(stage string)
}

type nopTxIndicators struct{}

func (nopTxIndicators) Track() func()                  { return func() {} }
func (nopTxIndicators) Broadcast(time.Duration, int)   {}
func (nopTxIndicators) Confirmed(time.Duration, int64) {}
func (nopTxIndicators) Failed(string)                  {}

var _ TxIndicators = (*txpipeline.PromIndicators)(nil)

type Option func(*chainIO)

func WithTxIndicators(indicators TxIndicators) Option {
	return func(c *chainIO) { c.indicators = indicators }
}

// chainIO chain io Facade
type chainIO struct {
	clientCtx  client.Context
	signer     *signer.Signer
	params     types.TxManagerParams
	logger     logger.Logger
	indicators TxIndicators
	pollEvery  time.Duration
}

func (c chainIO) SetupKeyring(keyName, keyringBackend string, keyringServiceName ...string) (ChainIO, error) {
	serviceName := types.DefaultKeyringServiceName
	if len(keyringServiceName) > 0 {
		serviceName = keyringServiceName[0]
	}
	kr, err := newKeyringFromBackend(c.clientCtx, keyringBackend, serviceName)
	if err != nil {
		return &c, err
	}
	c.clientCtx = c.clientCtx.WithKeyring(kr)

	keyInfo, err := kr.Key(keyName)
	if err != nil {
		return &c, err
	}
	accAddress, err := keyInfo.GetAddress()
	if err != nil {
		return &c, err
	}

	c.clientCtx = c.clientCtx.WithFromAddress(accAddress).WithFromName(keyName)
	c.signer = signer.NewSigner(c.clientCtx)
	return c, nil
}

// SendTransaction executes a contract message, bumping the gas price on each retry, and waits
// until the transaction is committed.
func (c chainIO) SendTransaction(ctx context.Context, opts types.ExecuteOptions) (*coretypes.ResultTx, error) {
	defer c.indicators.Track()()

	bumps := 0
	var (
		txResp *sdktypes.TxResponse
		err    error
	)
	start := time.Now()
	for attempt := 0; attempt < c.params.MaxRetries; attempt++ {
		txResp, err = c.ExecuteContract(opts)
		if err == nil {
			break
		}
		c.logger.Warn("failed to send transaction",
			logger.WithField("attempt", attempt+1),
			logger.WithField("contract", opts.ContractAddr),
			logger.WithField("err", err))
		if attempt == c.params.MaxRetries-1 {
			c.indicators.Failed(txpipeline.StageBroadcast)
			return nil, fmt.Errorf("max retries exceeded: %w", err)
		}
		opts.GasPrice = sdktypes.NewDecCoinFromDec(opts.GasPrice.Denom, opts.GasPrice.Amount.Mul(math.LegacyMustNewDecFromStr(c.params.GasPriceAdjustmentRate)))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.params.RetryInterval):
		}
		bumps++
	}
	if txResp == nil {
		c.indicators.Failed(txpipeline.StageBroadcast)
		return nil, fmt.Errorf("failed to send transaction after %d attempts", c.params.MaxRetries)
	}
	c.indicators.Broadcast(time.Since(start), bumps)

	return c.confirm(ctx, txResp.TxHash)
}

func (c chainIO) ExecuteContract(opts types.ExecuteOptions) (*sdktypes.TxResponse, error) {
	amount, err := sdktypes.ParseCoinsNormalized(opts.Funds)
	if err != nil {
		return nil, err
	}
	contractMsg := &wasmtypes.MsgExecuteContract{
		Sender:   c.clientCtx.GetFromAddress().String(),
		Contract: opts.ContractAddr,
		Msg:      opts.ExecuteMsg,
		Funds:    amount,
	}
	signedTx, err := c.signer.Sign(signer.TxParams{
		GasAdjustment: opts.GasAdjustment,
		GasPrice:      opts.GasPrice,
		MaxGas:        opts.Gas,
		Memo:          opts.Memo,
		Simulate:      opts.Simulate,
	}, contractMsg)
	if err != nil {
		return nil, err
	}
	return c.BroadcastTx(signedTx)
}

func (c chainIO) InstantiateContract(ctx context.Context, opts types.InstantiateOptions) (*coretypes.ResultTx, error) {
	amount, err := sdktypes.ParseCoinsNormalized(opts.Funds)
	if err != nil {
		return nil, err
	}
	msg := &wasmtypes.MsgInstantiateContract{
		Sender: c.clientCtx.GetFromAddress().String(),
		Admin:  opts.Admin,
		CodeID: opts.CodeID,
		Label:  opts.Label,
		Msg:    opts.InitMsg,
		Funds:  amount,
	}
	signedTx, err := c.signer.Sign(signer.TxParams{
		GasAdjustment: opts.GasAdjustment,
		GasPrice:      opts.GasPrice,
		MaxGas:        opts.Gas,
		Simulate:      opts.Simulate,
	}, msg)
	if err != nil {
		return nil, err
	}
	resp, err := c.BroadcastTx(signedTx)
	if err != nil {
		return nil, err
	}
	return c.confirm(ctx, resp.TxHash)
}

func (c chainIO) BroadcastTx(signedTx sdktypes.Tx) (*sdktypes.TxResponse, error) {
	txBytes, err := c.clientCtx.TxConfig.TxEncoder()(signedTx)
	if err != nil {
		return nil, err
	}
	resp, err := c.clientCtx.BroadcastTx(txBytes)
	if err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("broadcast rejected with code %d: %s", resp.Code, resp.RawLog)
	}
	return resp, nil
}

func (c chainIO) confirm(ctx context.Context, txHash string) (*coretypes.ResultTx, error) {
	start := time.Now()
	res, err := c.waitForConfirmation(ctx, txHash)
	if err != nil {
		c.indicators.Failed(txpipeline.StageConfirm)
		return nil, err
	}
	c.indicators.Confirmed(time.Since(start), res.TxResult.GasUsed)
	return res, nil
}

func (c chainIO) waitForConfirmation(ctx context.Context, txHash string) (*coretypes.ResultTx, error) {
	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	timeout := time.After(c.params.ConfirmationTimeout)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout:
			return nil, fmt.Errorf("transaction %s confirmation timed out", txHash)
		case <-ticker.C:
			txResp, err := c.QueryTransaction(ctx, txHash)
			if err != nil {
				c.logger.Debug("transaction not found yet", logger.WithField("txHash", txHash), logger.WithField("err", err))
				continue
			}
			if txResp.TxResult.Code != 0 {
				return nil, fmt.Errorf("transaction failed with code %d: %s", txResp.TxResult.Code, txResp.TxResult.Log)
			}
			return txResp, nil
		}
	}
}

func (c chainIO) QueryContract(ctx context.Context, opts types.QueryOptions) (*wasmtypes.QuerySmartContractStateResponse, error) {
	queryClient := wasmtypes.NewQueryClient(c.clientCtx)
	return queryClient.SmartContractState(ctx, &wasmtypes.QuerySmartContractStateRequest{
		Address:   opts.ContractAddr,
		QueryData: opts.QueryMsg,
	})
}

func (c chainIO) QueryBalances(ctx context.Context, address string) (sdktypes.Coins, error) {
	queryClient := banktypes.NewQueryClient(c.clientCtx)
	resp, err := queryClient.AllBalances(ctx, &banktypes.QueryAllBalancesRequest{Address: address})
	if err != nil {
		return nil, err
	}
	return resp.Balances, nil
}

func (c chainIO) QueryNodeStatus(ctx context.Context) (*coretypes.ResultStatus, error) {
	return c.clientCtx.Client.Status(ctx)
}

func (c chainIO) QueryTransaction(ctx context.Context, txHash string) (*coretypes.ResultTx, error) {
	hashBytes, err := hex.DecodeString(txHash)
	if err != nil {
		return nil, err
	}
	return c.clientCtx.Client.Tx(ctx, hashBytes, false)
}

func (c chainIO) QueryAccount(address string) (client.Account, error) {
	addr, err := sdktypes.AccAddressFromBech32(address)
	if err != nil {
		return nil, err
	}
	return c.clientCtx.AccountRetriever.GetAccount(c.clientCtx, addr)
}

func (c chainIO) GetCurrentAccount() (client.Account, error) {
	return c.clientCtx.AccountRetriever.GetAccount(c.clientCtx, c.clientCtx.GetFromAddress())
}

func (c chainIO) GetClientCtx() client.Context {
	return c.clientCtx
}

func (c chainIO) GetSigner() *signer.Signer {
	return c.signer
}

func NewChainIO(chainID, rpcURI, homeDir, bech32Prefix string, params types.TxManagerParams, l logger.Logger, opts ...Option) (ChainIO, error) {
	if err := setAddressPrefixes(bech32Prefix); err != nil {
		return nil, fmt.Errorf("failed to set address prefixes: %w", err)
	}
	interfaceRegistry, marshaler, legacyAmino := initCodec()
	clientCtx := initClientContext(chainID, interfaceRegistry, marshaler, legacyAmino)

	rpcClient, err := client.NewClientFromNode(rpcURI)
	if err != nil {
		return nil, err
	}
	clientCtx = clientCtx.WithClient(rpcClient)

	if homeDir != "" {
		clientCtx = clientCtx.WithHomeDir(homeDir).WithKeyringDir(homeDir)
	}
	c := chainIO{
		clientCtx:  clientCtx,
		signer:     signer.NewSigner(clientCtx),
		params:     params,
		logger:     l,
		indicators: nopTxIndicators{},
		pollEvery:  3 * time.Second,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}

func setAddressPrefixes(bech32Prefix string) error {
	if bech32Prefix == "" {
		return fmt.Errorf("bech32 prefix is required")
	}
	config := sdktypes.GetConfig()
	config.SetBech32PrefixForAccount(bech32Prefix, bech32Prefix+"pub")
	config.SetBech32PrefixForValidator(bech32Prefix+"valoper", bech32Prefix+"valoperpub")
	config.SetBech32PrefixForConsensusNode(bech32Prefix+"valcons", bech32Prefix+"valconspub")

	config.SetAddressVerifier(func(bytes []byte) error {
		if len(bytes) == 0 {
			return fmt.Errorf("addresses cannot be empty")
		}
		if len(bytes) > address.MaxAddrLen {
			return fmt.Errorf("address max length is %d, got %d, %x", address.MaxAddrLen, len(bytes), bytes)
		}
		// accounts are 20 bytes, contracts 32
		if len(bytes) != 20 && len(bytes) != 32 {
			return fmt.Errorf("address length must be 20 or 32 bytes, got %d, %x", len(bytes), bytes)
		}
		return nil
	})
	return nil
}

func initCodec() (codectypes.InterfaceRegistry, codec.Codec, *codec.LegacyAmino) {
	interfaceRegistry := codectypes.NewInterfaceRegistry()
	authtypes.RegisterInterfaces(interfaceRegistry)
	banktypes.RegisterInterfaces(interfaceRegistry)
	cryptocodec.RegisterInterfaces(interfaceRegistry)
	std.RegisterInterfaces(interfaceRegistry)

	marshaler := codec.NewProtoCodec(interfaceRegistry)

	legacyAmino := codec.NewLegacyAmino()
	std.RegisterLegacyAminoCodec(legacyAmino)
	module.NewBasicManager(wasm.AppModuleBasic{}).RegisterInterfaces(interfaceRegistry)

	return interfaceRegistry, marshaler, legacyAmino
}

func initClientContext(chainID string, interfaceRegistry codectypes.InterfaceRegistry, marshaler codec.Codec, legacyAmino *codec.LegacyAmino) client.Context {
	txConfig := authtx.NewTxConfig(marshaler, authtx.DefaultSignModes)
	return client.Context{}.
		WithChainID(chainID).
		WithOutputFormat("json").
		WithInterfaceRegistry(interfaceRegistry).
		WithTxConfig(txConfig).
		WithCodec(marshaler).
		WithLegacyAmino(legacyAmino).
		WithAccountRetriever(authtypes.AccountRetriever{}).
		WithBroadcastMode(flags.BroadcastSync)
}

func newKeyringFromBackend(ctx client.Context, backend, keyringServiceName string) (keyring.Keyring, error) {
	if ctx.Simulate {
		backend = keyring.BackendMemory
	}
	if len(keyringServiceName) == 0 {
		keyringServiceName = types.DefaultKeyringServiceName
	}
	return keyring.New(keyringServiceName, backend, ctx.KeyringDir, ctx.Input, ctx.Codec, ctx.KeyringOptions...)
}
