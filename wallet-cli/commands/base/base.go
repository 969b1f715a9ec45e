// Package base builds the pieces every command shares from the loaded configuration.
package base

import (
	"encoding/json"
	"fmt"

	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Terrorbear/anchor-guardian/wallet-api/chainio/io"
	"github.com/Terrorbear/anchor-guardian/wallet-api/chainio/types"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
	rpccalls "github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/rpc_calls"
	"github.com/Terrorbear/anchor-guardian/wallet-api/metrics/indicators/txpipeline"
	"github.com/Terrorbear/anchor-guardian/wallet-api/utils"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/conf"
)

const serviceName = "smartwallet-cli"

func Logger() logger.Logger {
	var l logger.Logger
	if conf.C.LogFormat == "elk" {
		elk, err := logger.NewELKLogger(serviceName, conf.C.ElkAddress)
		if err != nil {
			panic(err)
		}
		l = elk
	} else {
		l = logger.NewZapLogger(serviceName)
	}
	l.SetLogLevel(conf.C.LogLevel)
	return l
}

// ChainIO connects to the configured node. With a non-nil reg the transaction pipeline reports
// into it.
func ChainIO(l logger.Logger, reg prometheus.Registerer) io.ChainIO {
	var opts []io.Option
	if reg != nil {
		opts = append(opts, io.WithTxIndicators(txpipeline.NewPromIndicators(reg, "cli")))
	}
	chainIO, err := io.NewChainIO(conf.C.Chain.ID, conf.C.Chain.RPC, conf.C.Account.KeyDir, conf.C.Account.Bech32Prefix,
		types.DefaultTxManagerParams(), l, opts...)
	if err != nil {
		panic(err)
	}
	return chainIO
}

// Signer returns chainIO bound to keyName in the configured keyring.
func Signer(chainIO io.ChainIO, keyName string) io.ChainIO {
	signed, err := chainIO.SetupKeyring(keyName, conf.C.Account.KeyringBackend)
	if err != nil {
		panic(err)
	}
	return signed
}

// Host wraps chainIO in the wallet host adapter with the configured fees and rate limit.
func Host(chainIO io.ChainIO, reg prometheus.Registerer) *io.Host {
	gas := types.GasParams{GasAdjustment: conf.C.Chain.GasAdjustment, Simulate: true}
	if conf.C.Chain.GasPrice != "" {
		price, err := sdktypes.ParseDecCoin(conf.C.Chain.GasPrice)
		if err != nil {
			panic(fmt.Sprintf("invalid gas price %q: %s", conf.C.Chain.GasPrice, err))
		}
		gas.GasPrice = price
	}
	var opts []io.HostOption
	if conf.C.Chain.RateLimit > 0 {
		burst := conf.C.Chain.Burst
		if burst <= 0 {
			burst = 1
		}
		opts = append(opts, io.WithRateLimit(conf.C.Chain.RateLimit, burst))
	}
	if reg != nil {
		opts = append(opts, io.WithRPCIndicators(rpccalls.NewPromIndicators(serviceName, reg)))
	}
	return io.NewHost(chainIO, gas, opts...)
}

// Wallet is the configured wallet address.
func Wallet() string {
	if conf.C.Contract.Wallet == "" {
		panic(utils.WrapError(utils.ErrEmptyAddress, "contract.wallet is not configured"))
	}
	return conf.C.Contract.Wallet
}

// PrintJSON writes v indented to stdout.
func PrintJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(out))
}
