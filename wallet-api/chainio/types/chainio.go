package types

import (
	"time"

	sdktypes "github.com/cosmos/cosmos-sdk/types"
)

const DefaultKeyringServiceName = "smartwallet"

type ExecuteOptions struct {
	ContractAddr  string           // ContractAddr: Address of the smart contract
	ExecuteMsg    []byte           // ExecuteMsg: Message to be executed, json encoded
	Funds         string           // Funds: Coins sent along, e.g. "100uusd"
	GasAdjustment float64          // GasAdjustment: Factor applied to the simulated gas
	GasPrice      sdktypes.DecCoin // GasPrice: Gas price, e.g. "0.15uusd"
	Gas           uint64           // Gas: Gas limit of the transaction
	Memo          string           // Memo: Transaction memo
	Simulate      bool             // Simulate: Whether to simulate first and set Gas from the estimate
}

type InstantiateOptions struct {
	CodeID        uint64
	Label         string
	InitMsg       []byte
	Funds         string
	Admin         string
	GasAdjustment float64
	GasPrice      sdktypes.DecCoin
	Gas           uint64
	Simulate      bool
}

type QueryOptions struct {
	ContractAddr string // ContractAddr: Address of the smart contract
	QueryMsg     []byte // QueryMsg: Query message json encoding
}

type TxManagerParams struct {
	MaxRetries             int
	RetryInterval          time.Duration
	ConfirmationTimeout    time.Duration
	GasPriceAdjustmentRate string
}

// GasParams are the fee settings the host adapter applies to every submit.
type GasParams struct {
	GasAdjustment float64
	GasPrice      sdktypes.DecCoin
	Gas           uint64
	Simulate      bool
}

func DefaultTxManagerParams() TxManagerParams {
	return TxManagerParams{
		MaxRetries:             3,
		RetryInterval:          time.Second,
		ConfirmationTimeout:    60 * time.Second,
		GasPriceAdjustmentRate: "1.1",
	}
}
