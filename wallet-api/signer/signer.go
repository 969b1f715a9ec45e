// Package signer builds and signs wasm transactions with the keyring of a cosmos client context.
package signer

import (
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/tx"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"
)

// TxParams are the fee and memo settings of one transaction.
type TxParams struct {
	GasAdjustment float64
	GasPrice      sdktypes.DecCoin
	// MaxGas is the gas limit. With Simulate set it caps the simulated estimate instead.
	MaxGas   uint64
	Memo     string
	Simulate bool
}

type Signer struct {
	ClientCtx  client.Context
	validators []MsgValidator
}

// NewSigner validates wallet commands before signing. Extra validators run after it.
func NewSigner(clientCtx client.Context, extra ...MsgValidator) *Signer {
	return &Signer{
		ClientCtx:  clientCtx,
		validators: append([]MsgValidator{&CommandValidator{}}, extra...),
	}
}

// Sign validates msgs, prepares the account sequence and returns the signed transaction.
func (s *Signer) Sign(params TxParams, msgs ...sdktypes.Msg) (sdktypes.Tx, error) {
	if err := s.Validate(msgs...); err != nil {
		return nil, err
	}
	txf, err := s.factory(params).Prepare(s.ClientCtx)
	if err != nil {
		return nil, err
	}
	if params.Simulate {
		_, estimate, err := tx.CalculateGas(s.ClientCtx, txf, msgs...)
		if err != nil {
			return nil, err
		}
		if params.MaxGas > 0 {
			estimate = min(estimate, params.MaxGas)
		}
		txf = txf.WithGas(estimate)
	}

	builder, err := txf.BuildUnsignedTx(msgs...)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(s.ClientCtx.CmdContext, txf, s.ClientCtx.GetFromName(), builder, true); err != nil {
		return nil, err
	}
	return builder.GetTx(), nil
}

// Validate runs every validator over every message and stops at the first rejection.
func (s *Signer) Validate(msgs ...sdktypes.Msg) error {
	for _, msg := range msgs {
		for _, v := range s.validators {
			if err := v.ValidateMsg(msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Signer) factory(params TxParams) tx.Factory {
	return tx.Factory{}.
		WithChainID(s.ClientCtx.ChainID).
		WithKeybase(s.ClientCtx.Keyring).
		WithTxConfig(s.ClientCtx.TxConfig).
		WithAccountRetriever(s.ClientCtx.AccountRetriever).
		WithSignMode(signing.SignMode_SIGN_MODE_DIRECT).
		WithGas(params.MaxGas).
		WithGasAdjustment(params.GasAdjustment).
		WithGasPrices(params.GasPrice.String()).
		WithFromName(s.ClientCtx.FromName).
		WithMemo(params.Memo)
}
