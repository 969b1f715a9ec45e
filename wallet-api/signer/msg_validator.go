package signer

import (
	"encoding/json"
	"errors"
	"fmt"

	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	sdktypes "github.com/cosmos/cosmos-sdk/types"

	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
)

// MsgValidator defines the interface for message validation
type MsgValidator interface {
	ValidateMsg(msg sdktypes.Msg) error
}

// CommandValidator rejects messages the chain would reject anyway, so no fee is spent on them:
// non-JSON contract messages and wallet execute commands that do not decode as an envelope.
type CommandValidator struct{}

func (v *CommandValidator) ValidateMsg(msg sdktypes.Msg) error {
	switch m := msg.(type) {
	case nil:
		return errors.New("nil message")
	case *wasmtypes.MsgExecuteContract:
		if !json.Valid(m.Msg) {
			return errors.New("invalid JSON in execute message")
		}
		return validateCommand(m.Msg)
	case *wasmtypes.MsgInstantiateContract:
		if !json.Valid(m.Msg) {
			return errors.New("invalid JSON in instantiate message")
		}
	}
	return nil
}

func validateCommand(raw []byte) error {
	var wrapper struct {
		Execute *struct {
			Command json.RawMessage `json:"command"`
		} `json:"execute"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil || wrapper.Execute == nil || wrapper.Execute.Command == nil {
		return nil
	}
	if _, err := envelope.Parse(wrapper.Execute.Command, envelope.DefaultMaxDepth); err != nil {
		return fmt.Errorf("wallet command: %w", err)
	}
	return nil
}
