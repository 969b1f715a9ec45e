package signer

import (
	"errors"
	"testing"

	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	"github.com/cosmos/cosmos-sdk/client"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"

	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
)

func TestCommandValidator(t *testing.T) {
	v := &CommandValidator{}
	cmd, err := envelope.Envelope{Target: "terra1market", Payload: []byte(`{"borrow_stable":{}}`)}.Marshal()
	assert.NoError(t, err)

	assert.Error(t, v.ValidateMsg(nil))
	assert.Error(t, v.ValidateMsg(&wasmtypes.MsgExecuteContract{Msg: []byte(`{not json`)}))
	assert.NoError(t, v.ValidateMsg(&wasmtypes.MsgExecuteContract{Msg: []byte(`{"rm_hot":{"address":"terra1farmer"}}`)}))
	assert.NoError(t, v.ValidateMsg(&wasmtypes.MsgExecuteContract{Msg: append(append([]byte(`{"execute":{"command":`), cmd...), []byte(`}}`)...)}))

	err = v.ValidateMsg(&wasmtypes.MsgExecuteContract{Msg: []byte(`{"execute":{"command":{"wasm":{}}}}`)})
	assert.ErrorIs(t, err, walleterrors.ErrMalformedEnvelope)
	assert.Error(t, v.ValidateMsg(&wasmtypes.MsgInstantiateContract{Msg: []byte(`[`)}))
}

type denyInstantiate struct{}

func (denyInstantiate) ValidateMsg(msg sdktypes.Msg) error {
	if _, ok := msg.(*wasmtypes.MsgInstantiateContract); ok {
		return errors.New("instantiate not allowed")
	}
	return nil
}

func TestSignerValidateRunsExtraValidators(t *testing.T) {
	s := NewSigner(client.Context{}, denyInstantiate{})

	assert.NoError(t, s.Validate(&wasmtypes.MsgExecuteContract{Msg: []byte(`{"claim_rewards":{}}`)}))
	assert.EqualError(t, s.Validate(&wasmtypes.MsgInstantiateContract{Msg: []byte(`{}`)}), "instantiate not allowed")
	// the command validator runs first
	assert.EqualError(t, s.Validate(&wasmtypes.MsgInstantiateContract{Msg: []byte(`[`)}), "invalid JSON in instantiate message")
}
