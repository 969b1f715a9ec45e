package envelope

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
)

func TestEncodeAndInspect(t *testing.T) {
	raw, err := Encode("terra1market", `{"borrow_stable":{"borrow_amount":"75000000"}}`, "100uusd")
	require.NoError(t, err)

	layers, err := Inspect(string(raw))
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, "terra1market", layers[0].Target)
	assert.Equal(t, "borrow_stable", layers[0].Kind)
	assert.Equal(t, "100uusd", layers[0].Funds)
}

func TestNestAddsWalletLayer(t *testing.T) {
	inner, err := Encode("terra1market", `{"repay_stable":{}}`, "")
	require.NoError(t, err)

	outer, err := Nest("terra1wallet", string(inner))
	require.NoError(t, err)

	layers, err := Inspect(string(outer))
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "terra1wallet", layers[0].Target)
	assert.Equal(t, "execute", layers[0].Kind)
	assert.Equal(t, "terra1market", layers[1].Target)
	assert.Equal(t, "repay_stable", layers[1].Kind)
	assert.Empty(t, layers[1].Funds)
}

func TestEncodeRejectsBadInput(t *testing.T) {
	_, err := Encode("terra1market", `{"repay_stable"`, "")
	assert.ErrorIs(t, err, walleterrors.ErrMalformedEnvelope)

	_, err = Encode("terra1market", `{}`, "lots")
	assert.Error(t, err)

	_, err = Encode("", `{}`, "")
	assert.ErrorIs(t, err, walleterrors.ErrMalformedEnvelope)
}

func TestPrintInspect(t *testing.T) {
	raw, err := Encode("terra1reward", `{"claim_rewards":{}}`, "")
	require.NoError(t, err)

	var out bytes.Buffer
	PrintInspect(&out, string(raw))
	assert.Contains(t, out.String(), "kind: claim_rewards")
	assert.Contains(t, out.String(), "target: terra1reward")

	assert.Panics(t, func() { PrintDecode(&out, `{"wasm":{}}`) })
}
