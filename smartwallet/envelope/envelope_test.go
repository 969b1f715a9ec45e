package envelope

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
)

const (
	market = "terra15dwd5mj8v59wpj0wvt233mf5efdff808c5tkal"
	wallet = "terra1sh36qn08g4cqg685cfzmyxqv2952q6r8gpczrt"
	cw3    = "terra1fyr2mptjswz4w6xmgnpgm93x0q4s4wdl6srv3rtz3utc4f6fmxeqn3c0pp"
)

func TestEncodeWireFormat(t *testing.T) {
	payload := []byte(`{"borrow_stable":{"borrow_amount":"75000000"}}`)
	data, err := Encode(market, payload)
	require.NoError(t, err)

	want := fmt.Sprintf(`{"wasm":{"execute":{"contract_addr":"%s","funds":[],"msg":"%s"}}}`,
		market, base64.StdEncoding.EncodeToString(payload))
	assert.Equal(t, want, string(data))
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		target := fmt.Sprintf("terra1%x", r.Int63())
		payload := make([]byte, r.Intn(256))
		r.Read(payload)

		data, err := Encode(target, payload)
		require.NoError(t, err)
		got, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, target, got.Target)
		assert.Equal(t, payload, got.Payload)
	}
}

func TestRoundTripWithFunds(t *testing.T) {
	env := Envelope{
		Target:  market,
		Payload: []byte(`{"deposit_stable":{}}`),
		Funds:   sdk.NewCoins(sdk.NewInt64Coin("uusd", 1000000000), sdk.NewInt64Coin("uluna", 5)),
	}
	data, err := EncodeWithFunds(env)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, env.Target, got.Target)
	assert.True(t, env.Funds.Equal(got.Funds))
	assert.Equal(t, env.Payload, got.Payload)
}

func TestNestedRoundTrip(t *testing.T) {
	core := Envelope{Target: market, Payload: []byte(`{"borrow_stable":{"borrow_amount":"75000000"}}`)}
	viaWallet, err := Nest(wallet, core)
	require.NoError(t, err)
	outer, err := viaWallet.Marshal()
	require.NoError(t, err)

	// an envelope used directly as the payload of another
	proposal, err := Encode(cw3, outer)
	require.NoError(t, err)

	cmd, err := Parse(proposal, 0)
	require.NoError(t, err)
	require.Equal(t, 3, cmd.Depth())
	layers := cmd.Layers()
	assert.Equal(t, cw3, layers[0].Target)
	assert.Equal(t, wallet, layers[1].Target)
	assert.Equal(t, market, layers[2].Target)
	assert.Equal(t, core.Payload, cmd.Innermost().Payload)

	decoded, err := Decode(layers[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, viaWallet.Payload, decoded.Payload)
}

func TestParseDepthBound(t *testing.T) {
	data, err := Encode(market, []byte(`{"claim_rewards":{}}`))
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		data, err = Encode(wallet, data)
		require.NoError(t, err)
	}

	cmd, err := Parse(data, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cmd.Depth())

	_, err = Parse(data, 4)
	assert.ErrorIs(t, err, walleterrors.ErrMalformedEnvelope)
}

func TestParseOpaquePayload(t *testing.T) {
	data, err := Encode(cw3, []byte(`{"execute":{"proposal_id":1}}`))
	require.NoError(t, err)
	cmd, err := Parse(data, 0)
	require.NoError(t, err)
	assert.Nil(t, cmd.Inner)
}

func TestParseRejectsMalformedInner(t *testing.T) {
	inner := `{"execute":{"command":{"wasm":{"execute":{"contract_addr":"","funds":[],"msg":""}}}}}`
	data, err := Encode(wallet, []byte(inner))
	require.NoError(t, err)
	_, err = Parse(data, 0)
	assert.ErrorIs(t, err, walleterrors.ErrMalformedEnvelope)
}

func TestDecodeIgnoresWhitespace(t *testing.T) {
	msg := base64.StdEncoding.EncodeToString([]byte(`{"send": {"amount": "1"}}`))
	data := fmt.Sprintf(`{"wasm": {"execute": {"contract_addr": "%s", "funds": [], "msg": "%s"}}}`, market, msg)
	env, err := Decode([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, `{"send": {"amount": "1"}}`, string(env.Payload))
}

func TestDecodeMalformed(t *testing.T) {
	valid, err := Encode(market, []byte(`{"claim_rewards":{}}`))
	require.NoError(t, err)

	cases := map[string]string{
		"truncated":        string(valid[:len(valid)-3]),
		"empty":            "",
		"trailing data":    string(valid) + `{}`,
		"unknown field":    strings.Replace(string(valid), `"funds"`, `"extra":1,"funds"`, 1),
		"reordered fields": fmt.Sprintf(`{"wasm":{"execute":{"funds":[],"contract_addr":"%s","msg":""}}}`, market),
		"missing funds":    fmt.Sprintf(`{"wasm":{"execute":{"contract_addr":"%s","msg":""}}}`, market),
		"null msg":         fmt.Sprintf(`{"wasm":{"execute":{"contract_addr":"%s","funds":[],"msg":null}}}`, market),
		"bad base64":       fmt.Sprintf(`{"wasm":{"execute":{"contract_addr":"%s","funds":[],"msg":"!!"}}}`, market),
		"unpadded base64":  fmt.Sprintf(`{"wasm":{"execute":{"contract_addr":"%s","funds":[],"msg":"e30"}}}`, market),
		"empty target":     `{"wasm":{"execute":{"contract_addr":"","funds":[],"msg":""}}}`,
		"missing execute":  `{"wasm":{}}`,
		"zero coin":        fmt.Sprintf(`{"wasm":{"execute":{"contract_addr":"%s","funds":[{"denom":"uusd","amount":"0"}],"msg":""}}}`, market),
		"bad amount":       fmt.Sprintf(`{"wasm":{"execute":{"contract_addr":"%s","funds":[{"denom":"uusd","amount":"1.5"}],"msg":""}}}`, market),
		"unsorted coins":   fmt.Sprintf(`{"wasm":{"execute":{"contract_addr":"%s","funds":[{"denom":"uusd","amount":"1"},{"denom":"uluna","amount":"1"}],"msg":""}}}`, market),
		"escaped target":   `{"wasm":{"execute":{"contract_addr":"\u0074erra1x","funds":[],"msg":""}}}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			assert.ErrorIs(t, err, walleterrors.ErrMalformedEnvelope)
		})
	}
}

func TestMarshalRejectsInvalid(t *testing.T) {
	_, err := Encode("", []byte("x"))
	assert.ErrorIs(t, err, walleterrors.ErrMalformedEnvelope)

	_, err = Envelope{Target: market, Funds: sdk.Coins{{Denom: "uusd", Amount: math.NewInt(-1)}}}.Marshal()
	assert.ErrorIs(t, err, walleterrors.ErrMalformedEnvelope)

	// json would replace the bad byte and the result would no longer decode to the same target
	_, err = Encode("terra1\xff", []byte(`{"borrow_stable":{}}`))
	assert.ErrorIs(t, err, walleterrors.ErrMalformedEnvelope)
}

func TestDiscriminant(t *testing.T) {
	kind, err := Discriminant([]byte(`{"borrow_stable":{"borrow_amount":"1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "borrow_stable", kind)

	for _, bad := range []string{`{}`, `{"a":{},"b":{}}`, `[]`, `"claim_rewards"`, `{`} {
		_, err := Discriminant([]byte(bad))
		assert.ErrorIs(t, err, walleterrors.ErrMalformedEnvelope, bad)
	}
}
