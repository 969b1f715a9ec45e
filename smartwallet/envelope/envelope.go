// Package envelope encodes address-targeted commands in the CosmWasm execute message layout:
//
//	{"wasm":{"execute":{"contract_addr":"...","funds":[...],"msg":"<base64 payload>"}}}
//
// Decoding is strict. Anything that does not re-encode to the same bytes (ignoring insignificant
// whitespace) is rejected with ErrMalformedEnvelope.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
)

type Envelope struct {
	Target  string
	Payload []byte
	Funds   sdk.Coins
}

type wireMsg struct {
	Wasm *wireWasm `json:"wasm"`
}

type wireWasm struct {
	Execute *wireExecute `json:"execute"`
}

type wireExecute struct {
	ContractAddr string     `json:"contract_addr"`
	Funds        []wireCoin `json:"funds"`
	Msg          []byte     `json:"msg"`
}

type wireCoin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Encode builds an envelope without funds.
func Encode(target string, payload []byte) ([]byte, error) {
	return Envelope{Target: target, Payload: payload}.Marshal()
}

func EncodeWithFunds(env Envelope) ([]byte, error) {
	return env.Marshal()
}

func (e Envelope) Marshal() ([]byte, error) {
	if e.Target == "" {
		return nil, errorsmod.Wrap(walleterrors.ErrMalformedEnvelope, "empty target")
	}
	if !utf8.ValidString(e.Target) {
		return nil, errorsmod.Wrap(walleterrors.ErrMalformedEnvelope, "target is not valid utf-8")
	}
	if err := e.Funds.Validate(); err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrMalformedEnvelope, err.Error())
	}
	payload := e.Payload
	if payload == nil {
		payload = []byte{}
	}
	funds := make([]wireCoin, 0, len(e.Funds))
	for _, c := range e.Funds {
		funds = append(funds, wireCoin{Denom: c.Denom, Amount: c.Amount.String()})
	}
	return marshalWire(wireMsg{Wasm: &wireWasm{Execute: &wireExecute{
		ContractAddr: e.Target,
		Funds:        funds,
		Msg:          payload,
	}}})
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	return e.Marshal()
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// Decode is the inverse of Encode and Marshal.
func Decode(data []byte) (Envelope, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return Envelope{}, malformed("invalid json: %v", err)
	}

	dec := json.NewDecoder(bytes.NewReader(compact.Bytes()))
	dec.DisallowUnknownFields()
	var msg wireMsg
	if err := dec.Decode(&msg); err != nil {
		return Envelope{}, malformed("%v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Envelope{}, malformed("trailing data")
	}
	if msg.Wasm == nil || msg.Wasm.Execute == nil {
		return Envelope{}, malformed("missing wasm.execute")
	}
	exec := msg.Wasm.Execute
	if exec.ContractAddr == "" {
		return Envelope{}, malformed("empty contract_addr")
	}

	funds := make(sdk.Coins, 0, len(exec.Funds))
	for _, c := range exec.Funds {
		amount, ok := math.NewIntFromString(c.Amount)
		if !ok {
			return Envelope{}, malformed("invalid amount %q", c.Amount)
		}
		funds = append(funds, sdk.Coin{Denom: c.Denom, Amount: amount})
	}
	if err := funds.Validate(); err != nil {
		return Envelope{}, malformed("%v", err)
	}

	env := Envelope{Target: exec.ContractAddr, Payload: exec.Msg, Funds: funds}
	canonical, err := env.Marshal()
	if err != nil {
		return Envelope{}, err
	}
	if !bytes.Equal(canonical, compact.Bytes()) {
		return Envelope{}, malformed("non-canonical encoding")
	}
	if len(env.Funds) == 0 {
		env.Funds = nil
	}
	return env, nil
}

// Discriminant returns the single top-level key of a JSON object payload, e.g. "borrow_stable".
func Discriminant(payload []byte) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return "", malformed("payload is not a json object: %v", err)
	}
	if len(obj) != 1 {
		return "", malformed("payload has %d top-level keys, want 1", len(obj))
	}
	for k := range obj {
		return k, nil
	}
	return "", nil
}

func marshalWire(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func malformed(format string, args ...interface{}) error {
	return errorsmod.Wrap(walleterrors.ErrMalformedEnvelope, fmt.Sprintf(format, args...))
}
