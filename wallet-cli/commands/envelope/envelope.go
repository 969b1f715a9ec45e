// Package envelope prints and inspects wasm execute envelopes without touching a chain.
package envelope

import (
	"encoding/json"
	"fmt"
	"io"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"gopkg.in/yaml.v3"

	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/wallet-api/utils"
)

type Layer struct {
	Depth   int    `yaml:"depth"`
	Target  string `yaml:"target"`
	Funds   string `yaml:"funds,omitempty"`
	Kind    string `yaml:"kind,omitempty"`
	Payload string `yaml:"payload"`
}

// Encode builds the envelope addressing payload to target. funds uses the coin string format,
// e.g. "100uusd,5uluna", and may be empty.
func Encode(target, payload, funds string) ([]byte, error) {
	if !json.Valid([]byte(payload)) {
		return nil, errorsmod.Wrap(walleterrors.ErrMalformedEnvelope, "payload is not json")
	}
	coins, err := parseFunds(funds)
	if err != nil {
		return nil, err
	}
	return envelope.EncodeWithFunds(envelope.Envelope{Target: target, Payload: []byte(payload), Funds: coins})
}

// Nest addresses raw, itself an envelope, to walletAddr's execute message.
func Nest(walletAddr, raw string) ([]byte, error) {
	inner, err := envelope.Decode([]byte(raw))
	if err != nil {
		return nil, err
	}
	outer, err := envelope.Nest(walletAddr, inner)
	if err != nil {
		return nil, err
	}
	return outer.Marshal()
}

// Inspect unwraps raw down to its innermost command.
func Inspect(raw string) ([]Layer, error) {
	cmd, err := envelope.Parse([]byte(raw), envelope.DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	var layers []Layer
	for i, env := range cmd.Layers() {
		layer := Layer{Depth: i + 1, Target: env.Target, Payload: string(env.Payload)}
		if !env.Funds.Empty() {
			layer.Funds = env.Funds.String()
		}
		if kind, err := envelope.Discriminant(env.Payload); err == nil {
			layer.Kind = kind
		}
		layers = append(layers, layer)
	}
	return layers, nil
}

func PrintEncode(w io.Writer, target, payload, funds string) {
	out, err := Encode(target, payload, funds)
	if err != nil {
		panic(err)
	}
	fmt.Fprintln(w, string(out))
}

func PrintNest(w io.Writer, walletAddr, raw string) {
	out, err := Nest(walletAddr, raw)
	if err != nil {
		panic(err)
	}
	fmt.Fprintln(w, string(out))
}

// PrintDecode prints only the outermost layer.
func PrintDecode(w io.Writer, raw string) {
	env, err := envelope.Decode([]byte(raw))
	if err != nil {
		panic(err)
	}
	fmt.Fprintf(w, "target: %s\nfunds: %s\npayload: %s\n", env.Target, env.Funds.String(), string(env.Payload))
}

func PrintInspect(w io.Writer, raw string) {
	layers, err := Inspect(raw)
	if err != nil {
		panic(err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(layers); err != nil {
		panic(err)
	}
	_ = enc.Close()
}

func parseFunds(funds string) (sdk.Coins, error) {
	if funds == "" {
		return nil, nil
	}
	coins, err := sdk.ParseCoinsNormalized(funds)
	if err != nil {
		return nil, utils.WrapError("invalid funds", err)
	}
	return coins, nil
}
