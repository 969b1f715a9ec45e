package envelope

import (
	"bytes"
	"encoding/json"
)

// DefaultMaxDepth bounds how many envelopes Parse unwraps.
const DefaultMaxDepth = 8

// Command is an envelope whose payload may itself carry another command.
type Command struct {
	Envelope
	Inner *Command
}

type walletExecute struct {
	Execute *struct {
		Command json.RawMessage `json:"command"`
	} `json:"execute"`
}

// Wrap produces the wallet's execute message carrying inner: {"execute":{"command":<inner>}}.
func Wrap(inner Envelope) ([]byte, error) {
	raw, err := inner.Marshal()
	if err != nil {
		return nil, err
	}
	return marshalWire(map[string]interface{}{
		"execute": map[string]json.RawMessage{"command": raw},
	})
}

// Nest addresses inner to the wallet at walletAddr, so that the wallet forwards it.
func Nest(walletAddr string, inner Envelope) (Envelope, error) {
	payload, err := Wrap(inner)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Target: walletAddr, Payload: payload}, nil
}

// Parse decodes data and follows nested commands down to maxDepth envelopes. A payload is
// nested when it is itself an envelope or the wallet wrapper around one. maxDepth <= 0 uses
// DefaultMaxDepth.
func Parse(data []byte, maxDepth int) (*Command, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return parse(data, 1, maxDepth)
}

func parse(data []byte, depth, maxDepth int) (*Command, error) {
	if depth > maxDepth {
		return nil, malformed("nesting deeper than %d", maxDepth)
	}
	env, err := Decode(data)
	if err != nil {
		return nil, err
	}
	cmd := &Command{Envelope: env}
	inner, ok := innerCommand(env.Payload)
	if !ok {
		return cmd, nil
	}
	cmd.Inner, err = parse(inner, depth+1, maxDepth)
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

// innerCommand extracts the nested envelope bytes from payload, if it carries one.
func innerCommand(payload []byte) ([]byte, bool) {
	key, err := Discriminant(payload)
	if err != nil {
		return nil, false
	}
	switch key {
	case "wasm":
		return payload, true
	case "execute":
		var w walletExecute
		if err := json.Unmarshal(payload, &w); err != nil || w.Execute == nil {
			return nil, false
		}
		cmd := bytes.TrimSpace(w.Execute.Command)
		if len(cmd) == 0 || bytes.Equal(cmd, []byte("null")) {
			return nil, false
		}
		return cmd, true
	}
	return nil, false
}

// Layers lists the envelopes from outermost to innermost.
func (c *Command) Layers() []Envelope {
	var out []Envelope
	for cur := c; cur != nil; cur = cur.Inner {
		out = append(out, cur.Envelope)
	}
	return out
}

func (c *Command) Depth() int {
	return len(c.Layers())
}

func (c *Command) Innermost() Envelope {
	cur := c
	for cur.Inner != nil {
		cur = cur.Inner
	}
	return cur.Envelope
}
