package localterra

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	errorsmod "cosmossdk.io/errors"

	"github.com/Terrorbear/anchor-guardian/smartwallet/envelope"
	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/cw20"
)

const (
	recorderFailOnKey = "fail_on"

	ActionSetFailOn = "set_fail_on"
)

// RecorderInstantiateMsg configures a recorder. FailOn lists message kinds it rejects.
type RecorderInstantiateMsg struct {
	FailOn []string `json:"fail_on,omitempty"`
}

type SetFailOn struct {
	Kinds []string `json:"kinds"`
}

// RecordedCall is one accepted message. A cw20 receive is recorded under the kind of the
// message it carried, with Token set to the sending token.
type RecordedCall struct {
	Seq    uint64          `json:"seq"`
	Height int64           `json:"height"`
	Sender string          `json:"sender"`
	Kind   string          `json:"kind"`
	Msg    json.RawMessage `json:"msg"`
	Funds  string          `json:"funds,omitempty"`
	Token  string          `json:"token,omitempty"`
	Amount string          `json:"amount,omitempty"`
}

type RecorderCallsResponse struct {
	Calls []RecordedCall `json:"calls"`
}

type RecorderCountResponse struct {
	Count uint64 `json:"count"`
}

type recorderContract struct{}

// RecorderCode deploys a stand-in for a market or overseer: it accepts any single-key message,
// records it, and fails the kinds it was told to fail.
func RecorderCode() Factory {
	return func() Contract { return recorderContract{} }
}

func (recorderContract) Instantiate(ctx context.Context, env Env, raw []byte) (*Response, error) {
	var msg RecorderInstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	if err := state.SetJSON(ctx, env.Store, recorderFailOnKey, msg.FailOn); err != nil {
		return nil, err
	}
	return &Response{Attributes: eventAttrs("action", "instantiate")}, nil
}

func (recorderContract) Execute(ctx context.Context, env Env, raw []byte) (*Response, error) {
	kind, err := envelope.Discriminant(raw)
	if err != nil {
		return nil, err
	}
	if kind == ActionSetFailOn {
		var msg struct {
			SetFailOn SetFailOn `json:"set_fail_on"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
		}
		if err := state.SetJSON(ctx, env.Store, recorderFailOnKey, msg.SetFailOn.Kinds); err != nil {
			return nil, err
		}
		return &Response{Attributes: eventAttrs("action", ActionSetFailOn)}, nil
	}

	rec := RecordedCall{Height: env.Height, Sender: env.Sender, Kind: kind, Msg: raw, Funds: env.Funds.String()}
	if kind == "receive" {
		hook, err := cw20.UnmarshalReceiveMsg(raw)
		if err != nil {
			return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
		}
		inner, err := envelope.Discriminant(hook.Receive.Msg)
		if err != nil {
			return nil, err
		}
		rec = RecordedCall{
			Height: env.Height,
			Sender: hook.Receive.Sender,
			Kind:   inner,
			Msg:    hook.Receive.Msg,
			Token:  env.Sender,
			Amount: hook.Receive.Amount,
		}
	}

	var failOn []string
	if err := state.GetJSON(ctx, env.Store, recorderFailOnKey, &failOn); err != nil {
		return nil, err
	}
	for _, k := range failOn {
		if k == rec.Kind {
			return nil, fmt.Errorf("%s rejected by %s", rec.Kind, env.Contract)
		}
	}

	seq, err := state.NextSequence(ctx, env.Store, state.PKCallSeq)
	if err != nil {
		return nil, err
	}
	rec.Seq = seq
	if err := state.SetJSON(ctx, env.Store, fmt.Sprintf("%s%020d", state.PKCall, seq), rec); err != nil {
		return nil, err
	}
	return &Response{Attributes: eventAttrs("action", rec.Kind, "seq", strconv.FormatUint(seq, 10))}, nil
}

func (recorderContract) Query(ctx context.Context, env Env, raw []byte) ([]byte, error) {
	kind, err := envelope.Discriminant(raw)
	if err != nil {
		return nil, err
	}
	keys, err := env.Store.Keys(ctx, state.PKCall)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "count":
		return json.Marshal(RecorderCountResponse{Count: uint64(len(keys))})
	case "calls":
		resp := RecorderCallsResponse{Calls: make([]RecordedCall, 0, len(keys))}
		for _, key := range keys {
			var rec RecordedCall
			if err := state.GetJSON(ctx, env.Store, key, &rec); err != nil {
				return nil, err
			}
			resp.Calls = append(resp.Calls, rec)
		}
		return json.Marshal(resp)
	}
	return nil, errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "unknown recorder query %q", kind)
}

// RecordedCalls is a typed helper over the calls query.
func RecordedCalls(ctx context.Context, l *Ledger, contract string) ([]RecordedCall, error) {
	raw, err := l.Query(ctx, contract, []byte(`{"calls":{}}`))
	if err != nil {
		return nil, err
	}
	var resp RecorderCallsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return resp.Calls, nil
}
