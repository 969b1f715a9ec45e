package localterra

import (
	"context"
	"fmt"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/crypto/tmhash"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
)

// txn is one block's worth of work. store always points at the innermost open call.
type txn struct {
	ledger *Ledger
	root   *state.CacheStore
	store  state.KVStore
	events []abci.Event
	height int64
	hash   string
	depth  int
}

type call func(env Env, c Contract) (*Response, error)

// run opens a child cache for one contract call. The child is written into its parent when the
// contract returns a response; otherwise it and the events of its sub-calls are dropped.
func (t *txn) run(ctx context.Context, sender, target string, funds sdk.Coins, before func(kv state.KVStore) error, fn call, own func(resp *Response) []abci.Event) (*Response, error) {
	if t.depth >= t.ledger.maxDepth {
		return nil, fmt.Errorf("%w: %d", ErrMaxDepth, t.ledger.maxDepth)
	}
	parent := t.store
	child := state.NewCacheStore(parent)
	mark := len(t.events)
	t.store = child
	t.depth++
	defer func() {
		t.store = parent
		t.depth--
	}()

	if before != nil {
		if err := before(child); err != nil {
			t.events = t.events[:mark]
			return nil, err
		}
	}
	info, err := contractInfo(ctx, child, target)
	if err != nil {
		t.events = t.events[:mark]
		return nil, err
	}
	factory, ok := t.ledger.codes[info.CodeID]
	if !ok {
		t.events = t.events[:mark]
		return nil, fmt.Errorf("%w: %d", ErrUnknownCode, info.CodeID)
	}
	if !funds.IsZero() {
		if err := transfer(ctx, child, sender, target, funds); err != nil {
			t.events = t.events[:mark]
			return nil, err
		}
		t.events = append(t.events, transferEvent(sender, target, funds))
	}

	env := Env{
		Height:   t.height,
		Contract: target,
		Sender:   sender,
		Funds:    funds,
		Store:    state.NewPrefixStore(child, storePrefix+target+":"),
		Host:     &contractHost{t: t, self: target},
	}
	resp, err := fn(env, factory())
	if resp == nil {
		t.events = t.events[:mark]
		if err == nil {
			err = fmt.Errorf("contract %s returned no response", target)
		}
		return nil, err
	}
	if werr := child.Write(ctx); werr != nil {
		t.events = t.events[:mark]
		return nil, werr
	}
	t.events = insertEvents(t.events, mark, own(resp))
	return resp, err
}

func (t *txn) execute(ctx context.Context, sender, target string, msg []byte, funds sdk.Coins) (*Response, error) {
	return t.run(ctx, sender, target, funds, nil,
		func(env Env, c Contract) (*Response, error) {
			return c.Execute(ctx, env, msg)
		},
		func(resp *Response) []abci.Event {
			out := []abci.Event{{Type: "execute", Attributes: []abci.EventAttribute{
				{Key: "_contract_address", Value: target},
			}}}
			return append(out, contractEvents(target, resp)...)
		})
}

func (t *txn) instantiate(ctx context.Context, sender string, codeID uint64, label string, msg []byte, funds sdk.Coins) (string, *Response, error) {
	if _, ok := t.ledger.codes[codeID]; !ok {
		return "", nil, fmt.Errorf("%w: %d", ErrUnknownCode, codeID)
	}
	seq, err := state.NextSequence(ctx, t.store, instanceSeqKey)
	if err != nil {
		return "", nil, err
	}
	addr := mustBech32(tmhash.Sum([]byte(fmt.Sprintf("contract/%d/%d", codeID, seq))))
	codeAttr := strconv.FormatUint(codeID, 10)

	resp, err := t.run(ctx, sender, addr, funds,
		func(kv state.KVStore) error {
			return state.SetJSON(ctx, kv, contractPrefix+addr, ContractInfo{
				Address: addr, CodeID: codeID, Label: label, Creator: sender,
			})
		},
		func(env Env, c Contract) (*Response, error) {
			return c.Instantiate(ctx, env, msg)
		},
		func(resp *Response) []abci.Event {
			out := []abci.Event{
				{Type: "instantiate", Attributes: []abci.EventAttribute{
					{Key: "_contract_address", Value: addr},
					{Key: "code_id", Value: codeAttr},
				}},
				{Type: "instantiate_contract", Attributes: []abci.EventAttribute{
					{Key: "contract_address", Value: addr},
					{Key: "code_id", Value: codeAttr},
				}},
			}
			return append(out, contractEvents(addr, resp)...)
		})
	if resp == nil {
		return "", nil, err
	}
	return addr, resp, err
}

// query reads through the open transaction. Writes made by the contract are discarded.
func (t *txn) query(ctx context.Context, target string, msg []byte) ([]byte, error) {
	info, err := contractInfo(ctx, t.store, target)
	if err != nil {
		return nil, err
	}
	factory, ok := t.ledger.codes[info.CodeID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCode, info.CodeID)
	}
	scratch := state.NewCacheStore(t.store)
	env := Env{
		Height:   t.height,
		Contract: target,
		Store:    state.NewPrefixStore(scratch, storePrefix+target+":"),
		Host:     &contractHost{t: t, self: target, readOnly: true},
	}
	return factory().Query(ctx, env, msg)
}

func contractEvents(addr string, resp *Response) []abci.Event {
	attrs := append([]abci.EventAttribute{{Key: "_contract_address", Value: addr}}, resp.Attributes...)
	out := []abci.Event{{Type: "wasm", Attributes: attrs}}
	for _, e := range resp.Events {
		custom := append([]abci.EventAttribute{{Key: "_contract_address", Value: addr}}, e.Attributes...)
		out = append(out, abci.Event{Type: "wasm-" + e.Type, Attributes: custom})
	}
	return out
}

// insertEvents places a call's own events ahead of the events of the sub-calls it made.
func insertEvents(events []abci.Event, at int, own []abci.Event) []abci.Event {
	out := make([]abci.Event, 0, len(events)+len(own))
	out = append(out, events[:at]...)
	out = append(out, own...)
	return append(out, events[at:]...)
}

// contractHost lets a running contract call out with its own address as sender.
type contractHost struct {
	t        *txn
	self     string
	readOnly bool
}

var (
	_ host.Host         = (*contractHost)(nil)
	_ host.Instantiator = (*contractHost)(nil)
)

func (h *contractHost) Submit(ctx context.Context, target string, payload []byte, funds sdk.Coins) (*host.TxResult, error) {
	if h.readOnly {
		return nil, fmt.Errorf("contract %s cannot submit from a query", h.self)
	}
	mark := len(h.t.events)
	resp, err := h.t.execute(ctx, h.self, target, payload, funds)
	if resp == nil {
		return nil, err
	}
	return h.result(mark, resp), err
}

func (h *contractHost) Query(ctx context.Context, target string, query []byte) ([]byte, error) {
	return h.t.query(ctx, target, query)
}

func (h *contractHost) Instantiate(ctx context.Context, codeID uint64, label string, msg []byte, funds sdk.Coins) (string, *host.TxResult, error) {
	if h.readOnly {
		return "", nil, fmt.Errorf("contract %s cannot instantiate from a query", h.self)
	}
	mark := len(h.t.events)
	addr, resp, err := h.t.instantiate(ctx, h.self, codeID, label, msg, funds)
	if resp == nil {
		return "", nil, err
	}
	return addr, h.result(mark, resp), err
}

func (h *contractHost) result(mark int, resp *Response) *host.TxResult {
	return &host.TxResult{
		Height: h.t.height,
		TxHash: h.t.hash,
		Events: append([]abci.Event(nil), h.t.events[mark:]...),
		Data:   resp.Data,
	}
}

// AccountHost submits top-level transactions signed by an account.
type AccountHost struct {
	ledger  *Ledger
	address string
}

var (
	_ host.Host         = (*AccountHost)(nil)
	_ host.Instantiator = (*AccountHost)(nil)
)

func (h *AccountHost) Address() string { return h.address }

func (h *AccountHost) Submit(ctx context.Context, target string, payload []byte, funds sdk.Coins) (*host.TxResult, error) {
	return h.ledger.Execute(ctx, h.address, target, payload, funds)
}

func (h *AccountHost) Query(ctx context.Context, target string, query []byte) ([]byte, error) {
	return h.ledger.Query(ctx, target, query)
}

func (h *AccountHost) Instantiate(ctx context.Context, codeID uint64, label string, msg []byte, funds sdk.Coins) (string, *host.TxResult, error) {
	return h.ledger.Instantiate(ctx, h.address, codeID, label, msg, funds)
}
