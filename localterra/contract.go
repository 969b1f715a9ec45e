package localterra

import (
	"context"

	abci "github.com/cometbft/cometbft/abci/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
)

// Env is what a contract sees during one call.
type Env struct {
	Height   int64
	Contract string
	Sender   string
	Funds    sdk.Coins
	// Store is the contract's own state, scoped to the running transaction.
	Store state.KVStore
	// Host submits and queries with the contract's identity. It also implements
	// host.Instantiator.
	Host host.Host
}

// Response is returned by a successful call. Attributes go to the "wasm" event; Events are
// reported as "wasm-<type>".
type Response struct {
	Attributes []abci.EventAttribute
	Events     []abci.Event
	Data       []byte
}

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, abci.EventAttribute{Key: key, Value: value})
	return r
}

// Contract is native Go code deployed on the ledger. Returning a non-nil Response together with
// an error keeps the call's writes while still reporting the error to the caller.
type Contract interface {
	Instantiate(ctx context.Context, env Env, msg []byte) (*Response, error)
	Execute(ctx context.Context, env Env, msg []byte) (*Response, error)
	Query(ctx context.Context, env Env, msg []byte) ([]byte, error)
}

// Factory builds the contract handler for one call. Contracts keep no state outside Env.Store.
type Factory func() Contract
