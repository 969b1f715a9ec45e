// Package host describes the ledger capabilities the wallet calls through: submit a command to an
// address, and query an address.
package host

import (
	"context"

	abci "github.com/cometbft/cometbft/abci/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// TxResult is what a successful submit returns. Events follow the ABCI layout so callers can pull
// ids (proposal_id, _contract_address, code_id) out of them.
type TxResult struct {
	Height int64
	TxHash string
	Events []abci.Event
	Data   []byte
}

type Host interface {
	Submit(ctx context.Context, target string, payload []byte, funds sdk.Coins) (*TxResult, error)
	Query(ctx context.Context, target string, query []byte) ([]byte, error)
}

// Instantiator is implemented by hosts that can create contracts from stored code.
type Instantiator interface {
	Instantiate(ctx context.Context, codeID uint64, label string, msg []byte, funds sdk.Coins) (string, *TxResult, error)
}

// Attribute returns the first value of key on an event of eventType.
func (r *TxResult) Attribute(eventType, key string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, event := range r.Events {
		if event.Type != eventType {
			continue
		}
		for _, attr := range event.Attributes {
			if attr.Key == key {
				return attr.Value, true
			}
		}
	}
	return "", false
}

// Attributes returns every value of key on events of eventType, in emission order.
func (r *TxResult) Attributes(eventType, key string) []string {
	if r == nil {
		return nil
	}
	var values []string
	for _, event := range r.Events {
		if event.Type != eventType {
			continue
		}
		for _, attr := range event.Attributes {
			if attr.Key == key {
				values = append(values, attr.Value)
			}
		}
	}
	return values
}

// Merge appends other's events and takes its height and data when set.
func (r *TxResult) Merge(other *TxResult) {
	if other == nil {
		return
	}
	r.Events = append(r.Events, other.Events...)
	if other.Height > r.Height {
		r.Height = other.Height
	}
	if other.Data != nil {
		r.Data = other.Data
	}
}
