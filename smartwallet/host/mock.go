package host

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	abci "github.com/cometbft/cometbft/abci/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Call is one Submit seen by MockHost.
type Call struct {
	Target  string
	Payload []byte
	Funds   sdk.Coins
}

// Instance is one Instantiate seen by MockHost.
type Instance struct {
	CodeID  uint64
	Label   string
	Msg     []byte
	Address string
}

// MockHost records submits and fails the targets registered with FailOn.
type MockHost struct {
	mu        sync.Mutex
	calls     []Call
	instances []Instance
	fail      map[string]error
	queries   map[string][]byte
	height    int64
}

var (
	_ Host         = (*MockHost)(nil)
	_ Instantiator = (*MockHost)(nil)
)

func NewMockHost() *MockHost {
	return &MockHost{fail: make(map[string]error), queries: make(map[string][]byte)}
}

func (m *MockHost) FailOn(target string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[target] = err
}

func (m *MockHost) SetQueryResponse(target string, resp []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[target] = resp
}

func (m *MockHost) Submit(_ context.Context, target string, payload []byte, funds sdk.Coins) (*TxResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[target]; ok {
		return nil, err
	}
	m.height++
	m.calls = append(m.calls, Call{Target: target, Payload: append([]byte(nil), payload...), Funds: funds})
	return &TxResult{
		Height: m.height,
		Events: []abci.Event{{
			Type:       "wasm",
			Attributes: []abci.EventAttribute{{Key: "_contract_address", Value: target}},
		}},
	}, nil
}

func (m *MockHost) Query(_ context.Context, target string, _ []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[target], nil
}

// Calls returns the successful submits in order.
func (m *MockHost) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Instantiate hands out sequential addresses and records the init message.
func (m *MockHost) Instantiate(_ context.Context, codeID uint64, label string, msg []byte, _ sdk.Coins) (string, *TxResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height++
	addr := fmt.Sprintf("terra1mockcontract%d", len(m.instances)+1)
	m.instances = append(m.instances, Instance{CodeID: codeID, Label: label, Msg: append([]byte(nil), msg...), Address: addr})
	return addr, &TxResult{
		Height: m.height,
		Events: []abci.Event{{
			Type: "instantiate",
			Attributes: []abci.EventAttribute{
				{Key: "_contract_address", Value: addr},
				{Key: "code_id", Value: strconv.FormatUint(codeID, 10)},
			},
		}},
	}, nil
}

func (m *MockHost) Instances() []Instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Instance(nil), m.instances...)
}
