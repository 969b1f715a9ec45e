// Package localterra is an in-process ledger that runs native Go contracts with CosmWasm call
// semantics: funds move with calls, nested calls commit or roll back on their own, and every
// transaction reports wasmd-shaped events.
package localterra

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/crypto/tmhash"
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	tmtypes "github.com/cometbft/cometbft/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Terrorbear/anchor-guardian/smartwallet/host"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
)

const (
	Bech32Prefix    = "terra"
	DefaultMaxDepth = 10

	codePrefix     = "wasm/code:"
	contractPrefix = "wasm/contract:"
	instanceSeqKey = "wasm/instance_seq"
	storePrefix    = "cstore:"
)

var (
	ErrUnknownCode     = errors.New("unknown code id")
	ErrUnknownContract = errors.New("no contract at address")
	ErrMaxDepth        = errors.New("max call depth exceeded")
)

type CodeInfo struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Creator string `json:"creator"`
}

type ContractInfo struct {
	Address string `json:"address"`
	CodeID  uint64 `json:"code_id"`
	Label   string `json:"label"`
	Creator string `json:"creator"`
}

type DeployedContract struct {
	CodeId  uint64
	Address string
}

type Ledger struct {
	mu       sync.Mutex
	kv       state.KVStore
	logger   logger.Logger
	codes    map[uint64]Factory
	names    map[string]uint64
	height   int64
	txSeq    uint64
	maxDepth int
}

type Option func(*Ledger)

func WithMaxDepth(depth int) Option {
	return func(l *Ledger) { l.maxDepth = depth }
}

// WithStartHeight sets the height of the last committed block.
func WithStartHeight(height int64) Option {
	return func(l *Ledger) { l.height = height }
}

// New returns a ledger persisting into kv. Stored code lives in memory only, so a ledger
// reopened over the same kv needs its codes stored again in the same order.
func New(kv state.KVStore, l logger.Logger, opts ...Option) *Ledger {
	ledger := &Ledger{
		kv:       kv,
		logger:   l,
		codes:    make(map[uint64]Factory),
		names:    make(map[string]uint64),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(ledger)
	}
	return ledger
}

func (l *Ledger) Height() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height
}

// AdvanceBlocks moves the chain forward by n empty blocks.
func (l *Ledger) AdvanceBlocks(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > 0 {
		l.height += n
	}
	return l.height
}

// GenerateAddress derives a stable account address from uid.
func (l *Ledger) GenerateAddress(uid string) string {
	return mustBech32(tmhash.SumTruncated([]byte("account/" + uid)))
}

// FundAddress mints coins into address.
func (l *Ledger) FundAddress(ctx context.Context, address string, coins sdk.Coins) (*host.TxResult, error) {
	return l.commit(ctx, "fund/"+address, func(t *txn) (*Response, error) {
		if err := mint(ctx, t.store, address, coins); err != nil {
			return nil, err
		}
		t.events = append(t.events, transferEvent("", address, coins))
		return &Response{}, nil
	})
}

// Send moves coins between two accounts.
func (l *Ledger) Send(ctx context.Context, from, to string, coins sdk.Coins) (*host.TxResult, error) {
	return l.commit(ctx, "send/"+from+"/"+to, func(t *txn) (*Response, error) {
		if err := transfer(ctx, t.store, from, to, coins); err != nil {
			return nil, err
		}
		t.events = append(t.events, transferEvent(from, to, coins))
		return &Response{}, nil
	})
}

func (l *Ledger) Balance(ctx context.Context, address, denom string) (sdk.Coin, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	amount, err := balanceOf(ctx, l.kv, address, denom)
	if err != nil {
		return sdk.Coin{}, err
	}
	return sdk.NewCoin(denom, amount), nil
}

func (l *Ledger) Balances(ctx context.Context, address string) (sdk.Coins, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return balancesOf(ctx, l.kv, address)
}

// StoreCode registers factory under name and returns a result carrying the "store_code" event.
func (l *Ledger) StoreCode(ctx context.Context, name string, factory Factory, from string) (*host.TxResult, error) {
	l.mu.Lock()
	if _, ok := l.names[name]; ok {
		l.mu.Unlock()
		return nil, fmt.Errorf("code %q already stored", name)
	}
	id := uint64(len(l.codes) + 1)
	l.codes[id] = factory
	l.names[name] = id
	l.mu.Unlock()

	return l.commit(ctx, "store/"+name, func(t *txn) (*Response, error) {
		if err := state.SetJSON(ctx, t.store, codePrefix+strconv.FormatUint(id, 10), CodeInfo{ID: id, Name: name, Creator: from}); err != nil {
			return nil, err
		}
		t.events = append(t.events, abci.Event{Type: "store_code", Attributes: []abci.EventAttribute{
			{Key: "code_id", Value: strconv.FormatUint(id, 10)},
		}})
		return &Response{}, nil
	})
}

// CodeID returns the id a code was stored under.
func (l *Ledger) CodeID(name string) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.names[name]
	return id, ok
}

func (l *Ledger) Instantiate(ctx context.Context, from string, codeID uint64, label string, msg []byte, funds sdk.Coins) (string, *host.TxResult, error) {
	var addr string
	res, err := l.commit(ctx, from+"/instantiate", func(t *txn) (*Response, error) {
		var resp *Response
		var err error
		addr, resp, err = t.instantiate(ctx, from, codeID, label, msg, funds)
		return resp, err
	})
	if res == nil {
		return "", nil, err
	}
	return addr, res, err
}

// DeployCode stores factory and instantiates it in one go.
func (l *Ledger) DeployCode(ctx context.Context, name string, factory Factory, initMsg []byte, label, from string) (*DeployedContract, error) {
	res, err := l.StoreCode(ctx, name, factory, from)
	if err != nil {
		return nil, err
	}
	codeID, err := GetCodeId(res)
	if err != nil {
		return nil, err
	}
	_, res, err = l.Instantiate(ctx, from, codeID, label, initMsg, nil)
	if err != nil {
		return nil, err
	}
	addr, err := GetContractAddress(res)
	if err != nil {
		return nil, err
	}
	return &DeployedContract{CodeId: codeID, Address: addr}, nil
}

// Execute runs msg on contract as from. A contract that returns a response along with an error
// has its writes committed; the result is returned together with the error.
func (l *Ledger) Execute(ctx context.Context, from, contract string, msg []byte, funds sdk.Coins) (*host.TxResult, error) {
	return l.commit(ctx, from+"/"+contract+"/"+string(msg), func(t *txn) (*Response, error) {
		return t.execute(ctx, from, contract, msg, funds)
	})
}

// Query runs a smart query against the committed state.
func (l *Ledger) Query(ctx context.Context, contract string, msg []byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.newTxn()
	return t.query(ctx, contract, msg)
}

func (l *Ledger) ContractInfo(ctx context.Context, address string) (ContractInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return contractInfo(ctx, l.kv, address)
}

// HostFor returns a host that signs as address.
func (l *Ledger) HostFor(address string) *AccountHost {
	return &AccountHost{ledger: l, address: address}
}

func (l *Ledger) newTxn() *txn {
	root := state.NewCacheStore(l.kv)
	return &txn{
		ledger: l,
		root:   root,
		store:  root,
		height: l.height,
	}
}

// commit runs fn in a new block. The block is kept when fn returns a response.
func (l *Ledger) commit(ctx context.Context, seed string, fn func(t *txn) (*Response, error)) (*host.TxResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.height++
	l.txSeq++
	t := l.newTxn()
	t.hash = cmtbytes.HexBytes(tmtypes.Tx(fmt.Sprintf("%d/%d/%s", t.height, l.txSeq, seed)).Hash()).String()

	resp, err := fn(t)
	if resp == nil {
		l.logger.Debug("tx reverted", logger.WithField("height", t.height), logger.WithField("err", err))
		return nil, err
	}
	if werr := t.root.Write(ctx); werr != nil {
		return nil, werr
	}
	return &host.TxResult{Height: t.height, TxHash: t.hash, Events: t.events, Data: resp.Data}, err
}

func contractInfo(ctx context.Context, kv state.KVStore, address string) (ContractInfo, error) {
	var info ContractInfo
	err := state.GetJSON(ctx, kv, contractPrefix+address, &info)
	if errors.Is(err, state.ErrKeyNotFound) {
		return ContractInfo{}, fmt.Errorf("%w: %s", ErrUnknownContract, address)
	}
	return info, err
}

// GetCodeId reads the code id out of a store result.
func GetCodeId(res *host.TxResult) (uint64, error) {
	v, ok := res.Attribute("store_code", "code_id")
	if !ok {
		return 0, errors.New("code_id not found")
	}
	return strconv.ParseUint(v, 10, 64)
}

// GetContractAddress reads the first instantiated address out of a result.
func GetContractAddress(res *host.TxResult) (string, error) {
	v, ok := res.Attribute("instantiate", "_contract_address")
	if !ok {
		return "", errors.New("_contract_address not found")
	}
	return v, nil
}

func mustBech32(bz []byte) string {
	addr, err := sdk.Bech32ifyAddressBytes(Bech32Prefix, bz)
	if err != nil {
		panic(err)
	}
	return addr
}

func transferEvent(from, to string, coins sdk.Coins) abci.Event {
	attrs := []abci.EventAttribute{{Key: "recipient", Value: to}}
	if from != "" {
		attrs = append(attrs, abci.EventAttribute{Key: "sender", Value: from})
	}
	attrs = append(attrs, abci.EventAttribute{Key: "amount", Value: coins.String()})
	return abci.Event{Type: "transfer", Attributes: attrs}
}
