package localterra

import (
	"context"
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"

	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/cw20"
)

type cw20Contract struct{}

// CW20Code deploys a minimal cw20 token: balances, allowances, minting and send with the
// receive hook.
func CW20Code() Factory {
	return func() Contract { return cw20Contract{} }
}

type tokenInfo struct {
	Name        string     `json:"name"`
	Symbol      string     `json:"symbol"`
	Decimals    int64      `json:"decimals"`
	TotalSupply math.Uint  `json:"total_supply"`
	Minter      string     `json:"minter,omitempty"`
	Cap         *math.Uint `json:"cap,omitempty"`
}

func (cw20Contract) Instantiate(ctx context.Context, env Env, raw []byte) (*Response, error) {
	msg, err := cw20.UnmarshalInstantiateMsg(raw)
	if err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	info := tokenInfo{Name: msg.Name, Symbol: msg.Symbol, Decimals: msg.Decimals, TotalSupply: math.ZeroUint()}
	if msg.Mint != nil {
		info.Minter = msg.Mint.Minter
		if msg.Mint.Cap != nil {
			limit, err := parseAmount(*msg.Mint.Cap)
			if err != nil {
				return nil, err
			}
			info.Cap = &limit
		}
	}
	for _, c := range msg.InitialBalances {
		amount, err := parseAmount(c.Amount)
		if err != nil {
			return nil, err
		}
		if err := credit(ctx, env.Store, c.Address, amount); err != nil {
			return nil, err
		}
		info.TotalSupply = info.TotalSupply.Add(amount)
	}
	if err := state.SetJSON(ctx, env.Store, state.PKTokenInfo, info); err != nil {
		return nil, err
	}
	return &Response{Attributes: eventAttrs("action", "instantiate", "symbol", msg.Symbol)}, nil
}

func (cw20Contract) Execute(ctx context.Context, env Env, raw []byte) (*Response, error) {
	msg, err := cw20.UnmarshalExecuteMsg(raw)
	if err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	switch {
	case msg.Transfer != nil:
		amount, err := parseAmount(msg.Transfer.Amount)
		if err != nil {
			return nil, err
		}
		if err := move(ctx, env.Store, env.Sender, msg.Transfer.Recipient, amount); err != nil {
			return nil, err
		}
		return &Response{Attributes: eventAttrs("action", "transfer", "from", env.Sender, "to", msg.Transfer.Recipient, "amount", amount.String())}, nil
	case msg.Send != nil:
		amount, err := parseAmount(msg.Send.Amount)
		if err != nil {
			return nil, err
		}
		if err := move(ctx, env.Store, env.Sender, msg.Send.Contract, amount); err != nil {
			return nil, err
		}
		hook := cw20.ReceiveMsg{Receive: cw20.Cw20ReceiveMsg{Amount: amount.String(), Msg: msg.Send.Msg, Sender: env.Sender}}
		payload, err := hook.Marshal()
		if err != nil {
			return nil, err
		}
		if _, err := env.Host.Submit(ctx, msg.Send.Contract, payload, nil); err != nil {
			return nil, fmt.Errorf("receive hook on %s: %w", msg.Send.Contract, err)
		}
		return &Response{Attributes: eventAttrs("action", "send", "from", env.Sender, "to", msg.Send.Contract, "amount", amount.String())}, nil
	case msg.IncreaseAllowance != nil:
		amount, err := parseAmount(msg.IncreaseAllowance.Amount)
		if err != nil {
			return nil, err
		}
		key := allowanceKey(env.Sender, msg.IncreaseAllowance.Spender)
		current, err := readAmount(ctx, env.Store, key)
		if err != nil {
			return nil, err
		}
		if err := writeAmount(ctx, env.Store, key, current.Add(amount)); err != nil {
			return nil, err
		}
		return &Response{Attributes: eventAttrs("action", "increase_allowance", "owner", env.Sender, "spender", msg.IncreaseAllowance.Spender, "amount", amount.String())}, nil
	case msg.TransferFrom != nil:
		amount, err := parseAmount(msg.TransferFrom.Amount)
		if err != nil {
			return nil, err
		}
		key := allowanceKey(msg.TransferFrom.Owner, env.Sender)
		allowed, err := readAmount(ctx, env.Store, key)
		if err != nil {
			return nil, err
		}
		if allowed.LT(amount) {
			return nil, errorsmod.Wrapf(walleterrors.ErrUnauthorized, "allowance %s is below %s", allowed, amount)
		}
		if err := writeAmount(ctx, env.Store, key, allowed.Sub(amount)); err != nil {
			return nil, err
		}
		if err := move(ctx, env.Store, msg.TransferFrom.Owner, msg.TransferFrom.Recipient, amount); err != nil {
			return nil, err
		}
		return &Response{Attributes: eventAttrs("action", "transfer_from", "from", msg.TransferFrom.Owner, "to", msg.TransferFrom.Recipient, "by", env.Sender, "amount", amount.String())}, nil
	case msg.Mint != nil:
		amount, err := parseAmount(msg.Mint.Amount)
		if err != nil {
			return nil, err
		}
		var info tokenInfo
		if err := state.GetJSON(ctx, env.Store, state.PKTokenInfo, &info); err != nil {
			return nil, err
		}
		if info.Minter == "" || info.Minter != env.Sender {
			return nil, errorsmod.Wrapf(walleterrors.ErrUnauthorized, "%s cannot mint", env.Sender)
		}
		supply := info.TotalSupply.Add(amount)
		if info.Cap != nil && supply.GT(*info.Cap) {
			return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "minting exceeds cap")
		}
		info.TotalSupply = supply
		if err := credit(ctx, env.Store, msg.Mint.Recipient, amount); err != nil {
			return nil, err
		}
		if err := state.SetJSON(ctx, env.Store, state.PKTokenInfo, info); err != nil {
			return nil, err
		}
		return &Response{Attributes: eventAttrs("action", "mint", "to", msg.Mint.Recipient, "amount", amount.String())}, nil
	}
	return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "unknown cw20 message")
}

func (cw20Contract) Query(ctx context.Context, env Env, raw []byte) ([]byte, error) {
	msg, err := cw20.UnmarshalQueryMsg(raw)
	if err != nil {
		return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}
	switch {
	case msg.Balance != nil:
		bal, err := readAmount(ctx, env.Store, state.PKBalance+msg.Balance.Address)
		if err != nil {
			return nil, err
		}
		resp := cw20.BalanceResponse{Balance: bal.String()}
		return resp.Marshal()
	case msg.TokenInfo != nil:
		var info tokenInfo
		if err := state.GetJSON(ctx, env.Store, state.PKTokenInfo, &info); err != nil {
			return nil, err
		}
		resp := cw20.TokenInfoResponse{Decimals: info.Decimals, Name: info.Name, Symbol: info.Symbol, TotalSupply: info.TotalSupply.String()}
		return resp.Marshal()
	case msg.Allowance != nil:
		allowed, err := readAmount(ctx, env.Store, allowanceKey(msg.Allowance.Owner, msg.Allowance.Spender))
		if err != nil {
			return nil, err
		}
		resp := cw20.AllowanceResponse{Allowance: allowed.String()}
		return resp.Marshal()
	}
	return nil, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "unknown cw20 query")
}

func parseAmount(s string) (math.Uint, error) {
	amount, err := math.ParseUint(s)
	if err != nil {
		return math.Uint{}, errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "amount %q: %v", s, err)
	}
	if amount.IsZero() {
		return math.Uint{}, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "amount must be positive")
	}
	return amount, nil
}

func allowanceKey(owner, spender string) string {
	return state.PKAllowance + owner + ":" + spender
}

func readAmount(ctx context.Context, kv state.KVStore, key string) (math.Uint, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, state.ErrKeyNotFound) {
		return math.ZeroUint(), nil
	}
	if err != nil {
		return math.Uint{}, err
	}
	return math.ParseUint(string(raw))
}

func writeAmount(ctx context.Context, kv state.KVStore, key string, amount math.Uint) error {
	if amount.IsZero() {
		return kv.Delete(ctx, key)
	}
	return kv.Set(ctx, key, []byte(amount.String()))
}

func credit(ctx context.Context, kv state.KVStore, addr string, amount math.Uint) error {
	bal, err := readAmount(ctx, kv, state.PKBalance+addr)
	if err != nil {
		return err
	}
	return writeAmount(ctx, kv, state.PKBalance+addr, bal.Add(amount))
}

func move(ctx context.Context, kv state.KVStore, from, to string, amount math.Uint) error {
	bal, err := readAmount(ctx, kv, state.PKBalance+from)
	if err != nil {
		return err
	}
	if bal.LT(amount) {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientFunds, from, bal, amount)
	}
	if err := writeAmount(ctx, kv, state.PKBalance+from, bal.Sub(amount)); err != nil {
		return err
	}
	return credit(ctx, kv, to, amount)
}
