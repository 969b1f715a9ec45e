package localterra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
)

const bankPrefix = "bank:"

var ErrInsufficientFunds = errors.New("insufficient funds")

func balanceKey(addr, denom string) string {
	return bankPrefix + addr + ":" + denom
}

func balanceOf(ctx context.Context, kv state.KVStore, addr, denom string) (math.Int, error) {
	raw, err := kv.Get(ctx, balanceKey(addr, denom))
	if errors.Is(err, state.ErrKeyNotFound) {
		return math.ZeroInt(), nil
	}
	if err != nil {
		return math.Int{}, err
	}
	amount, ok := math.NewIntFromString(string(raw))
	if !ok {
		return math.Int{}, fmt.Errorf("corrupt balance %s/%s", addr, denom)
	}
	return amount, nil
}

func balancesOf(ctx context.Context, kv state.KVStore, addr string) (sdk.Coins, error) {
	prefix := bankPrefix + addr + ":"
	keys, err := kv.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var coins sdk.Coins
	for _, key := range keys {
		denom := strings.TrimPrefix(key, prefix)
		amount, err := balanceOf(ctx, kv, addr, denom)
		if err != nil {
			return nil, err
		}
		coins = coins.Add(sdk.NewCoin(denom, amount))
	}
	return coins, nil
}

func setBalance(ctx context.Context, kv state.KVStore, addr, denom string, amount math.Int) error {
	if amount.IsZero() {
		return kv.Delete(ctx, balanceKey(addr, denom))
	}
	return kv.Set(ctx, balanceKey(addr, denom), []byte(amount.String()))
}

func mint(ctx context.Context, kv state.KVStore, addr string, coins sdk.Coins) error {
	for _, c := range coins {
		bal, err := balanceOf(ctx, kv, addr, c.Denom)
		if err != nil {
			return err
		}
		if err := setBalance(ctx, kv, addr, c.Denom, bal.Add(c.Amount)); err != nil {
			return err
		}
	}
	return nil
}

func transfer(ctx context.Context, kv state.KVStore, from, to string, coins sdk.Coins) error {
	if err := coins.Validate(); err != nil {
		return err
	}
	for _, c := range coins {
		bal, err := balanceOf(ctx, kv, from, c.Denom)
		if err != nil {
			return err
		}
		if bal.LT(c.Amount) {
			return fmt.Errorf("%w: %s has %s%s, needs %s", ErrInsufficientFunds, from, bal, c.Denom, c)
		}
		if err := setBalance(ctx, kv, from, c.Denom, bal.Sub(c.Amount)); err != nil {
			return err
		}
	}
	return mint(ctx, kv, to, coins)
}
