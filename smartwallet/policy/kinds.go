package policy

import (
	"fmt"
	"strconv"
)

// MessageKind is the discriminant of a downstream message a hot wallet may be allowed to send.
// Values are part of the stored policy and must never be renumbered; new kinds are appended and
// MessageKindsVersion bumped.
type MessageKind uint32

const MessageKindsVersion = 1

const (
	KindClaimRewards MessageKind = iota
	KindBorrowStable
	KindRepayStable
	KindDepositStable
	KindRedeemStable
	KindLockCollateral
	KindUnlockCollateral
	KindSend
	KindTransfer
	KindIncreaseAllowance
	KindProvideLiquidity
	KindWithdrawLiquidity
	KindSwap
	KindBond
	KindDepositCollateral
	KindWithdrawCollateral

	kindCount
)

const KindUnknown MessageKind = 255

var kindNames = [...]string{
	KindClaimRewards:       "claim_rewards",
	KindBorrowStable:       "borrow_stable",
	KindRepayStable:        "repay_stable",
	KindDepositStable:      "deposit_stable",
	KindRedeemStable:       "redeem_stable",
	KindLockCollateral:     "lock_collateral",
	KindUnlockCollateral:   "unlock_collateral",
	KindSend:               "send",
	KindTransfer:           "transfer",
	KindIncreaseAllowance:  "increase_allowance",
	KindProvideLiquidity:   "provide_liquidity",
	KindWithdrawLiquidity:  "withdraw_liquidity",
	KindSwap:               "swap",
	KindBond:               "bond",
	KindDepositCollateral:  "deposit_collateral",
	KindWithdrawCollateral: "withdraw_collateral",
}

var kindsByName = func() map[string]MessageKind {
	m := make(map[string]MessageKind, len(kindNames))
	for i, name := range kindNames {
		m[name] = MessageKind(i)
	}
	return m
}()

// KindFromName maps a message discriminant such as "borrow_stable" to its kind.
func KindFromName(name string) MessageKind {
	if k, ok := kindsByName[name]; ok {
		return k
	}
	return KindUnknown
}

func (k MessageKind) Valid() bool {
	return k < kindCount
}

func (k MessageKind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return "unknown(" + strconv.FormatUint(uint64(k), 10) + ")"
}

// AllKinds lists every defined kind in discriminant order.
func AllKinds() []MessageKind {
	out := make([]MessageKind, 0, kindCount)
	for k := MessageKind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind accepts either a discriminant ("1") or a name ("borrow_stable").
func ParseKind(s string) (MessageKind, error) {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		k := MessageKind(n)
		if !k.Valid() {
			return KindUnknown, fmt.Errorf("message kind %d is not defined", n)
		}
		return k, nil
	}
	k := KindFromName(s)
	if k == KindUnknown {
		return KindUnknown, fmt.Errorf("unknown message kind %q", s)
	}
	return k, nil
}
