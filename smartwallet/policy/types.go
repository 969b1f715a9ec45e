package policy

import (
	"sort"

	"cosmossdk.io/math"
)

const DefaultGasDenom = "uusd"

type WhitelistedContract struct {
	Address string `json:"address"`
	Label   string `json:"label"`
	CodeID  uint64 `json:"code_id"`
}

// HotWallet is the spending policy of one rate limited identity. Revision is assigned by the
// store on every upsert.
type HotWallet struct {
	Address             string        `json:"address"`
	Label               string        `json:"label"`
	GasCooldown         uint64        `json:"gas_cooldown"`
	GasTankMax          math.Uint     `json:"gas_tank_max"`
	WhitelistedMessages []MessageKind `json:"whitelisted_messages"`
	Revision            uint64        `json:"revision,omitempty"`
}

func (h HotWallet) Allows(kind MessageKind) bool {
	for _, k := range h.WhitelistedMessages {
		if k == kind {
			return true
		}
	}
	return false
}

type WalletConfig struct {
	Owner                string                `json:"owner"`
	GoverningMultisig    string                `json:"governing_multisig"`
	GasDenom             string                `json:"gas_denom"`
	WhitelistedContracts []WhitelistedContract `json:"whitelisted_contracts"`
	HotWallets           []HotWallet           `json:"hot_wallets"`
}

// IsAdmin reports whether caller may edit the configuration.
func (c WalletConfig) IsAdmin(caller string) bool {
	if caller == "" {
		return false
	}
	return caller == c.Owner || caller == c.GoverningMultisig
}

func (c WalletConfig) Contract(address string) (WhitelistedContract, bool) {
	for _, wc := range c.WhitelistedContracts {
		if wc.Address == address {
			return wc, true
		}
	}
	return WhitelistedContract{}, false
}

func (c WalletConfig) HotWallet(address string) (HotWallet, bool) {
	for _, hw := range c.HotWallets {
		if hw.Address == address {
			return hw, true
		}
	}
	return HotWallet{}, false
}

// normalizeKinds sorts and de-duplicates kinds.
func normalizeKinds(kinds []MessageKind) []MessageKind {
	out := make([]MessageKind, 0, len(kinds))
	seen := make(map[MessageKind]bool, len(kinds))
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
