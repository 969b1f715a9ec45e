package smartwallet

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"

	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/policy"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

func walletConfig(owner, multisig string, gasDenom *string, hws []wallet.HotWallet, wcs []wallet.WhitelistedContract) (policy.WalletConfig, error) {
	cfg := policy.WalletConfig{Owner: owner, GoverningMultisig: multisig}
	if gasDenom != nil {
		cfg.GasDenom = *gasDenom
	}
	for _, wc := range wcs {
		entry, err := whitelistedContract(wc)
		if err != nil {
			return policy.WalletConfig{}, err
		}
		cfg.WhitelistedContracts = append(cfg.WhitelistedContracts, entry)
	}
	for _, h := range hws {
		hw, err := hotWallet(h)
		if err != nil {
			return policy.WalletConfig{}, err
		}
		cfg.HotWallets = append(cfg.HotWallets, hw)
	}
	return cfg, nil
}

func whitelistedContract(wc wallet.WhitelistedContract) (policy.WhitelistedContract, error) {
	if wc.CodeID < 0 {
		return policy.WhitelistedContract{}, errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "negative code_id for %s", wc.Address)
	}
	return policy.WhitelistedContract{Address: wc.Address, Label: wc.Label, CodeID: uint64(wc.CodeID)}, nil
}

func hotWallet(h wallet.HotWallet) (policy.HotWallet, error) {
	if h.GasCooldown < 0 {
		return policy.HotWallet{}, errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "negative gas_cooldown for %s", h.Address)
	}
	tankMax := math.ZeroUint()
	if h.GasTankMax != "" {
		var err error
		tankMax, err = math.ParseUint(h.GasTankMax)
		if err != nil {
			return policy.HotWallet{}, errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "gas_tank_max %q: %v", h.GasTankMax, err)
		}
	}
	kinds := make([]policy.MessageKind, 0, len(h.WhitelistedMessages))
	for _, k := range h.WhitelistedMessages {
		if k < 0 || k > int64(^uint32(0)) {
			return policy.HotWallet{}, errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "message kind %d out of range", k)
		}
		kinds = append(kinds, policy.MessageKind(k))
	}
	return policy.HotWallet{
		Address:             h.Address,
		Label:               h.Label,
		GasCooldown:         uint64(h.GasCooldown),
		GasTankMax:          tankMax,
		WhitelistedMessages: kinds,
	}, nil
}
