// Package policy owns the wallet configuration: owner, governing multisig, whitelisted contracts
// and the hot-wallet registry. Only the owner or the governing multisig may change it.
package policy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	walleterrors "github.com/Terrorbear/anchor-guardian/smartwallet/errors"
	"github.com/Terrorbear/anchor-guardian/smartwallet/events"
	"github.com/Terrorbear/anchor-guardian/smartwallet/state"
	"github.com/Terrorbear/anchor-guardian/wallet-api/logger"
)

type storedConfig struct {
	Owner                string                `json:"owner"`
	GoverningMultisig    string                `json:"governing_multisig"`
	GasDenom             string                `json:"gas_denom"`
	WhitelistedContracts []WhitelistedContract `json:"whitelisted_contracts"`
}

type Store struct {
	kv     state.KVStore
	sink   events.Sink
	logger logger.Logger
}

func NewStore(kv state.KVStore, sink events.Sink, l logger.Logger) *Store {
	if sink == nil {
		sink = events.Nop{}
	}
	return &Store{kv: kv, sink: sink, logger: l}
}

// Init writes the initial configuration. It fails if the wallet is already configured.
func (s *Store) Init(ctx context.Context, cfg WalletConfig) error {
	exists, err := state.Has(ctx, s.kv, state.PKConfig)
	if err != nil {
		return err
	}
	if exists {
		return errorsmod.Wrap(walleterrors.ErrInvalidRequest, "wallet already initialized")
	}
	if cfg.Owner == "" {
		return errorsmod.Wrap(walleterrors.ErrInvalidRequest, "owner is required")
	}
	if cfg.GasDenom == "" {
		cfg.GasDenom = DefaultGasDenom
	}
	if err := sdk.ValidateDenom(cfg.GasDenom); err != nil {
		return errorsmod.Wrap(walleterrors.ErrInvalidRequest, err.Error())
	}

	stored := storedConfig{
		Owner:             cfg.Owner,
		GoverningMultisig: cfg.GoverningMultisig,
		GasDenom:          cfg.GasDenom,
	}
	for _, wc := range cfg.WhitelistedContracts {
		if err := validateContract(wc); err != nil {
			return err
		}
		if _, dup := (WalletConfig{WhitelistedContracts: stored.WhitelistedContracts}).Contract(wc.Address); dup {
			return errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "duplicate whitelisted contract %s", wc.Address)
		}
		stored.WhitelistedContracts = append(stored.WhitelistedContracts, wc)
	}

	seen := make(map[string]bool, len(cfg.HotWallets))
	for _, hw := range cfg.HotWallets {
		if seen[hw.Address] {
			return errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "duplicate hot wallet %s", hw.Address)
		}
		seen[hw.Address] = true
		if _, err := s.putHotWallet(ctx, hw); err != nil {
			return err
		}
	}
	if err := state.SetJSON(ctx, s.kv, state.PKConfig, stored); err != nil {
		return err
	}
	s.emit(ctx, events.New(events.TypePolicy, "init", cfg.Owner, events.HeightFrom(ctx)).
		With("owner", cfg.Owner).
		With("governing_multisig", cfg.GoverningMultisig))
	return nil
}

func (s *Store) Config(ctx context.Context) (WalletConfig, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return WalletConfig{}, err
	}
	hotWallets, err := s.HotWallets(ctx)
	if err != nil {
		return WalletConfig{}, err
	}
	return WalletConfig{
		Owner:                stored.Owner,
		GoverningMultisig:    stored.GoverningMultisig,
		GasDenom:             stored.GasDenom,
		WhitelistedContracts: stored.WhitelistedContracts,
		HotWallets:           hotWallets,
	}, nil
}

// Settings returns the configuration without the hot-wallet registry.
func (s *Store) Settings(ctx context.Context) (WalletConfig, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return WalletConfig{}, err
	}
	return WalletConfig{
		Owner:                stored.Owner,
		GoverningMultisig:    stored.GoverningMultisig,
		GasDenom:             stored.GasDenom,
		WhitelistedContracts: stored.WhitelistedContracts,
	}, nil
}

// HotWallet returns the policy of identity, or ErrNotFound.
func (s *Store) HotWallet(ctx context.Context, identity string) (HotWallet, error) {
	var hw HotWallet
	err := state.GetJSON(ctx, s.kv, state.PKHotWallet+identity, &hw)
	if errors.Is(err, state.ErrKeyNotFound) {
		return HotWallet{}, errorsmod.Wrapf(walleterrors.ErrNotFound, "hot wallet %s", identity)
	}
	return hw, err
}

// HotWallets lists every registered hot wallet ordered by address.
func (s *Store) HotWallets(ctx context.Context) ([]HotWallet, error) {
	keys, err := s.kv.Keys(ctx, state.PKHotWallet)
	if err != nil {
		return nil, err
	}
	out := make([]HotWallet, 0, len(keys))
	for _, key := range keys {
		var hw HotWallet
		if err := state.GetJSON(ctx, s.kv, key, &hw); err != nil {
			return nil, err
		}
		out = append(out, hw)
	}
	return out, nil
}

func (s *Store) IsHotWallet(ctx context.Context, identity string) (bool, error) {
	return state.Has(ctx, s.kv, state.PKHotWallet+identity)
}

func (s *Store) IsWhitelisted(ctx context.Context, address string) (bool, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	_, ok := WalletConfig{WhitelistedContracts: stored.WhitelistedContracts}.Contract(address)
	return ok, nil
}

// UpsertHotWallet creates or replaces a hot-wallet policy and returns it with its new revision.
// A new revision replenishes the wallet's gas tank.
func (s *Store) UpsertHotWallet(ctx context.Context, caller string, hw HotWallet) (HotWallet, error) {
	if _, err := s.authorize(ctx, caller); err != nil {
		return HotWallet{}, err
	}
	saved, err := s.putHotWallet(ctx, hw)
	if err != nil {
		return HotWallet{}, err
	}
	s.emit(ctx, events.New(events.TypePolicy, "upsert_hot", caller, events.HeightFrom(ctx)).
		With("address", saved.Address).
		With("gas_cooldown", strconv.FormatUint(saved.GasCooldown, 10)).
		With("gas_tank_max", saved.GasTankMax.String()).
		With("whitelisted_messages", kindList(saved.WhitelistedMessages)).
		With("revision", strconv.FormatUint(saved.Revision, 10)))
	return saved, nil
}

func (s *Store) RemoveHotWallet(ctx context.Context, caller, identity string) error {
	if _, err := s.authorize(ctx, caller); err != nil {
		return err
	}
	exists, err := s.IsHotWallet(ctx, identity)
	if err != nil {
		return err
	}
	if !exists {
		return errorsmod.Wrapf(walleterrors.ErrNotFound, "hot wallet %s", identity)
	}
	if err := s.kv.Delete(ctx, state.PKHotWallet+identity); err != nil {
		return err
	}
	s.emit(ctx, events.New(events.TypePolicy, "rm_hot", caller, events.HeightFrom(ctx)).With("address", identity))
	return nil
}

// WhitelistContract inserts entry, or replaces the entry with the same address in place.
func (s *Store) WhitelistContract(ctx context.Context, caller string, entry WhitelistedContract) error {
	stored, err := s.authorize(ctx, caller)
	if err != nil {
		return err
	}
	if err := validateContract(entry); err != nil {
		return err
	}
	replaced := false
	for i, wc := range stored.WhitelistedContracts {
		if wc.Address == entry.Address {
			stored.WhitelistedContracts[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		stored.WhitelistedContracts = append(stored.WhitelistedContracts, entry)
	}
	if err := state.SetJSON(ctx, s.kv, state.PKConfig, stored); err != nil {
		return err
	}
	s.emit(ctx, events.New(events.TypePolicy, "upsert_contract", caller, events.HeightFrom(ctx)).
		With("address", entry.Address).
		With("label", entry.Label).
		With("code_id", strconv.FormatUint(entry.CodeID, 10)))
	return nil
}

func (s *Store) RemoveContract(ctx context.Context, caller, address string) error {
	stored, err := s.authorize(ctx, caller)
	if err != nil {
		return err
	}
	idx := -1
	for i, wc := range stored.WhitelistedContracts {
		if wc.Address == address {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errorsmod.Wrapf(walleterrors.ErrNotFound, "whitelisted contract %s", address)
	}
	stored.WhitelistedContracts = append(stored.WhitelistedContracts[:idx], stored.WhitelistedContracts[idx+1:]...)
	if err := state.SetJSON(ctx, s.kv, state.PKConfig, stored); err != nil {
		return err
	}
	s.emit(ctx, events.New(events.TypePolicy, "rm_contract", caller, events.HeightFrom(ctx)).With("address", address))
	return nil
}

func (s *Store) UpdateOwner(ctx context.Context, caller, owner string) error {
	stored, err := s.authorize(ctx, caller)
	if err != nil {
		return err
	}
	if owner == "" {
		return errorsmod.Wrap(walleterrors.ErrInvalidRequest, "owner is required")
	}
	previous := stored.Owner
	stored.Owner = owner
	if err := state.SetJSON(ctx, s.kv, state.PKConfig, stored); err != nil {
		return err
	}
	s.emit(ctx, events.New(events.TypePolicy, "update_owner", caller, events.HeightFrom(ctx)).
		With("previous", previous).
		With("owner", owner))
	return nil
}

func (s *Store) load(ctx context.Context) (storedConfig, error) {
	var stored storedConfig
	err := state.GetJSON(ctx, s.kv, state.PKConfig, &stored)
	if errors.Is(err, state.ErrKeyNotFound) {
		return storedConfig{}, errorsmod.Wrap(walleterrors.ErrNotFound, "wallet is not initialized")
	}
	return stored, err
}

func (s *Store) authorize(ctx context.Context, caller string) (storedConfig, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return storedConfig{}, err
	}
	cfg := WalletConfig{Owner: stored.Owner, GoverningMultisig: stored.GoverningMultisig}
	if !cfg.IsAdmin(caller) {
		return storedConfig{}, errorsmod.Wrapf(walleterrors.ErrUnauthorized, "%s may not edit the wallet policy", caller)
	}
	return stored, nil
}

func (s *Store) putHotWallet(ctx context.Context, hw HotWallet) (HotWallet, error) {
	if hw.Address == "" {
		return HotWallet{}, errorsmod.Wrap(walleterrors.ErrInvalidRequest, "hot wallet address is required")
	}
	if hw.GasTankMax.IsNil() {
		hw.GasTankMax = math.ZeroUint()
	}
	for _, k := range hw.WhitelistedMessages {
		if !k.Valid() {
			return HotWallet{}, errorsmod.Wrapf(walleterrors.ErrInvalidRequest, "message kind %d is not defined in version %d", k, MessageKindsVersion)
		}
	}
	hw.WhitelistedMessages = normalizeKinds(hw.WhitelistedMessages)

	rev, err := state.NextSequence(ctx, s.kv, state.PKRevision)
	if err != nil {
		return HotWallet{}, err
	}
	hw.Revision = rev
	if err := state.SetJSON(ctx, s.kv, state.PKHotWallet+hw.Address, hw); err != nil {
		return HotWallet{}, err
	}
	return hw, nil
}

func (s *Store) emit(ctx context.Context, event events.Event) {
	if err := s.sink.Emit(ctx, event); err != nil {
		s.logger.Error("failed to emit policy event", logger.WithField("action", event.Action), logger.WithField("err", err))
	}
}

func validateContract(wc WhitelistedContract) error {
	if wc.Address == "" {
		return errorsmod.Wrap(walleterrors.ErrInvalidRequest, "contract address is required")
	}
	return nil
}

func kindList(kinds []MessageKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%d", uint32(k))
	}
	return strings.Join(parts, ",")
}
