package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/base"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/envelope"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

func Config() {
	s := NewService()
	out, err := wallet.UnmarshalConfigResponse(s.query(context.Background(), &wallet.QueryMsg{Config: &wallet.Config{}}))
	if err != nil {
		panic(err)
	}
	base.PrintJSON(out)
}

func HotWallet(address string) {
	s := NewService()
	out, err := wallet.UnmarshalHotWalletResponse(s.query(context.Background(), &wallet.QueryMsg{HotWallet: &wallet.QueryHot{Address: address}}))
	if err != nil {
		panic(err)
	}
	base.PrintJSON(out)
}

func HotWallets() {
	s := NewService()
	out, err := wallet.UnmarshalHotWalletsResponse(s.query(context.Background(), &wallet.QueryMsg{HotWallets: &wallet.HotWallets{}}))
	if err != nil {
		panic(err)
	}
	base.PrintJSON(out.HotWallets)
}

// CanExecute dry-runs the guard for sender against a command addressed to target.
func CanExecute(sender, target, payload, funds string) {
	command, err := envelope.Encode(target, payload, funds)
	if err != nil {
		panic(err)
	}
	s := NewService()
	out, err := wallet.UnmarshalCanExecuteResponse(s.query(context.Background(), &wallet.QueryMsg{CanExecute: &wallet.CanExecute{Command: command, Sender: sender}}))
	if err != nil {
		panic(err)
	}
	base.PrintJSON(out)
}

// Export writes the wallet configuration and hot wallets as yaml to path.
func Export(path string) {
	ctx := context.Background()
	s := NewService()
	cfg, err := wallet.UnmarshalConfigResponse(s.query(ctx, &wallet.QueryMsg{Config: &wallet.Config{}}))
	if err != nil {
		panic(err)
	}
	hws, err := wallet.UnmarshalHotWalletsResponse(s.query(ctx, &wallet.QueryMsg{HotWallets: &wallet.HotWallets{}}))
	if err != nil {
		panic(err)
	}

	doc, err := toYAMLTree(map[string]interface{}{
		"wallet":      s.Wallet,
		"config":      cfg,
		"hot_wallets": hws.HotWallets,
	})
	if err != nil {
		panic(err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		panic(err)
	}
	fmt.Printf("Exported %d hot wallets to %s\n", len(hws.HotWallets), path)
}

// toYAMLTree round-trips v through json so the yaml keys follow the json field names.
func toYAMLTree(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
