package wallet

import (
	"context"
	"fmt"

	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/envelope"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

// Execute asks the wallet to forward payload to target, signed by userKeyName. The sender must be
// the owner, the multisig, or a hot wallet the guard admits.
func Execute(userKeyName, target, payload, funds string) {
	ctx := context.Background()
	s := newSigningService(userKeyName)
	command, err := envelope.Encode(target, payload, funds)
	if err != nil {
		panic(err)
	}
	msg := wallet.ExecuteMsg{Execute: &wallet.Execute{Command: command}}
	raw, err := msg.Marshal()
	if err != nil {
		panic(err)
	}
	resp, err := s.Host.Submit(ctx, s.Wallet, raw, nil)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Execute success. txn: %s height: %d\n", resp.TxHash, resp.Height)
}
