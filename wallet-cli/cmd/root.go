package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Terrorbear/anchor-guardian/wallet-cli/conf"
)

func Cmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "smartwallet",
		Short: "Operate a guarded smart wallet and its multisig.",
	}

	rootCmd.AddCommand(chainCmd())
	rootCmd.AddCommand(envelopeCmd())
	rootCmd.AddCommand(walletCmd())
	rootCmd.AddCommand(multisigCmd())
	rootCmd.AddCommand(scenarioCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(auditCmd())

	rootCmd.Version = conf.GetVersion()

	return rootCmd
}
