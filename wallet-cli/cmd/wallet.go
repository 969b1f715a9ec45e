package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/wallet"
)

func walletCmd() *cobra.Command {
	subCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Smart wallet related commands",
	}

	var funds string
	executeCmd := &cobra.Command{
		Use:   "execute <userKeyName> <contractAddress> <payloadJSON>",
		Short: "To forward a call through the wallet.",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			wallet.Execute(args[0], args[1], args[2], funds)
		},
	}
	executeCmd.Flags().StringVar(&funds, "funds", "", "coins the wallet attaches, e.g. 100uusd")

	configCmd := &cobra.Command{
		Use:   "get-config",
		Short: "To query the wallet configuration.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			wallet.Config()
		},
	}
	hotWalletCmd := &cobra.Command{
		Use:   "get-hot-wallet <address>",
		Short: "To query one hot wallet.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			wallet.HotWallet(args[0])
		},
	}
	hotWalletsCmd := &cobra.Command{
		Use:   "get-hot-wallets",
		Short: "To query every hot wallet.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			wallet.HotWallets()
		},
	}

	var checkFunds string
	canExecuteCmd := &cobra.Command{
		Use:   "can-execute <sender> <contractAddress> <payloadJSON>",
		Short: "To check whether sender may forward a call, without charging.",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			wallet.CanExecute(args[0], args[1], args[2], checkFunds)
		},
	}
	canExecuteCmd.Flags().StringVar(&checkFunds, "funds", "", "coins the wallet would attach")

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "To export the configuration and hot wallets as yaml.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			wallet.Export(args[0])
		},
	}

	subCmd.AddCommand(executeCmd)
	subCmd.AddCommand(configCmd)
	subCmd.AddCommand(hotWalletCmd)
	subCmd.AddCommand(hotWalletsCmd)
	subCmd.AddCommand(canExecuteCmd)
	subCmd.AddCommand(exportCmd)

	return subCmd
}
