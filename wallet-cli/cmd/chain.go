package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/chain"
)

func chainCmd() *cobra.Command {
	subCmd := &cobra.Command{
		Use:   "chain",
		Short: "Chain related commands",
	}
	queryNodeCmd := &cobra.Command{
		Use:   "get-node",
		Short: "To query the node status info.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			chain.QueryNode()
		},
	}
	queryTxnCmd := &cobra.Command{
		Use:   "get-txn <txnHash>",
		Short: "To query the transaction.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			chain.QueryTxn(args[0])
		},
	}
	queryAccountCmd := &cobra.Command{
		Use:   "get-account <accountAddress>",
		Short: "To query the account.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			chain.QueryAccount(args[0])
		},
	}
	queryBalancesCmd := &cobra.Command{
		Use:   "get-balances <accountAddress>",
		Short: "To query the native balances of an account.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			chain.QueryBalances(args[0])
		},
	}

	subCmd.AddCommand(queryNodeCmd)
	subCmd.AddCommand(queryTxnCmd)
	subCmd.AddCommand(queryAccountCmd)
	subCmd.AddCommand(queryBalancesCmd)

	return subCmd
}
