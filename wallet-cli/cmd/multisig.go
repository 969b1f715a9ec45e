package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/multisig"
	"github.com/Terrorbear/anchor-guardian/wallet-cw/wallet"
)

func multisigCmd() *cobra.Command {
	subCmd := &cobra.Command{
		Use:   "multisig",
		Short: "Governing multisig related commands",
	}

	proposeCmd := &cobra.Command{
		Use:   "propose <userKeyName> <title> <description> <envelopeJSON>...",
		Short: "To propose one or more raw envelopes.",
		Args:  cobra.MinimumNArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			multisig.Propose(args[0], args[1], args[2], args[3:])
		},
	}

	var funds string
	proposeForwardCmd := &cobra.Command{
		Use:   "propose-forward <userKeyName> <title> <contractAddress> <payloadJSON>",
		Short: "To propose that the wallet forwards a call.",
		Args:  cobra.ExactArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			multisig.ProposeForward(args[0], args[1], args[2], args[3], funds)
		},
	}
	proposeForwardCmd.Flags().StringVar(&funds, "funds", "", "coins the wallet attaches, e.g. 100uusd")

	var messages []int64
	proposeUpsertHotCmd := &cobra.Command{
		Use:   "propose-upsert-hot <userKeyName> <address> <label> <gasCooldown> <gasTankMax>",
		Short: "To propose registering or replacing a hot wallet.",
		Args:  cobra.ExactArgs(5),
		Run: func(cmd *cobra.Command, args []string) {
			cooldown := parseInt(args[3], "gasCooldown")
			if _, err := strconv.ParseUint(args[4], 10, 64); err != nil {
				panic(fmt.Sprintf("gasTankMax must be an integer. Error: %s\n", err))
			}
			multisig.ProposeUpsertHot(args[0], wallet.HotWallet{
				Address:             args[1],
				Label:               args[2],
				GasCooldown:         cooldown,
				GasTankMax:          args[4],
				WhitelistedMessages: messages,
			})
		},
	}
	proposeUpsertHotCmd.Flags().Int64SliceVar(&messages, "messages", []int64{}, "whitelisted message kinds, e.g. 0,1")

	proposeRmHotCmd := &cobra.Command{
		Use:   "propose-rm-hot <userKeyName> <address>",
		Short: "To propose removing a hot wallet.",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			multisig.ProposeRmHot(args[0], args[1])
		},
	}
	proposeWhitelistCmd := &cobra.Command{
		Use:   "propose-whitelist <userKeyName> <contractAddress> <codeID> <label>",
		Short: "To propose whitelisting a contract for hot wallets.",
		Args:  cobra.ExactArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			multisig.ProposeUpsertContract(args[0], wallet.WhitelistedContract{
				Address: args[1],
				CodeID:  parseInt(args[2], "codeID"),
				Label:   args[3],
			})
		},
	}
	proposeRmContractCmd := &cobra.Command{
		Use:   "propose-rm-contract <userKeyName> <contractAddress>",
		Short: "To propose removing a whitelisted contract.",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			multisig.ProposeRmContract(args[0], args[1])
		},
	}
	voteCmd := &cobra.Command{
		Use:   "vote <userKeyName> <proposalID> <yes|no|abstain|veto>",
		Short: "To vote on a proposal.",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			multisig.Vote(args[0], parseInt(args[1], "proposalID"), args[2])
		},
	}
	executeCmd := &cobra.Command{
		Use:   "execute <userKeyName> <proposalID>",
		Short: "To execute a passed proposal.",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			multisig.Execute(args[0], parseInt(args[1], "proposalID"))
		},
	}
	closeCmd := &cobra.Command{
		Use:   "close <userKeyName> <proposalID>",
		Short: "To close an expired proposal that did not pass.",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			multisig.Close(args[0], parseInt(args[1], "proposalID"))
		},
	}

	proposalCmd := &cobra.Command{
		Use:   "get-proposal <proposalID>",
		Short: "To query a proposal.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			multisig.Proposal(parseInt(args[0], "proposalID"))
		},
	}
	var startAfter, limit int64
	proposalsCmd := &cobra.Command{
		Use:   "get-proposals",
		Short: "To list proposals.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			multisig.Proposals(startAfter, limit)
		},
	}
	proposalsCmd.Flags().Int64Var(&startAfter, "start-after", 0, "list proposals after this id")
	proposalsCmd.Flags().Int64Var(&limit, "limit", 0, "maximum number of proposals")

	votesCmd := &cobra.Command{
		Use:   "get-votes <proposalID>",
		Short: "To list the votes on a proposal.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			multisig.Votes(parseInt(args[0], "proposalID"))
		},
	}
	votersCmd := &cobra.Command{
		Use:   "get-voters",
		Short: "To list the voters.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			multisig.Voters()
		},
	}
	thresholdCmd := &cobra.Command{
		Use:   "get-threshold",
		Short: "To query the passing threshold.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			multisig.Threshold()
		},
	}

	subCmd.AddCommand(proposeCmd)
	subCmd.AddCommand(proposeForwardCmd)
	subCmd.AddCommand(proposeUpsertHotCmd)
	subCmd.AddCommand(proposeRmHotCmd)
	subCmd.AddCommand(proposeWhitelistCmd)
	subCmd.AddCommand(proposeRmContractCmd)
	subCmd.AddCommand(voteCmd)
	subCmd.AddCommand(executeCmd)
	subCmd.AddCommand(closeCmd)
	subCmd.AddCommand(proposalCmd)
	subCmd.AddCommand(proposalsCmd)
	subCmd.AddCommand(votesCmd)
	subCmd.AddCommand(votersCmd)
	subCmd.AddCommand(thresholdCmd)

	return subCmd
}

func parseInt(arg, name string) int64 {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		panic(fmt.Sprintf("%s must be an integer. Error: %s\n", name, err))
	}
	return n
}
