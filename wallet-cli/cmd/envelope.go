package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/envelope"
)

func envelopeCmd() *cobra.Command {
	subCmd := &cobra.Command{
		Use:   "envelope",
		Short: "Build and inspect wasm execute envelopes offline",
	}

	var funds string
	encodeCmd := &cobra.Command{
		Use:   "encode <contractAddress> <payloadJSON>",
		Short: "To encode a payload addressed to a contract.",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			envelope.PrintEncode(cmd.OutOrStdout(), args[0], args[1], funds)
		},
	}
	encodeCmd.Flags().StringVar(&funds, "funds", "", "coins attached to the call, e.g. 100uusd")

	decodeCmd := &cobra.Command{
		Use:   "decode <envelopeJSON>",
		Short: "To decode the outermost envelope.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			envelope.PrintDecode(cmd.OutOrStdout(), args[0])
		},
	}
	nestCmd := &cobra.Command{
		Use:   "nest <walletAddress> <envelopeJSON>",
		Short: "To wrap an envelope in the wallet's execute message.",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			envelope.PrintNest(cmd.OutOrStdout(), args[0], args[1])
		},
	}
	inspectCmd := &cobra.Command{
		Use:   "inspect <envelopeJSON>",
		Short: "To list every nested layer of an envelope.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			envelope.PrintInspect(cmd.OutOrStdout(), args[0])
		},
	}

	subCmd.AddCommand(encodeCmd)
	subCmd.AddCommand(decodeCmd)
	subCmd.AddCommand(nestCmd)
	subCmd.AddCommand(inspectCmd)

	return subCmd
}
