package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/audit"
	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/serve"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "To serve the wallet api and metrics.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			serve.Serve()
		},
	}
}

func auditCmd() *cobra.Command {
	subCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit event related commands",
	}

	var groupID, eventType string
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "To follow audit events published to kafka.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			audit.Tail(groupID, eventType)
		},
	}
	tailCmd.Flags().StringVar(&groupID, "group", "", "consumer group, defaults to kafka.groupId")
	tailCmd.Flags().StringVar(&eventType, "type", "", "only print events of this type")

	subCmd.AddCommand(tailCmd)
	return subCmd
}
