package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Terrorbear/anchor-guardian/wallet-cli/commands/scenario"
)

func scenarioCmd() *cobra.Command {
	var opts scenario.Options
	runCmd := &cobra.Command{
		Use:   "scenario",
		Short: "To replay the local walkthrough on an in-process ledger and print the report.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			scenario.Run(opts)
		},
	}
	runCmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the yaml report to this file")
	runCmd.Flags().BoolVar(&opts.Redis, "redis", false, "keep wallet state in the configured redis")
	runCmd.Flags().BoolVar(&opts.Kafka, "kafka", false, "publish audit events to the configured kafka topic")
	runCmd.Flags().BoolVar(&opts.ServeMetrics, "serve-metrics", false, "serve dispatch metrics after the run until interrupted")
	return runCmd
}
