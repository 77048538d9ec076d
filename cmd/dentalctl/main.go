package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dentalctl",
		Short:         "Operator tools for the dental admin service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(budgetCmd())
	rootCmd.AddCommand(slotsCmd())
	rootCmd.AddCommand(sessionCmd())
	return rootCmd
}
