package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stillwater-dev/inboxd/cmd/admin/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "inboxd-admin",
		Short: "Operational tool for the inboxd API",
		Long:  "CLI tool for running retention sweeps, reindex passes, and inbox bankruptcy",
	}

	rootCmd.AddCommand(commands.NewSweepCmd())
	rootCmd.AddCommand(commands.NewTimeoutsCmd())
	rootCmd.AddCommand(commands.NewReindexCmd())
	rootCmd.AddCommand(commands.NewBankruptcyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
