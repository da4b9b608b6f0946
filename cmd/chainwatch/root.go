package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	profileConfigPath string
	profileSchemaPath string
	profileVariant    string
)

var rootCmd = &cobra.Command{
	Use:   "chainwatch",
	Short: "Simulated blockchain health dashboard",
	Long:  "chainwatch renders a live, simulated blockchain network dashboard in the terminal or browser and can mirror its values to GreptimeDB.",
	// bare invocation opens the dashboard
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profileConfigPath, "config", "", "Path to a dashboard profile YAML (overrides --variant)")
	rootCmd.PersistentFlags().StringVar(&profileSchemaPath, "schema", "", "Path to a CUE schema file (default: embedded)")
	rootCmd.PersistentFlags().StringVar(&profileVariant, "variant", "network", "Embedded profile to use: network or ledger")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(grafanaCmd)
}
