package main

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "bca",
	Short:         "Storage business-case engine",
	Long:          "Simulates rule-based storage dispatch against a renewable asset's time series and reports IRR and NPV per scenario.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
