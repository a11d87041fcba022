// Package cli implements the vaultd command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia/govaultd/internal/config"
)

var (
	configFile string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "vaultd",
	Short: "vaultd - custodial vault ledger daemon",
	Long: `vaultd runs a custodial vault ledger: proportional share issuance
against pooled deposits, fee-split redemption, and an owner-gated proxy into
an external exchange, served over HTTP JSON-RPC.`,
	Version: "0.1.0-dev",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output to console after startup")
}

// loadConfig loads the configuration honoring the --conf flag.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadDefault()
}
