// Crypto Dash: cryptocurrency market dashboard backed by the CoinGecko feed.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crypto_dash/internal/app"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

// bootstrap is initialised by the root command before any subcommand runs.
var bootstrap *app.Bootstrap

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "cryptodash",
	Short:         "Cryptocurrency market dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		configFile, _ := cmd.Flags().GetString("config")
		bootstrap = app.NewBootstrap(configFile)
		if err := bootstrap.Initialize(); err != nil {
			return fmt.Errorf("bootstrapping failed: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if bootstrap == nil {
			return nil
		}
		return bootstrap.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: configs/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(coinCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cryptodash %s (commit %s)\n", version, commit)
	},
}
