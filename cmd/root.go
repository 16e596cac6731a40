package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"efatura/internal/config"
	"efatura/internal/efatura"
	"efatura/internal/logger"
	"efatura/internal/tools"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "efatura",
	Short: "e-Fatura tools - Turkish GİB e-Arşiv invoice operations",
	Long: `e-Fatura tools expose the Turkish GİB e-Arşiv portal as a set of
invoice operations: listing, retrieving, creating, signing and cancelling
invoices, plus tax number format checks.

Credentials are read from the environment (GIB_USERNAME, GIB_PASSWORD,
GIB_ENVIRONMENT). Without credentials every command runs in demo mode
against deterministic sample data, so the full surface can be explored
before connecting a real portal account.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("e-Fatura tools")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// newRegistry builds the tool registry from the environment. Every
// subcommand goes through the same registry the serve protocol uses, so
// CLI and protocol output stay identical.
func newRegistry() (*tools.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return tools.NewRegistry(efatura.NewService(cfg)), nil
}
