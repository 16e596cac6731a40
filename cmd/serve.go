package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"efatura/internal/logger"
	"efatura/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tool surface over stdin/stdout",
	Long: `Run the JSON-lines dispatch server: each input line is a request
{"tool": "<name>", "arguments": {...}} and each response line is
{"text": "..."}. This is the protocol an external agent drives the
invoice tools through.

Diagnostics go to stderr so responses on stdout stay machine-readable.`,
	Example: `  # Start the server and issue one call
  echo '{"tool":"list_invoices","arguments":{"limit":5}}' | efatura serve

  # Validate a tax number over the protocol
  echo '{"tool":"validate_tax_number","arguments":{"tax_number":"1234567890"}}' | efatura serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.WithComponent("serve")

	registry, err := newRegistry()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("Starting tool server on stdin/stdout")
	return tools.NewServer(registry, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
}
