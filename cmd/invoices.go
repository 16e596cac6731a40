package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// The invoice subcommands are thin wrappers: each builds the same argument
// map the serve protocol would carry and dispatches through the registry,
// so CLI output and protocol output cannot drift apart.

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices from the GİB system",
	Example: `  # Last invoices with the default limit of 10
  efatura list

  # Invoices for a date range
  efatura list --start 2024-12-01 --end 2024-12-31 --limit 50`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := map[string]any{}
		if s, _ := cmd.Flags().GetString("start"); s != "" {
			args["start_date"] = s
		}
		if e, _ := cmd.Flags().GetString("end"); e != "" {
			args["end_date"] = e
		}
		limit, _ := cmd.Flags().GetInt("limit")
		args["limit"] = limit

		return dispatch(cmd, "list_invoices", args)
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail [invoice-id]",
	Short: "Show detailed information for one invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, "get_invoice_detail", map[string]any{"invoice_id": args[0]})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [invoice-id]",
	Short: "Cancel a draft invoice",
	Example: `  efatura cancel 550e8400-e29b-41d4-a716-446655440001 --reason "duplicate entry"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		return dispatch(cmd, "cancel_invoice", map[string]any{
			"invoice_id": args[0],
			"reason":     reason,
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search invoices by name, amount range or status",
	Long: `Search filters a bounded page of invoices in memory: up to 100
records are fetched and matched by case-insensitive substring on the
customer and supplier names, inclusive amount bounds, and exact status.`,
	Example: `  efatura search --customer "Test Şirketi"
  efatura search --min-amount 10000 --status "Onaylandı"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		args := map[string]any{}
		for flag, key := range map[string]string{
			"customer": "customer_name",
			"supplier": "supplier_name",
			"status":   "status",
		} {
			if value, _ := cmd.Flags().GetString(flag); value != "" {
				args[key] = value
			}
		}
		if cmd.Flags().Changed("min-amount") {
			value, _ := cmd.Flags().GetFloat64("min-amount")
			args["min_amount"] = value
		}
		if cmd.Flags().Changed("max-amount") {
			value, _ := cmd.Flags().GetFloat64("max-amount")
			args["max_amount"] = value
		}

		return dispatch(cmd, "search_invoices", args)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [tax-number]",
	Short: "Check the format of a Turkish tax number (VKN/TCKN)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, "validate_tax_number", map[string]any{"tax_number": args[0]})
	},
}

var documentCmd = &cobra.Command{
	Use:   "document [invoice-id]",
	Short: "Show an invoice's HTML preview and ZIP download URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, "get_invoice_xml", map[string]any{"invoice_id": args[0]})
	},
}

func init() {
	listCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	listCmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	listCmd.Flags().IntP("limit", "n", 10, "Maximum number of invoices to return")

	cancelCmd.Flags().String("reason", "", "Cancellation reason (required)")
	_ = cancelCmd.MarkFlagRequired("reason")

	searchCmd.Flags().String("customer", "", "Filter by customer name (substring)")
	searchCmd.Flags().String("supplier", "", "Filter by supplier name (substring)")
	searchCmd.Flags().Float64("min-amount", 0, "Minimum invoice amount (inclusive)")
	searchCmd.Flags().Float64("max-amount", 0, "Maximum invoice amount (inclusive)")
	searchCmd.Flags().String("status", "", "Exact invoice status")

	rootCmd.AddCommand(listCmd, detailCmd, cancelCmd, searchCmd, validateCmd, documentCmd)
}

// dispatch runs one tool call through the registry and prints the rendered
// text.
func dispatch(cmd *cobra.Command, tool string, args map[string]any) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), registry.Call(cmd.Context(), tool, args))
	return nil
}
