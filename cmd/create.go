package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new invoice in the GİB system and sign it",
	Long: `Create a draft invoice from the given fields and immediately sign
it. If signing fails the draft identifier is still reported so the draft
can be signed manually in the portal.

Line items are passed as a JSON array; each item carries description,
quantity, unit_price and total.`,
	Example: `  efatura create \
    --number ABC2025000042 \
    --date 2025-08-30 \
    --supplier-vkn 1234567890 --supplier-name "Demo Teknoloji A.Ş." \
    --customer-vkn 9876543210 --customer-name "Örnek Müşteri Ltd. Şti." \
    --total 1500.00 \
    --items '[{"description":"Danışmanlık","quantity":1,"unit_price":1500.00,"total":1500.00}]'`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("number", "", "Unique invoice number (required)")
	createCmd.Flags().String("date", "", "Issue date, YYYY-MM-DD (required)")
	createCmd.Flags().String("supplier-vkn", "", "Supplier tax number (required)")
	createCmd.Flags().String("supplier-name", "", "Supplier company name (required)")
	createCmd.Flags().String("customer-vkn", "", "Customer tax number (required)")
	createCmd.Flags().String("customer-name", "", "Customer name (required)")
	createCmd.Flags().Float64("total", 0, "Total invoice amount (required)")
	createCmd.Flags().String("currency", "TRY", "Currency code")
	createCmd.Flags().String("items", "", "Line items as a JSON array (required)")

	for _, flag := range []string{"number", "date", "supplier-vkn", "supplier-name", "customer-vkn", "customer-name", "total", "items"} {
		_ = createCmd.MarkFlagRequired(flag)
	}

	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, _ []string) error {
	itemsJSON, _ := cmd.Flags().GetString("items")
	var items []any
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return fmt.Errorf("invalid --items JSON: %w", err)
	}

	number, _ := cmd.Flags().GetString("number")
	date, _ := cmd.Flags().GetString("date")
	supplierVKN, _ := cmd.Flags().GetString("supplier-vkn")
	supplierName, _ := cmd.Flags().GetString("supplier-name")
	customerVKN, _ := cmd.Flags().GetString("customer-vkn")
	customerName, _ := cmd.Flags().GetString("customer-name")
	total, _ := cmd.Flags().GetFloat64("total")
	currency, _ := cmd.Flags().GetString("currency")

	return dispatch(cmd, "create_invoice", map[string]any{
		"invoice_number": number,
		"issue_date":     date,
		"supplier_vkn":   supplierVKN,
		"supplier_name":  supplierName,
		"customer_vkn":   customerVKN,
		"customer_name":  customerName,
		"items":          items,
		"total_amount":   total,
		"currency":       currency,
	})
}
