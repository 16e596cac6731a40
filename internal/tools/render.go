package tools

import (
	"fmt"
	"strings"

	"efatura/internal/efatura"
	"efatura/pkg/models"
)

// renderInvoiceLine is the shared one-invoice summary used by list and
// search output.
func renderInvoiceLine(b *strings.Builder, invoice *models.Invoice) {
	fmt.Fprintf(b, "• %s - %s\n", invoice.InvoiceNumber, invoice.IssueDate)
	fmt.Fprintf(b, "  %s → %s\n", invoice.SupplierName, invoice.CustomerName)
	fmt.Fprintf(b, "  Amount: %s %s | Status: %s\n", invoice.TotalAmount.StringFixed(2), invoice.Currency, invoice.Status)
	fmt.Fprintf(b, "  ID: %s\n", invoice.InvoiceID)
}

// RenderInvoiceList renders the list_invoices response.
func RenderInvoiceList(invoices []models.Invoice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d invoices:\n\n", len(invoices))
	for i := range invoices {
		renderInvoiceLine(&b, &invoices[i])
	}
	return b.String()
}

// RenderInvoiceDetail renders the get_invoice_detail response.
func RenderInvoiceDetail(invoice *models.Invoice) string {
	var b strings.Builder
	b.WriteString("Invoice Details:\n\n")
	fmt.Fprintf(&b, "Invoice Number: %s\n", invoice.InvoiceNumber)
	fmt.Fprintf(&b, "Invoice ID: %s\n", invoice.InvoiceID)
	fmt.Fprintf(&b, "Issue Date: %s\n", invoice.IssueDate)
	fmt.Fprintf(&b, "Status: %s\n\n", invoice.Status)
	fmt.Fprintf(&b, "Supplier: %s\n", invoice.SupplierName)
	fmt.Fprintf(&b, "Customer: %s\n\n", invoice.CustomerName)
	fmt.Fprintf(&b, "Total Amount: %s %s\n", invoice.TotalAmount.StringFixed(2), invoice.Currency)
	return b.String()
}

// RenderCreateResult renders the create_invoice response, including the
// partial-success case where the draft exists but signing failed.
func RenderCreateResult(invoiceID string, signed bool, req *models.InvoiceCreateRequest) string {
	var b strings.Builder
	if signed {
		b.WriteString("Invoice created and signed successfully.\n\n")
	} else {
		b.WriteString("Invoice draft created, but signing FAILED.\n")
		b.WriteString("The draft can be signed manually in the portal.\n\n")
	}
	fmt.Fprintf(&b, "Invoice ID: %s\n", invoiceID)
	fmt.Fprintf(&b, "Invoice Number: %s\n", req.InvoiceNumber)
	fmt.Fprintf(&b, "Issue Date: %s\n", req.IssueDate)
	fmt.Fprintf(&b, "Supplier: %s\n", req.SupplierName)
	fmt.Fprintf(&b, "Customer: %s\n", req.CustomerName)
	fmt.Fprintf(&b, "Total Amount: %s %s\n", req.TotalAmount.StringFixed(2), req.Currency)
	return b.String()
}

// RenderCancelResult renders the cancel_invoice response.
func RenderCancelResult(invoiceID, reason string, cancelled bool) string {
	if !cancelled {
		return fmt.Sprintf("Failed to cancel invoice: %s", invoiceID)
	}
	return fmt.Sprintf("Invoice cancelled successfully.\n\nInvoice ID: %s\nReason: %s\n", invoiceID, reason)
}

// RenderSearchResults renders the search_invoices response with the active
// filters echoed back.
func RenderSearchResults(invoices []models.Invoice, filter efatura.SearchFilter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search Results (%d found)\n", len(invoices))

	var filters []string
	if filter.CustomerName != "" {
		filters = append(filters, fmt.Sprintf("Customer: %s", filter.CustomerName))
	}
	if filter.SupplierName != "" {
		filters = append(filters, fmt.Sprintf("Supplier: %s", filter.SupplierName))
	}
	if filter.MinAmount != nil {
		filters = append(filters, fmt.Sprintf("Min Amount: %s", filter.MinAmount.String()))
	}
	if filter.MaxAmount != nil {
		filters = append(filters, fmt.Sprintf("Max Amount: %s", filter.MaxAmount.String()))
	}
	if filter.Status != "" {
		filters = append(filters, fmt.Sprintf("Status: %s", filter.Status))
	}
	if len(filters) > 0 {
		fmt.Fprintf(&b, "Filters: %s\n", strings.Join(filters, ", "))
	}
	b.WriteString("\n")

	for i := range invoices {
		renderInvoiceLine(&b, &invoices[i])
	}
	return b.String()
}

// RenderValidation renders the validate_tax_number response.
func RenderValidation(validation models.TaxNumberValidation) string {
	verdict := "Invalid Tax Number"
	if validation.IsValid {
		verdict = "Valid Tax Number"
	}
	return fmt.Sprintf("%s\n\nTax Number: %s\nStatus: %s\n", verdict, validation.TaxNumber, validation.Status)
}
