package models

import "github.com/shopspring/decimal"

// Invoice is the normalized invoice representation returned to callers.
// Field names are stable regardless of which backend produced the record;
// the portal's native field vocabulary never leaks above the facade.
type Invoice struct {
	// InvoiceID is the portal-assigned identifier (ETTN). It is the only
	// stable key for lookups, cancellation and re-fetch.
	InvoiceID string `json:"invoice_id"`

	// InvoiceNumber is the human-facing document number, unique within an
	// issuer. Together with the issue date it forms a secondary, non-unique
	// search key.
	InvoiceNumber string `json:"invoice_number"`

	// IssueDate is the document date as received from the backend
	// (DD/MM/YYYY for the portal). No format normalization is applied.
	IssueDate string `json:"issue_date"`

	SupplierName string `json:"supplier_name"`
	CustomerName string `json:"customer_name"`

	// TotalAmount is the gross invoice total.
	TotalAmount decimal.Decimal `json:"total_amount"`

	// Currency is a 3-letter code, "TRY" when the backend omits it.
	Currency string `json:"currency"`

	// Status is the portal's free-text approval state.
	Status string `json:"status"`
}

// InvoiceItem is a single line item on an invoice creation request.
type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// InvoiceCreateRequest is the minimal caller-supplied input for creating an
// invoice. The facade projects it onto the portal's full draft payload,
// filling everything not derivable from it with fixed defaults.
type InvoiceCreateRequest struct {
	InvoiceNumber string          `json:"invoice_number"`
	IssueDate     string          `json:"issue_date"`
	SupplierVKN   string          `json:"supplier_vkn"`
	SupplierName  string          `json:"supplier_name"`
	CustomerVKN   string          `json:"customer_vkn"`
	CustomerName  string          `json:"customer_name"`
	Items         []InvoiceItem   `json:"items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
}

// Tax number validation statuses.
const (
	TaxStatusValidVKN      = "valid_vkn_format"
	TaxStatusValidTCKN     = "valid_tckn_format"
	TaxStatusInvalidLength = "invalid_length"
	TaxStatusInvalidFormat = "invalid_format"
)

// TaxNumberValidation is the result of a local tax number format check.
// Format only: no checksum or registry verification is performed.
type TaxNumberValidation struct {
	TaxNumber string `json:"tax_number"`
	IsValid   bool   `json:"is_valid"`
	Status    string `json:"status"`
}
