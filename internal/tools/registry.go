// Package tools is the dispatch shell: it names the callable tools, decodes
// their loosely-typed arguments, runs them against the facade and renders
// every outcome as human-readable text. Structured errors never leave this
// package; a failed call is a readable failure message.
package tools

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"efatura/internal/efatura"
	"efatura/internal/logger"
	"efatura/pkg/models"
)

// defaultListLimit is the invoice count list_invoices returns when the
// caller does not ask for more.
const defaultListLimit = 10

// Handler runs one tool call. The returned string is the rendered text
// response; the error is rendered by the registry, never passed upward raw.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool is a named, described operation of the tool surface.
type Tool struct {
	Name        string
	Description string
	Handler     Handler
}

// Registry holds the tool surface over one facade instance.
type Registry struct {
	service *efatura.Service
	tools   []Tool
	byName  map[string]Tool
	log     zerolog.Logger
}

// NewRegistry builds the seven-tool surface over the given service.
func NewRegistry(service *efatura.Service) *Registry {
	r := &Registry{
		service: service,
		byName:  make(map[string]Tool),
		log:     logger.WithComponent("tools"),
	}

	r.register(Tool{
		Name: "list_invoices",
		Description: "List e-Fatura invoices from the Turkish GİB system. " +
			"Returns a list of invoices with basic information. " +
			"Optionally filter by date range (start_date, end_date in YYYY-MM-DD; limit defaults to 10).",
		Handler: r.listInvoices,
	})
	r.register(Tool{
		Name: "get_invoice_detail",
		Description: "Get detailed information for a specific e-Fatura invoice. " +
			"Requires invoice_id obtained from list_invoices.",
		Handler: r.getInvoiceDetail,
	})
	r.register(Tool{
		Name: "create_invoice",
		Description: "Create a new e-Fatura invoice in the GİB system and sign it. " +
			"Returns the created invoice ID.",
		Handler: r.createInvoice,
	})
	r.register(Tool{
		Name: "cancel_invoice",
		Description: "Cancel an existing e-Fatura invoice. " +
			"Requires invoice_id and a cancellation reason.",
		Handler: r.cancelInvoice,
	})
	r.register(Tool{
		Name: "search_invoices",
		Description: "Search e-Fatura invoices with filters: customer_name, supplier_name, " +
			"min_amount, max_amount, status.",
		Handler: r.searchInvoices,
	})
	r.register(Tool{
		Name: "validate_tax_number",
		Description: "Validate the format of a Turkish tax number " +
			"(10-digit VKN for companies, 11-digit TCKN for individuals).",
		Handler: r.validateTaxNumber,
	})
	r.register(Tool{
		Name: "get_invoice_xml",
		Description: "Get the document content of an e-Fatura invoice: an HTML preview " +
			"and the download URL of the ZIP containing the UBL-TR XML.",
		Handler: r.getInvoiceXML,
	})

	return r
}

func (r *Registry) register(tool Tool) {
	r.tools = append(r.tools, tool)
	r.byName[tool.Name] = tool
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	return r.tools
}

// Call dispatches one tool call and always returns renderable text. Unknown
// tools and handler failures come back as readable messages.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) string {
	tool, ok := r.byName[name]
	if !ok {
		return fmt.Sprintf("Unknown tool: %s", name)
	}

	r.log.Debug().Str("tool", name).Msg("Dispatching tool call")

	text, err := tool.Handler(ctx, args)
	if err != nil {
		r.log.Error().Err(err).Str("tool", name).Msg("Tool call failed")
		return fmt.Sprintf("Error: %v", err)
	}
	return text
}

func (r *Registry) listInvoices(ctx context.Context, args map[string]any) (string, error) {
	startDate := stringArg(args, "start_date")
	endDate := stringArg(args, "end_date")
	limit := intArg(args, "limit", defaultListLimit)

	invoices, err := r.service.ListInvoices(ctx, startDate, endDate, limit)
	if err != nil {
		return "", err
	}
	return RenderInvoiceList(invoices), nil
}

func (r *Registry) getInvoiceDetail(ctx context.Context, args map[string]any) (string, error) {
	invoiceID := stringArg(args, "invoice_id")
	if invoiceID == "" {
		return "", fmt.Errorf("invoice_id is required")
	}

	invoice, err := r.service.GetInvoiceDetail(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if invoice == nil {
		return fmt.Sprintf("Invoice not found: %s", invoiceID), nil
	}
	return RenderInvoiceDetail(invoice), nil
}

func (r *Registry) createInvoice(ctx context.Context, args map[string]any) (string, error) {
	req, err := decodeCreateRequest(args)
	if err != nil {
		return "", fmt.Errorf("creating invoice: %w", err)
	}

	invoiceID, signed, err := r.service.CreateInvoice(ctx, req)
	if err != nil {
		return "", fmt.Errorf("creating invoice: %w", err)
	}
	return RenderCreateResult(invoiceID, signed, req), nil
}

func (r *Registry) cancelInvoice(ctx context.Context, args map[string]any) (string, error) {
	invoiceID := stringArg(args, "invoice_id")
	reason := stringArg(args, "reason")
	if invoiceID == "" || reason == "" {
		return "", fmt.Errorf("invoice_id and reason are required")
	}

	cancelled, err := r.service.CancelInvoice(ctx, invoiceID, reason)
	if err != nil {
		return "", err
	}
	return RenderCancelResult(invoiceID, reason, cancelled), nil
}

func (r *Registry) searchInvoices(ctx context.Context, args map[string]any) (string, error) {
	filter := efatura.SearchFilter{
		CustomerName: stringArg(args, "customer_name"),
		SupplierName: stringArg(args, "supplier_name"),
		MinAmount:    decimalArg(args, "min_amount"),
		MaxAmount:    decimalArg(args, "max_amount"),
		Status:       stringArg(args, "status"),
	}

	invoices, err := r.service.SearchInvoices(ctx, filter)
	if err != nil {
		return "", err
	}
	return RenderSearchResults(invoices, filter), nil
}

func (r *Registry) validateTaxNumber(_ context.Context, args map[string]any) (string, error) {
	taxNumber := stringArg(args, "tax_number")
	if taxNumber == "" {
		return "", fmt.Errorf("tax_number is required")
	}
	return RenderValidation(efatura.ValidateTaxNumber(taxNumber)), nil
}

func (r *Registry) getInvoiceXML(ctx context.Context, args map[string]any) (string, error) {
	invoiceID := stringArg(args, "invoice_id")
	if invoiceID == "" {
		return "", fmt.Errorf("invoice_id is required")
	}

	document, err := r.service.GetInvoiceDocument(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if document == "" {
		return fmt.Sprintf("Invoice document not found: %s", invoiceID), nil
	}
	return fmt.Sprintf("Invoice document for %s:\n\n%s", invoiceID, document), nil
}

// decodeCreateRequest builds a typed creation request from loosely-typed
// tool arguments, rejecting calls with missing required fields.
func decodeCreateRequest(args map[string]any) (*models.InvoiceCreateRequest, error) {
	req := &models.InvoiceCreateRequest{
		InvoiceNumber: stringArg(args, "invoice_number"),
		IssueDate:     stringArg(args, "issue_date"),
		SupplierVKN:   stringArg(args, "supplier_vkn"),
		SupplierName:  stringArg(args, "supplier_name"),
		CustomerVKN:   stringArg(args, "customer_vkn"),
		CustomerName:  stringArg(args, "customer_name"),
		Currency:      stringArg(args, "currency"),
	}
	if req.Currency == "" {
		req.Currency = "TRY"
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"invoice_number", req.InvoiceNumber},
		{"issue_date", req.IssueDate},
		{"supplier_vkn", req.SupplierVKN},
		{"supplier_name", req.SupplierName},
		{"customer_vkn", req.CustomerVKN},
		{"customer_name", req.CustomerName},
	} {
		if field.value == "" {
			return nil, fmt.Errorf("%s is required", field.name)
		}
	}

	total := decimalArg(args, "total_amount")
	if total == nil {
		return nil, fmt.Errorf("total_amount is required")
	}
	req.TotalAmount = *total

	items, err := itemsArg(args, "items")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("items is required")
	}
	req.Items = items

	return req, nil
}
