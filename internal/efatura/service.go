// Package efatura is the normalizing facade over the portal backends. It
// selects the real client or the mock once at construction, translates the
// portal's native field vocabulary into the stable Invoice shape, and hosts
// the operations that are composition rather than portal protocol: search,
// create-and-sign, document retrieval and tax number validation.
package efatura

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"efatura/internal/config"
	"efatura/internal/logger"
	"efatura/internal/portal"
	"efatura/pkg/models"
)

// Normalization defaults for fields a backend record may omit. Missing
// fields default rather than fail so partial or legacy records stay
// viewable.
const (
	defaultSupplierName = "Supplier"
	defaultCustomerName = "Customer"
	defaultCurrency     = "TRY"
	defaultStatus       = "unknown"
)

// inputDateLayout is the YYYY-MM-DD form the tool surface accepts.
const inputDateLayout = "2006-01-02"

// defaultListStart is the fallback start of the listing window when the
// caller gives no start date.
const defaultListStart = "2024-01-01"

// searchPageSize bounds the page search operates on. Search correctness is
// limited to the first searchPageSize fetched records; this is a known
// design limit, not a server-side search.
const searchPageSize = 100

// documentPreviewRunes is how much of the rendered HTML document the
// document operation includes before the download URL.
const documentPreviewRunes = 500

// Service is the invoice facade handed to the tool dispatch shell. It is
// created once at process start; the backend choice is fixed for its
// lifetime.
type Service struct {
	backend portal.Backend
	mock    bool
	log     zerolog.Logger
}

// SearchFilter narrows a search. Nil amount bounds and empty strings mean
// "no constraint". Name matches are case-insensitive substring matches;
// status matches are exact.
type SearchFilter struct {
	CustomerName string
	SupplierName string
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
	Status       string
}

// NewService selects a backend from the configuration and wraps it. The
// real portal client is used only when both credentials are present,
// non-blank and not the sample-file placeholders; anything else runs in
// demo mode against the mock backend, never touching the network.
func NewService(cfg *config.Config) *Service {
	log := logger.WithComponent("efatura")

	if cfg.HasCredentials() {
		log.Info().
			Str("environment", cfg.GIBEnvironment).
			Str("username", cfg.GIBUsername).
			Msg("Using real GİB e-Arşiv portal client")
		return NewServiceWithBackend(portal.NewClient(cfg.GIBUsername, cfg.GIBPassword, cfg.GIBEnvironment), false)
	}

	log.Warn().Msg("DEMO MODE: GİB credentials not configured, using mock data")
	log.Warn().Msg("Set GIB_USERNAME and GIB_PASSWORD in .env to use the real portal")
	return NewServiceWithBackend(portal.NewMockClient(cfg.GIBEnvironment), true)
}

// NewServiceWithBackend wraps an explicit backend. Used by NewService and
// by tests.
func NewServiceWithBackend(backend portal.Backend, mock bool) *Service {
	return &Service{
		backend: backend,
		mock:    mock,
		log:     logger.WithComponent("efatura"),
	}
}

// MockMode reports whether the service runs against the mock backend.
func (s *Service) MockMode() bool {
	return s.mock
}

// normalize maps a native record into the stable Invoice shape, defaulting
// any missing field instead of rejecting the record.
func normalize(record *portal.Record) models.Invoice {
	invoice := models.Invoice{
		InvoiceID:     record.ETTN,
		InvoiceNumber: record.DocumentNumber,
		IssueDate:     record.DocumentDate,
		SupplierName:  record.SenderTitle,
		CustomerName:  record.ReceiverTitle,
		TotalAmount:   record.Total.Decimal,
		Currency:      record.Currency,
		Status:        record.ApprovalStatus,
	}
	if invoice.SupplierName == "" {
		invoice.SupplierName = defaultSupplierName
	}
	if invoice.CustomerName == "" {
		invoice.CustomerName = defaultCustomerName
	}
	if invoice.Currency == "" {
		invoice.Currency = defaultCurrency
	}
	if invoice.Status == "" {
		invoice.Status = defaultStatus
	}
	return invoice
}

// ListInvoices lists invoices in the date range (YYYY-MM-DD bounds, both
// optional) as normalized records. Missing bounds default to 2024-01-01
// and today.
func (s *Service) ListInvoices(ctx context.Context, startDate, endDate string, limit int) ([]models.Invoice, error) {
	if startDate == "" {
		startDate = defaultListStart
	}
	if endDate == "" {
		endDate = time.Now().Format(inputDateLayout)
	}

	start, err := time.Parse(inputDateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse(inputDateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}

	records, err := s.backend.ListInvoices(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}

	invoices := make([]models.Invoice, 0, len(records))
	for i := range records {
		invoices = append(invoices, normalize(&records[i]))
	}
	return invoices, nil
}

// GetInvoiceDetail looks an invoice up by its portal identifier. Returns
// nil when no invoice matches.
func (s *Service) GetInvoiceDetail(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	// The portal cannot look invoices up by id directly; the backend scans
	// the records of one day. The mock ignores the date entirely.
	searchDate := time.Now().AddDate(-1, 0, 0)

	record, err := s.backend.FindInvoice(ctx, searchDate, invoiceID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	invoice := normalize(record)
	return &invoice, nil
}

// CreateInvoice creates a draft invoice and immediately signs it. When the
// draft is created but signing fails, the draft id is still returned with
// signed=false. The partial success is surfaced, not rolled back or
// retried.
func (s *Service) CreateInvoice(ctx context.Context, req *models.InvoiceCreateRequest) (invoiceID string, signed bool, err error) {
	draft := buildDraft(req, time.Now())

	invoiceID, err = s.backend.CreateDraft(ctx, draft)
	if err != nil {
		return "", false, err
	}
	if invoiceID == "" {
		return "", false, fmt.Errorf("draft invoice creation returned no identifier")
	}

	signed, err = s.backend.SignDraft(ctx, invoiceID)
	if err != nil {
		return "", false, err
	}
	if !signed {
		s.log.Warn().
			Str("invoice_id", invoiceID).
			Msg("Draft invoice created but signing failed")
		return invoiceID, false, nil
	}

	s.log.Info().Str("invoice_id", invoiceID).Msg("Created and signed invoice")
	return invoiceID, true, nil
}

// CancelInvoice cancels a draft invoice with a free-text reason.
func (s *Service) CancelInvoice(ctx context.Context, invoiceID, reason string) (bool, error) {
	cancelled, err := s.backend.CancelDraft(ctx, invoiceID, reason)
	if err != nil {
		return false, err
	}
	if cancelled {
		s.log.Info().
			Str("invoice_id", invoiceID).
			Str("reason", reason).
			Msg("Cancelled invoice")
	}
	return cancelled, nil
}

// SearchInvoices filters a bounded page of invoices in memory. Results
// preserve the backend's relative order. Only the first searchPageSize
// records are considered.
func (s *Service) SearchInvoices(ctx context.Context, filter SearchFilter) ([]models.Invoice, error) {
	page, err := s.ListInvoices(ctx, "", "", searchPageSize)
	if err != nil {
		return nil, err
	}

	matches := make([]models.Invoice, 0, len(page))
	for _, invoice := range page {
		if !filter.matches(&invoice) {
			continue
		}
		matches = append(matches, invoice)
	}
	return matches, nil
}

func (f *SearchFilter) matches(invoice *models.Invoice) bool {
	if f.CustomerName != "" && !containsFold(invoice.CustomerName, f.CustomerName) {
		return false
	}
	if f.SupplierName != "" && !containsFold(invoice.SupplierName, f.SupplierName) {
		return false
	}
	if f.MinAmount != nil && invoice.TotalAmount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && invoice.TotalAmount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.Status != "" && invoice.Status != f.Status {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// GetInvoiceDocument fetches the invoice's rendered document: an HTML
// preview (truncated) plus the ZIP download URL carrying both the rendered
// and structured forms. Returns "" when the portal has neither.
func (s *Service) GetInvoiceDocument(ctx context.Context, invoiceID string) (string, error) {
	html, err := s.backend.InvoiceView(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	downloadURL := s.backend.DownloadURL(invoiceID)

	switch {
	case html != "":
		preview := []rune(html)
		if len(preview) > documentPreviewRunes {
			preview = preview[:documentPreviewRunes]
		}
		return fmt.Sprintf("Invoice HTML Preview:\n\n%s...\n\nDownload URL (ZIP with XML+HTML):\n%s", string(preview), downloadURL), nil
	case downloadURL != "":
		return fmt.Sprintf("Download URL (ZIP with XML+HTML):\n%s", downloadURL), nil
	default:
		return "", nil
	}
}
