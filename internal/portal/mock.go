package portal

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"efatura/internal/logger"
)

// MockToken is the constant session token the mock backend issues.
const MockToken = "mock_token_12345"

// mockRecords is the fixed demo dataset. It is never mutated: created
// drafts are not persisted, so a find after a create will not locate the
// new invoice.
var mockRecords = []Record{
	{
		ETTN:           "550e8400-e29b-41d4-a716-446655440001",
		DocumentNumber: "ABC2024000001",
		DocumentDate:   "01/12/2024",
		SenderTitle:    "Demo Teknoloji A.Ş.",
		ReceiverTitle:  "Örnek Müşteri Ltd. Şti.",
		Total:          NewAmount(decimal.RequireFromString("15000.00")),
		Currency:       "TRY",
		ApprovalStatus: "Onaylandı",
	},
	{
		ETTN:           "550e8400-e29b-41d4-a716-446655440002",
		DocumentNumber: "ABC2024000002",
		DocumentDate:   "02/12/2024",
		SenderTitle:    "Demo Teknoloji A.Ş.",
		ReceiverTitle:  "Test Şirketi A.Ş.",
		Total:          NewAmount(decimal.RequireFromString("8500.50")),
		Currency:       "TRY",
		ApprovalStatus: "Onaylandı",
	},
	{
		ETTN:           "550e8400-e29b-41d4-a716-446655440003",
		DocumentNumber: "ABC2024000003",
		DocumentDate:   "03/12/2024",
		SenderTitle:    "Demo Teknoloji A.Ş.",
		ReceiverTitle:  "Proje Danışmanlık Ltd.",
		Total:          NewAmount(decimal.RequireFromString("22000.00")),
		Currency:       "TRY",
		ApprovalStatus: "Beklemede",
	},
	{
		ETTN:           "550e8400-e29b-41d4-a716-446655440004",
		DocumentNumber: "ABC2024000004",
		DocumentDate:   "04/12/2024",
		SenderTitle:    "Demo Teknoloji A.Ş.",
		ReceiverTitle:  "Yazılım Geliştirme A.Ş.",
		Total:          NewAmount(decimal.RequireFromString("45000.00")),
		Currency:       "TRY",
		ApprovalStatus: "Onaylandı",
	},
	{
		ETTN:           "550e8400-e29b-41d4-a716-446655440005",
		DocumentNumber: "ABC2024000005",
		DocumentDate:   "05/12/2024",
		SenderTitle:    "Demo Teknoloji A.Ş.",
		ReceiverTitle:  "E-Ticaret Platformu Ltd.",
		Total:          NewAmount(decimal.RequireFromString("12500.75")),
		Currency:       "TRY",
		ApprovalStatus: "Onaylandı",
	},
}

// MockClient is a network-free Backend returning deterministic canned data.
// It stands in for the real portal client whenever no credentials are
// configured, so every tool remains explorable in demo mode.
type MockClient struct {
	environment string
	log         zerolog.Logger
}

var _ Backend = (*MockClient)(nil)

// NewMockClient creates a mock backend for the given environment tag. The
// tag only influences the base URL embedded in download URLs.
func NewMockClient(environment string) *MockClient {
	return &MockClient{
		environment: environment,
		log:         logger.WithComponent("portal-mock"),
	}
}

// Authenticate returns the constant mock token.
func (m *MockClient) Authenticate(_ context.Context) (string, error) {
	return MockToken, nil
}

// ListInvoices returns up to limit records from the fixed dataset. The date
// range is ignored, matching the original demo behavior. A limit of zero or
// less means no records.
func (m *MockClient) ListInvoices(_ context.Context, _, _ time.Time, limit int) ([]Record, error) {
	if limit < 0 {
		limit = 0
	}
	records := make([]Record, len(mockRecords))
	copy(records, mockRecords)
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// FindInvoice scans the fixed dataset by ETTN or document number.
func (m *MockClient) FindInvoice(_ context.Context, _ time.Time, key string) (*Record, error) {
	for i := range mockRecords {
		if mockRecords[i].ETTN == key || mockRecords[i].DocumentNumber == key {
			record := mockRecords[i]
			return &record, nil
		}
	}
	return nil, nil
}

// InvoiceView renders a demo HTML document for a known invoice, "" for an
// unknown one.
func (m *MockClient) InvoiceView(ctx context.Context, ettn string) (string, error) {
	record, _ := m.FindInvoice(ctx, time.Time{}, ettn)
	if record == nil {
		return "", nil
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Fatura - %s</title></head>
<body>
  <h1>e-Arşiv Fatura</h1>
  <p>Fatura No: %s</p>
  <p>Tarih: %s</p>
  <p>Satıcı: %s</p>
  <p>Alıcı: %s</p>
  <p>Toplam Tutar: %s %s</p>
  <p>Durum: %s</p>
  <p>Bu bir demo faturadır. Gerçek GİB kimlik bilgileriyle giriş
  yapıldığında gerçek fatura bilgileri görüntülenecektir.</p>
</body>
</html>`,
		record.DocumentNumber,
		record.DocumentNumber,
		record.DocumentDate,
		record.SenderTitle,
		record.ReceiverTitle,
		record.Total.StringFixed(2),
		record.Currency,
		record.ApprovalStatus,
	), nil
}

// DownloadURL builds a download URL carrying the mock token.
func (m *MockClient) DownloadURL(ettn string) string {
	query := url.Values{
		"token":      {MockToken},
		"ettn":       {ettn},
		"belgeTip":   {"FATURA"},
		"onayDurumu": {"Onaylandı"},
		"cmd":        {cmdDownload},
	}
	return BaseURLFor(m.environment) + endpointDownload + "?" + query.Encode()
}

// CreateDraft returns a fresh identifier without persisting anything: a
// subsequent FindInvoice will not locate the created invoice.
func (m *MockClient) CreateDraft(_ context.Context, draft *Draft) (string, error) {
	ettn := uuid.NewString()
	m.log.Info().
		Str("ettn", ettn).
		Str("number", draft.DocumentNumber).
		Msg("Mock draft invoice created")
	return ettn, nil
}

// SignDraft always succeeds.
func (m *MockClient) SignDraft(_ context.Context, _ string) (bool, error) {
	return true, nil
}

// CancelDraft always succeeds.
func (m *MockClient) CancelDraft(_ context.Context, _ string, _ string) (bool, error) {
	return true, nil
}
