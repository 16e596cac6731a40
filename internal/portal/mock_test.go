package portal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClientAuthenticate(t *testing.T) {
	mock := NewMockClient("test")

	token, err := mock.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MockToken, token)
}

func TestMockClientListInvoices(t *testing.T) {
	mock := NewMockClient("test")

	records, err := mock.ListInvoices(context.Background(), time.Time{}, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "ABC2024000001", records[0].DocumentNumber)
	assert.Equal(t, "ABC2024000005", records[4].DocumentNumber)

	limited, err := mock.ListInvoices(context.Background(), time.Time{}, time.Time{}, 3)
	require.NoError(t, err)
	assert.Len(t, limited, 3)
}

func TestMockClientListInvoicesNonPositiveLimit(t *testing.T) {
	mock := NewMockClient("test")

	zero, err := mock.ListInvoices(context.Background(), time.Time{}, time.Time{}, 0)
	require.NoError(t, err)
	assert.Empty(t, zero)

	negative, err := mock.ListInvoices(context.Background(), time.Time{}, time.Time{}, -1)
	require.NoError(t, err)
	assert.Empty(t, negative)
}

func TestMockClientFindInvoice(t *testing.T) {
	mock := NewMockClient("test")

	byID, err := mock.FindInvoice(context.Background(), time.Time{}, "550e8400-e29b-41d4-a716-446655440002")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "ABC2024000002", byID.DocumentNumber)

	byNumber, err := mock.FindInvoice(context.Background(), time.Time{}, "ABC2024000003")
	require.NoError(t, err)
	require.NotNil(t, byNumber)
	assert.Equal(t, "Beklemede", byNumber.ApprovalStatus)

	missing, err := mock.FindInvoice(context.Background(), time.Time{}, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMockClientCreateDoesNotPersist(t *testing.T) {
	// The mock deliberately does not persist creations; a find right
	// after a create must not locate the new invoice.
	mock := NewMockClient("test")

	ettn, err := mock.CreateDraft(context.Background(), &Draft{DocumentNumber: "NEW001"})
	require.NoError(t, err)
	require.NotEmpty(t, ettn)

	found, err := mock.FindInvoice(context.Background(), time.Time{}, ettn)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMockClientCreateGeneratesFreshIDs(t *testing.T) {
	mock := NewMockClient("test")

	first, err := mock.CreateDraft(context.Background(), &Draft{})
	require.NoError(t, err)
	second, err := mock.CreateDraft(context.Background(), &Draft{})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestMockClientSignAndCancelAlwaysSucceed(t *testing.T) {
	mock := NewMockClient("test")

	signed, err := mock.SignDraft(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, signed)

	cancelled, err := mock.CancelDraft(context.Background(), "anything", "reason")
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestMockClientInvoiceView(t *testing.T) {
	mock := NewMockClient("test")

	html, err := mock.InvoiceView(context.Background(), "550e8400-e29b-41d4-a716-446655440001")
	require.NoError(t, err)
	assert.Contains(t, html, "ABC2024000001")
	assert.Contains(t, html, "e-Arşiv Fatura")

	empty, err := mock.InvoiceView(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMockClientDownloadURL(t *testing.T) {
	mock := NewMockClient("test")

	got := mock.DownloadURL("550e8400-e29b-41d4-a716-446655440001")
	assert.Contains(t, got, "https://earsivportaltest.efatura.gov.tr/earsiv-services/download?")
	assert.Contains(t, got, "token="+MockToken)

	prod := NewMockClient("production")
	assert.Contains(t, prod.DownloadURL("x"), "https://earsivportal.efatura.gov.tr")
}
