// Package portal talks to the GİB e-Arşiv portal.
//
// The portal has no conventional REST API: every operation is a POST of a
// form-encoded command envelope (cmd, callid, pageName, token, jp) against a
// fixed endpoint, authenticated by an opaque session token obtained from a
// username/password login call. Client implements that protocol; MockClient
// satisfies the same contract from a fixed in-memory dataset so the rest of
// the system works without credentials or network access.
package portal

import (
	"context"
	"time"
)

// Backend is the seven-operation invoice contract shared by the real portal
// client and the mock. Selection between the two happens once, at facade
// construction; callers never branch on the concrete type.
//
// Operations other than Authenticate degrade on transport failure: the
// failure is logged and an empty/negative result is returned. The only error
// they return is an authentication failure from the lazy login a
// token-requiring operation may trigger.
type Backend interface {
	// Authenticate logs in and returns the session token. Each call opens
	// a fresh session; the previous token, if any, is discarded.
	Authenticate(ctx context.Context) (string, error)

	// ListInvoices returns up to limit draft invoice records issued within
	// the inclusive date range. An empty range is an empty result, not an
	// error.
	ListInvoices(ctx context.Context, start, end time.Time, limit int) ([]Record, error)

	// FindInvoice scans the records of a single day for the first one
	// whose ETTN or document number equals key. Returns nil when no record
	// matches.
	FindInvoice(ctx context.Context, date time.Time, key string) (*Record, error)

	// InvoiceView returns the rendered HTML document for an invoice, or ""
	// when the portal has none.
	InvoiceView(ctx context.Context, ettn string) (string, error)

	// DownloadURL builds the URL of the ZIP artifact (rendered HTML plus
	// structured XML) for an invoice. Pure string construction, no network
	// call. The embedded token is a point-in-time snapshot: it stops
	// working if the session later re-authenticates.
	DownloadURL(ettn string) string

	// CreateDraft submits a draft invoice and returns the portal-assigned
	// ETTN, or "" when the portal did not return one.
	CreateDraft(ctx context.Context, draft *Draft) (string, error)

	// SignDraft finalizes a draft invoice. Reports whether the portal
	// acknowledged the signing.
	SignDraft(ctx context.Context, ettn string) (bool, error)

	// CancelDraft cancels a draft invoice with a free-text reason. Reports
	// whether the portal acknowledged the cancellation.
	CancelDraft(ctx context.Context, ettn string, reason string) (bool, error)
}
