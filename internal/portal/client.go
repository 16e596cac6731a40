package portal

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"efatura/internal/logger"
)

// Portal command names.
const (
	cmdFetchDrafts = "EARSIV_PORTAL_TASLAKLARI_GETIR"
	cmdShowInvoice = "EARSIV_PORTAL_FATURA_GOSTER"
	cmdCreateDraft = "EARSIV_PORTAL_FATURA_OLUSTUR"
	cmdSignDraft   = "EARSIV_PORTAL_FATURA_IMZALA"
	cmdCancelDraft = "EARSIV_PORTAL_FATURA_SIL"
	cmdDownload    = "EARSIV_PORTAL_BELGE_INDIR"
)

// Portal page names the commands must be issued under.
const (
	pageSimpleInvoice = "RG_BASITFATURA"
	pageDrafts        = "RG_TASLAKLAR"
)

// invoiceTypeFilter is the hangiTip value selecting e-Arşiv invoices.
const invoiceTypeFilter = "5000/30000"

// dateLayout is the portal's DD/MM/YYYY textual date form.
const dateLayout = "02/01/2006"

// Client is the session-authenticated GİB e-Arşiv portal client.
//
// The session token is acquired lazily: the first token-requiring operation
// triggers a login. The token is never refreshed proactively and has no
// local expiry tracking; a stale token surfaces as a remote error on the
// next call. One Client owns exactly one session; tokens are never shared
// across instances.
type Client struct {
	username    string
	environment string
	password    string
	transport   *Transport
	log         zerolog.Logger

	// mu guards the lazily-initialized token so that concurrent callers
	// sharing one client do not race on the authenticate-then-use
	// sequence.
	mu    sync.Mutex
	token string
}

var _ Backend = (*Client)(nil)

// NewClient creates a portal client for the given credentials and
// environment ("test" or "production"). No network traffic happens until
// the first operation.
func NewClient(username, password, environment string) *Client {
	return NewClientWithTransport(username, password, environment, NewTransport(environment))
}

// NewClientWithTransport creates a portal client over a caller-supplied
// transport. Intended for tests.
func NewClientWithTransport(username, password, environment string, transport *Transport) *Client {
	log := logger.WithComponent("portal-client")
	log.Info().
		Str("environment", environment).
		Msg("GİB e-Arşiv client initialized")

	return &Client{
		username:    username,
		password:    password,
		environment: environment,
		transport:   transport,
		log:         log,
	}
}

// Authenticate logs in with the configured credentials and stores the
// returned session token. Unlike every other operation, failures here
// propagate: callers must be able to distinguish "no results" from "not
// authenticated".
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

// ensureToken returns the current session token, logging in first if none
// is held. It does not re-validate an existing token's freshness.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	return c.loginLocked(ctx)
}

// loginLocked performs the assos-login exchange. Callers must hold c.mu.
func (c *Client) loginLocked(ctx context.Context) (string, error) {
	c.log.Info().Msg("Authenticating with GİB e-Arşiv")

	form := url.Values{
		"assoscmd": {"anologin"},
		"rtype":    {"json"},
		"userid":   {c.username},
		"sifre":    {c.password},
		"sifre2":   {c.password},
		"parola":   {"1"}, // fixed protocol field
	}

	body, err := c.transport.Exchange(ctx, endpointLogin, form)
	if err != nil {
		return "", err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &TransportError{Endpoint: endpointLogin, Body: string(body), Err: err}
	}

	// The portal signals a successful login by echoing the user id.
	if resp.UserID == "" {
		reason := resp.Error
		if reason == "" {
			reason = "unknown authentication error"
		}
		c.log.Error().Str("reason", reason).Msg("Authentication failed")
		return "", &AuthError{Reason: reason}
	}

	c.token = resp.Token
	c.log.Info().Msg("Authentication successful")
	return c.token, nil
}

// commandParams is the form envelope every commanded portal call shares.
// jp carries the command-specific object, JSON-encoded into the form field.
func commandParams(cmd, page, token string, jp any) (url.Values, error) {
	encoded, err := json.Marshal(jp)
	if err != nil {
		return nil, err
	}
	return url.Values{
		"cmd":      {cmd},
		"callid":   {uuid.NewString()}, // fresh correlation id per command
		"pageName": {page},
		"token":    {token},
		"jp":       {string(encoded)},
	}, nil
}

// command issues a single portal command and decodes the response envelope.
func (c *Client) command(ctx context.Context, endpoint, cmd, page, token string, jp any) (*response, error) {
	form, err := commandParams(cmd, page, token, jp)
	if err != nil {
		return nil, err
	}

	body, err := c.transport.Exchange(ctx, endpoint, form)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Endpoint: endpoint, Body: string(body), Err: err}
	}
	return &resp, nil
}

// degrade is the empty-result policy in one place: operational failures are
// logged and replaced by the zero value so a listing caller sees "no
// results" instead of a crash on a transient portal hiccup. Real outages
// are hidden from the caller the same way.
func degrade[T any](log zerolog.Logger, op string, value T, err error) T {
	if err == nil {
		return value
	}
	log.Error().
		Err(err).
		Str("op", op).
		Msg("Portal operation failed, returning empty result")
	var zero T
	return zero
}

// hasData reports whether a response carried a non-null data field, which
// is how the portal acknowledges state-changing commands.
func hasData(resp *response) bool {
	return resp != nil && len(resp.Data) > 0 && string(resp.Data) != "null"
}

type listParams struct {
	Start  string `json:"baslangic"`
	End    string `json:"bitis"`
	Filter string `json:"hangiTip"`
}

// ListInvoices fetches draft invoice records in the inclusive date range.
// The underlying portal command returns drafts specifically; fully issued
// invoices may not be covered. A limit of zero or less means no records.
func (c *Client) ListInvoices(ctx context.Context, start, end time.Time, limit int) ([]Record, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	jp := listParams{
		Start:  start.Format(dateLayout),
		End:    end.Format(dateLayout),
		Filter: invoiceTypeFilter,
	}

	resp, err := c.command(ctx, endpointInvoices, cmdFetchDrafts, pageSimpleInvoice, token, jp)

	var records []Record
	if err == nil && hasData(resp) {
		err = json.Unmarshal(resp.Data, &records)
	}
	records = degrade(c.log, "ListInvoices", records, err)

	if limit < 0 {
		limit = 0
	}
	if len(records) > limit {
		records = records[:limit]
	}
	c.log.Info().Int("count", len(records)).Msg("Retrieved invoices")
	return records, nil
}

// FindInvoice scans a single day's records for the first one whose ETTN or
// document number equals key. Linear in the invoices of that day; the
// portal has no server-side lookup by id.
func (c *Client) FindInvoice(ctx context.Context, date time.Time, key string) (*Record, error) {
	records, err := c.ListInvoices(ctx, date, date, 1000)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ETTN == key || records[i].DocumentNumber == key {
			return &records[i], nil
		}
	}
	return nil, nil
}

// InvoiceView fetches the rendered HTML document for an invoice.
func (c *Client) InvoiceView(ctx context.Context, ettn string) (string, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return "", err
	}

	jp := map[string]string{"ettn": ettn}
	resp, err := c.command(ctx, endpointInvoiceView, cmdShowInvoice, pageDrafts, token, jp)

	var html string
	if err == nil && hasData(resp) {
		err = json.Unmarshal(resp.Data, &html)
	}
	return degrade(c.log, "InvoiceView", html, err), nil
}

// DownloadURL builds the ZIP download URL for an invoice. The token
// embedded is whatever the client currently holds; the URL stops working
// if the session later re-authenticates.
func (c *Client) DownloadURL(ettn string) string {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	query := url.Values{
		"token":      {token},
		"ettn":       {ettn},
		"belgeTip":   {"FATURA"},
		"onayDurumu": {"Onaylandı"},
		"cmd":        {cmdDownload},
	}
	return c.transport.BaseURL() + endpointDownload + "?" + query.Encode()
}

// CreateDraft submits a draft invoice and returns the portal-assigned ETTN.
func (c *Client) CreateDraft(ctx context.Context, draft *Draft) (string, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return "", err
	}

	resp, err := c.command(ctx, endpointCreateDraft, cmdCreateDraft, pageSimpleInvoice, token, draft)

	var ettn string
	if err == nil && hasData(resp) {
		err = json.Unmarshal(resp.Data, &ettn)
	}
	ettn = degrade(c.log, "CreateDraft", ettn, err)
	if ettn != "" {
		c.log.Info().Str("ettn", ettn).Msg("Draft invoice created")
	}
	return ettn, nil
}

// SignDraft finalizes a draft invoice. The portal command is batch-shaped;
// it is always invoked with a single element here.
func (c *Client) SignDraft(ctx context.Context, ettn string) (bool, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return false, err
	}

	jp := map[string][]string{"imzalanacaklar": {ettn}}
	resp, err := c.command(ctx, endpointSign, cmdSignDraft, pageDrafts, token, jp)

	signed := degrade(c.log, "SignDraft", hasData(resp), err)
	if signed {
		c.log.Info().Str("ettn", ettn).Msg("Invoice signed")
	}
	return signed, nil
}

// CancelDraft cancels a draft invoice with a free-text reason.
func (c *Client) CancelDraft(ctx context.Context, ettn string, reason string) (bool, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return false, err
	}

	jp := map[string]any{
		"silinecekler": []string{ettn},
		"aciklama":     reason,
	}
	resp, err := c.command(ctx, endpointCancel, cmdCancelDraft, pageDrafts, token, jp)

	cancelled := degrade(c.log, "CancelDraft", hasData(resp), err)
	if cancelled {
		c.log.Info().Str("ettn", ettn).Str("reason", reason).Msg("Invoice cancelled")
	}
	return cancelled, nil
}
