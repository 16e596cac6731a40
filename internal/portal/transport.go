package portal

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"efatura/internal/logger"
)

// Portal base URLs per environment.
const (
	baseURLTest       = "https://earsivportaltest.efatura.gov.tr"
	baseURLProduction = "https://earsivportal.efatura.gov.tr"
)

// Portal endpoint paths.
const (
	endpointLogin       = "/earsiv-services/assos-login"
	endpointInvoices    = "/earsiv-services/portal/getUserInvoiceData"
	endpointInvoiceView = "/earsiv-services/portal/getInvoiceView"
	endpointDownload    = "/earsiv-services/download"
	endpointCreateDraft = "/earsiv-services/portal/createDraftInvoice"
	endpointSign        = "/earsiv-services/portal/signDraftInvoice"
	endpointCancel      = "/earsiv-services/portal/cancelDraftInvoice"
)

// HTTPDoer abstracts the HTTP client for testing.
// *http.Client implements this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport performs form-encoded exchanges against the portal. The headers
// are fixed at construction and reused for every call: the portal's login
// flow is session/cookie based, and inconsistent headers across calls can
// cause silent authentication loss.
type Transport struct {
	baseURL string
	headers map[string]string
	client  HTTPDoer
	log     zerolog.Logger
}

// BaseURLFor returns the portal base URL for an environment tag. Unknown
// tags fall back to the test portal, never to production.
func BaseURLFor(environment string) string {
	if environment == "production" {
		return baseURLProduction
	}
	return baseURLTest
}

// NewTransport creates a transport for the given environment. The underlying
// http.Client keeps a cookie jar so the portal session survives across
// calls, with a fixed 30 second timeout.
func NewTransport(environment string) *Transport {
	jar, _ := cookiejar.New(nil)
	return newTransport(environment, &http.Client{
		Timeout: 30 * time.Second,
		Jar:     jar,
	})
}

// NewTransportWithClient creates a transport using a caller-supplied HTTP
// client. Intended for tests.
func NewTransportWithClient(environment string, client HTTPDoer) *Transport {
	return newTransport(environment, client)
}

func newTransport(environment string, client HTTPDoer) *Transport {
	return &Transport{
		baseURL: BaseURLFor(environment),
		headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded;charset=UTF-8",
			"Accept":       "application/json, text/plain, */*",
			"User-Agent":   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		client: client,
		log:    logger.WithComponent("portal-transport"),
	}
}

// BaseURL returns the portal base URL this transport targets.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// Exchange POSTs a form-encoded payload to the given endpoint and returns
// the raw response body. Any network failure or non-2xx status is returned
// as a *TransportError carrying the response body when one was received.
// No retry is performed at this layer.
func (t *Transport) Exchange(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	reqURL := t.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Error().
			Err(err).
			Str("endpoint", endpoint).
			Msg("Portal request failed")
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.log.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.log.Error().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("Portal returned error status")
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
