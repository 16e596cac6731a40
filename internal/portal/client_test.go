package portal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDoer is a scripted HTTPDoer: it captures every outgoing request and
// replays a queue of canned responses.
type fakeDoer struct {
	forms     []url.Values
	endpoints []string
	responses []fakeResponse
}

type fakeResponse struct {
	status int
	body   string
	err    error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	f.forms = append(f.forms, form)
	f.endpoints = append(f.endpoints, req.URL.Path)

	if len(f.responses) == 0 {
		return nil, errors.New("fakeDoer: no scripted response left")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]

	if next.err != nil {
		return nil, next.err
	}
	return &http.Response{
		StatusCode: next.status,
		Body:       io.NopCloser(strings.NewReader(next.body)),
		Header:     make(http.Header),
	}, nil
}

func newTestClient(t *testing.T, responses ...fakeResponse) (*Client, *fakeDoer) {
	t.Helper()
	doer := &fakeDoer{responses: responses}
	transport := NewTransportWithClient("test", doer)
	return NewClientWithTransport("1234567890", "secret", "test", transport), doer
}

func loginOK() fakeResponse {
	return fakeResponse{status: 200, body: `{"userid":"1234567890","token":"session-token-1"}`}
}

func TestClientAuthenticate(t *testing.T) {
	client, doer := newTestClient(t, loginOK())

	token, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "session-token-1", token)

	require.Len(t, doer.forms, 1)
	form := doer.forms[0]
	assert.Equal(t, "/earsiv-services/assos-login", doer.endpoints[0])
	assert.Equal(t, "anologin", form.Get("assoscmd"))
	assert.Equal(t, "json", form.Get("rtype"))
	assert.Equal(t, "1234567890", form.Get("userid"))
	assert.Equal(t, "secret", form.Get("sifre"))
	assert.Equal(t, "secret", form.Get("sifre2"))
	assert.Equal(t, "1", form.Get("parola"))
}

func TestClientAuthenticateRejected(t *testing.T) {
	client, _ := newTestClient(t, fakeResponse{status: 200, body: `{"error":"Kullanıcı bulunamadı"}`})

	_, err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Contains(t, err.Error(), "Kullanıcı bulunamadı")
}

func TestClientAuthenticateRejectedGenericReason(t *testing.T) {
	client, _ := newTestClient(t, fakeResponse{status: 200, body: `{}`})

	_, err := client.Authenticate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Contains(t, err.Error(), "unknown authentication error")
}

func TestClientAuthenticateTwiceReauthenticates(t *testing.T) {
	// Each Authenticate call opens a fresh session; the second call must
	// hit the portal again rather than reuse the held token.
	client, doer := newTestClient(t,
		loginOK(),
		fakeResponse{status: 200, body: `{"userid":"1234567890","token":"session-token-2"}`},
	)

	first, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	second, err := client.Authenticate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "session-token-1", first)
	assert.Equal(t, "session-token-2", second)
	assert.Len(t, doer.forms, 2)
}

func TestClientListInvoicesLazyLogin(t *testing.T) {
	records := `{"data":[
		{"ettn":"id-1","belgeNumarasi":"N1","belgeTarihi":"01/12/2024","gonderenUnvan":"S","aliciUnvan":"C","toplamTutar":"100.00","paraBirimi":"TRY","onayDurumu":"Onaylandı"},
		{"ettn":"id-2","belgeNumarasi":"N2","belgeTarihi":"01/12/2024","gonderenUnvan":"S","aliciUnvan":"C","toplamTutar":250,"paraBirimi":"TRY","onayDurumu":"Beklemede"}
	]}`
	client, doer := newTestClient(t, loginOK(), fakeResponse{status: 200, body: records})

	start := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	got, err := client.ListInvoices(context.Background(), start, end, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "id-1", got[0].ETTN)
	assert.Equal(t, "100.00", got[0].Total.StringFixed(2))
	assert.Equal(t, "250.00", got[1].Total.StringFixed(2))

	// First exchange is the lazy login, second the fetch command.
	require.Len(t, doer.endpoints, 2)
	assert.Equal(t, "/earsiv-services/assos-login", doer.endpoints[0])
	assert.Equal(t, "/earsiv-services/portal/getUserInvoiceData", doer.endpoints[1])

	form := doer.forms[1]
	assert.Equal(t, "EARSIV_PORTAL_TASLAKLARI_GETIR", form.Get("cmd"))
	assert.Equal(t, "RG_BASITFATURA", form.Get("pageName"))
	assert.Equal(t, "session-token-1", form.Get("token"))
	assert.NotEmpty(t, form.Get("callid"))

	var jp map[string]string
	require.NoError(t, json.Unmarshal([]byte(form.Get("jp")), &jp))
	assert.Equal(t, "01/12/2024", jp["baslangic"])
	assert.Equal(t, "31/12/2024", jp["bitis"])
	assert.Equal(t, "5000/30000", jp["hangiTip"])
}

func TestClientListInvoicesLimit(t *testing.T) {
	records := `{"data":[{"ettn":"id-1"},{"ettn":"id-2"},{"ettn":"id-3"}]}`
	client, _ := newTestClient(t, loginOK(), fakeResponse{status: 200, body: records})

	got, err := client.ListInvoices(context.Background(), time.Now(), time.Now(), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestClientListInvoicesNonPositiveLimit(t *testing.T) {
	records := `{"data":[{"ettn":"id-1"},{"ettn":"id-2"}]}`

	t.Run("zero", func(t *testing.T) {
		client, _ := newTestClient(t, loginOK(), fakeResponse{status: 200, body: records})
		got, err := client.ListInvoices(context.Background(), time.Now(), time.Now(), 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("negative", func(t *testing.T) {
		client, _ := newTestClient(t, loginOK(), fakeResponse{status: 200, body: records})
		got, err := client.ListInvoices(context.Background(), time.Now(), time.Now(), -1)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestClientListInvoicesNoData(t *testing.T) {
	// A response without a data field is an empty range, not a failure.
	client, _ := newTestClient(t, loginOK(), fakeResponse{status: 200, body: `{}`})

	got, err := client.ListInvoices(context.Background(), time.Now(), time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClientListInvoicesDegradesOnTransportFailure(t *testing.T) {
	client, _ := newTestClient(t, loginOK(), fakeResponse{status: 502, body: "bad gateway"})

	got, err := client.ListInvoices(context.Background(), time.Now(), time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClientListInvoicesPropagatesAuthFailure(t *testing.T) {
	// The lazy login inside a token-requiring operation must surface
	// authentication failures, not degrade them to an empty result.
	client, _ := newTestClient(t, fakeResponse{status: 200, body: `{"error":"nope"}`})

	_, err := client.ListInvoices(context.Background(), time.Now(), time.Now(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestClientFindInvoice(t *testing.T) {
	records := `{"data":[
		{"ettn":"id-1","belgeNumarasi":"N1"},
		{"ettn":"id-2","belgeNumarasi":"N2"}
	]}`

	t.Run("by ettn", func(t *testing.T) {
		client, _ := newTestClient(t, loginOK(), fakeResponse{status: 200, body: records})
		got, err := client.FindInvoice(context.Background(), time.Now(), "id-2")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "N2", got.DocumentNumber)
	})

	t.Run("by document number", func(t *testing.T) {
		client, _ := newTestClient(t, loginOK(), fakeResponse{status: 200, body: records})
		got, err := client.FindInvoice(context.Background(), time.Now(), "N1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "id-1", got.ETTN)
	})

	t.Run("no match", func(t *testing.T) {
		client, _ := newTestClient(t, loginOK(), fakeResponse{status: 200, body: records})
		got, err := client.FindInvoice(context.Background(), time.Now(), "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestClientInvoiceView(t *testing.T) {
	client, doer := newTestClient(t, loginOK(), fakeResponse{status: 200, body: `{"data":"<html>fatura</html>"}`})

	html, err := client.InvoiceView(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, "<html>fatura</html>", html)

	form := doer.forms[1]
	assert.Equal(t, "EARSIV_PORTAL_FATURA_GOSTER", form.Get("cmd"))
	assert.Equal(t, "RG_TASLAKLAR", form.Get("pageName"))
	assert.JSONEq(t, `{"ettn":"id-1"}`, form.Get("jp"))
}

func TestClientCreateDraft(t *testing.T) {
	client, doer := newTestClient(t, loginOK(), fakeResponse{status: 200, body: `{"data":"new-ettn"}`})

	draft := &Draft{DocumentNumber: "ABC2025000001", InvoiceType: "SATIS"}
	ettn, err := client.CreateDraft(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "new-ettn", ettn)

	form := doer.forms[1]
	assert.Equal(t, "EARSIV_PORTAL_FATURA_OLUSTUR", form.Get("cmd"))
	assert.Equal(t, "RG_BASITFATURA", form.Get("pageName"))

	var jp map[string]any
	require.NoError(t, json.Unmarshal([]byte(form.Get("jp")), &jp))
	assert.Equal(t, "ABC2025000001", jp["belgeNumarasi"])
	assert.Equal(t, "SATIS", jp["faturaTipi"])
	// The portal insists on the full flat payload; blanks are protocol.
	assert.Contains(t, jp, "okcSeriNo")
	assert.Contains(t, jp, "vergiDairesi")
}

func TestClientSignDraft(t *testing.T) {
	t.Run("acknowledged", func(t *testing.T) {
		client, doer := newTestClient(t, loginOK(), fakeResponse{status: 200, body: `{"data":"1 adet taslak imzalandı"}`})
		signed, err := client.SignDraft(context.Background(), "id-1")
		require.NoError(t, err)
		assert.True(t, signed)

		form := doer.forms[1]
		assert.Equal(t, "EARSIV_PORTAL_FATURA_IMZALA", form.Get("cmd"))
		assert.JSONEq(t, `{"imzalanacaklar":["id-1"]}`, form.Get("jp"))
	})

	t.Run("no data field", func(t *testing.T) {
		client, _ := newTestClient(t, loginOK(), fakeResponse{status: 200, body: `{}`})
		signed, err := client.SignDraft(context.Background(), "id-1")
		require.NoError(t, err)
		assert.False(t, signed)
	})
}

func TestClientCancelDraft(t *testing.T) {
	client, doer := newTestClient(t, loginOK(), fakeResponse{status: 200, body: `{"data":"1 adet taslak silindi"}`})

	cancelled, err := client.CancelDraft(context.Background(), "id-1", "duplicate entry")
	require.NoError(t, err)
	assert.True(t, cancelled)

	form := doer.forms[1]
	assert.Equal(t, "EARSIV_PORTAL_FATURA_SIL", form.Get("cmd"))
	assert.JSONEq(t, `{"silinecekler":["id-1"],"aciklama":"duplicate entry"}`, form.Get("jp"))
}

func TestClientDownloadURL(t *testing.T) {
	client, doer := newTestClient(t, loginOK())

	_, err := client.Authenticate(context.Background())
	require.NoError(t, err)

	got := client.DownloadURL("id-1")
	parsed, err := url.Parse(got)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "https://earsivportaltest.efatura.gov.tr/earsiv-services/download?"))
	query := parsed.Query()
	assert.Equal(t, "session-token-1", query.Get("token"))
	assert.Equal(t, "id-1", query.Get("ettn"))
	assert.Equal(t, "FATURA", query.Get("belgeTip"))
	assert.Equal(t, "Onaylandı", query.Get("onayDurumu"))
	assert.Equal(t, "EARSIV_PORTAL_BELGE_INDIR", query.Get("cmd"))

	// Pure string construction: no exchange beyond the login happened.
	assert.Len(t, doer.endpoints, 1)
}

func TestClientFreshCorrelationIDPerCommand(t *testing.T) {
	client, doer := newTestClient(t,
		loginOK(),
		fakeResponse{status: 200, body: `{}`},
		fakeResponse{status: 200, body: `{}`},
	)

	_, err := client.SignDraft(context.Background(), "id-1")
	require.NoError(t, err)
	_, err = client.SignDraft(context.Background(), "id-1")
	require.NoError(t, err)

	require.Len(t, doer.forms, 3)
	first := doer.forms[1].Get("callid")
	second := doer.forms[2].Get("callid")
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}
