package portal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a decimal currency value as the portal serializes it. The portal
// is inconsistent about the wire type: list responses carry totals as JSON
// strings ("15000.00") while some endpoints return bare numbers, so both are
// accepted on decode. Amounts marshal back as strings, which is what the
// draft-create command expects.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal as a portal amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// UnmarshalJSON accepts both string and numeric encodings. Empty and null
// values decode as zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}

	s := string(data)
	if s[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
	}
	if s == "" {
		a.Decimal = decimal.Zero
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("amount: parse %q: %w", s, err)
	}
	a.Decimal = d
	return nil
}

// MarshalJSON encodes the amount as a string with two decimal places.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.StringFixed(2))
}

// Record is an invoice in the portal's native field vocabulary. It exists
// only as the wire representation; the facade converts it to the normalized
// model before anything above sees it.
type Record struct {
	ETTN           string `json:"ettn"`          // portal-assigned invoice UUID
	DocumentNumber string `json:"belgeNumarasi"` // human-facing document number
	DocumentDate   string `json:"belgeTarihi"`   // DD/MM/YYYY
	SenderTitle    string `json:"gonderenUnvan"` // supplier
	ReceiverTitle  string `json:"aliciUnvan"`    // customer
	Total          Amount `json:"toplamTutar"`
	Currency       string `json:"paraBirimi"`
	ApprovalStatus string `json:"onayDurumu"`
}

// LineItem is a single goods/services row of a draft invoice in the
// portal's native vocabulary.
type LineItem struct {
	Name           string `json:"malHizmet"`
	Quantity       string `json:"miktar"`
	Unit           string `json:"birim"`
	UnitPrice      string `json:"birimFiyat"`
	Total          string `json:"malHizmetTutari"`
	VATRate        string `json:"kdvOrani"`
	VATAmount      string `json:"kdvTutari"`
	DiscountRate   string `json:"iskontoOrani"`
	DiscountAmount string `json:"iskontoTutari"`
	DiscountReason string `json:"iskontoNedeni"`
}

// Draft is the full draft-invoice payload the create command requires. The
// portal insists on the complete flat structure even when most fields are
// blank, so the zero values below are part of the protocol, not omissions.
type Draft struct {
	DocumentNumber string `json:"belgeNumarasi"`
	InvoiceDate    string `json:"faturaTarihi"` // caller's YYYY-MM-DD, passed through unconverted
	Time           string `json:"saat"`         // HH:MM:SS
	Currency       string `json:"paraBirimi"`
	ExchangeRate   string `json:"dovzTLkur"`
	InvoiceType    string `json:"faturaTipi"` // "SATIS"

	// Buyer identity and address fragments.
	TaxOrIdentityNumber string `json:"vknTckn"`
	BuyerTitle          string `json:"aliciUnvan"`
	BuyerFirstName      string `json:"aliciAdi"`
	BuyerLastName       string `json:"aliciSoyadi"`
	BuildingName        string `json:"binaAdi"`
	BuildingNumber      string `json:"binaNo"`
	DoorNumber          string `json:"kapiNo"`
	Town                string `json:"kasabaKoy"`
	TaxOffice           string `json:"vergiDairesi"`
	Country             string `json:"ulke"`
	Street              string `json:"bulvarcaddesokak"`
	District            string `json:"mahalleSemtIlce"`
	City                string `json:"sehir"`
	PostalCode          string `json:"postaKodu"`
	Phone               string `json:"tel"`
	Fax                 string `json:"fax"`
	Email               string `json:"eposta"`
	Website             string `json:"websitesi"`

	// Tax fields.
	Returns              []LineItem `json:"iadeTable"`
	SpecialBaseAmount    string     `json:"ozelMatrahTutari"`
	SpecialBaseRate      int        `json:"ozelMatrahOrani"`
	SpecialBaseTaxAmount string     `json:"ozelMatrahVergiTutari"`
	TaxType              string     `json:"vergiCesidi"`

	// Line items and totals.
	Items              []LineItem `json:"malHizmetTable"`
	DiscountType       string     `json:"tip"` // "İskonto"
	TaxBase            string     `json:"matrah"`
	ItemsTotal         string     `json:"malhizmetToplamTutari"`
	TotalDiscount      string     `json:"toplamIskonto"`
	CalculatedVAT      string     `json:"hesaplanankdv"`
	TaxTotal           string     `json:"vergilerToplami"`
	TotalIncludingTax  string     `json:"vergilerDahilToplamTutar"`
	PayableAmount      string     `json:"odenecekTutar"`

	// Trailing metadata the portal requires as literals.
	Note                 string `json:"not"`
	OrderNumber          string `json:"siparisNumarasi"`
	OrderDate            string `json:"siparisTarihi"`
	DispatchNumber       string `json:"irsaliyeNumarasi"`
	DispatchDate         string `json:"irsaliyeTarihi"`
	ReceiptNumber        string `json:"fisNo"`
	ReceiptDate          string `json:"fisTarihi"`
	ReceiptTime          string `json:"fisSaati"`
	ReceiptType          string `json:"fisTipi"`
	ZReportNumber        string `json:"zRaporNo"`
	CashRegisterSerialNo string `json:"okcSeriNo"`
}

// response is the common envelope of commanded portal calls. Data is left
// raw because its shape depends on the command: a record list for fetches,
// a bare string for view and create.
type response struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// loginResponse is the envelope of the assos-login call. A non-empty UserID
// is the portal's way of signalling a successful login.
type loginResponse struct {
	UserID string `json:"userid"`
	Token  string `json:"token"`
	Error  string `json:"error"`
}
