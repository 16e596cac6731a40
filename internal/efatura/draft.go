package efatura

import (
	"time"

	"efatura/internal/portal"
	"efatura/pkg/models"
)

// commonUnitCode is the UN/ECE "piece" unit the portal expects on line
// items created through this surface.
const commonUnitCode = "C62"

// buildDraft projects the minimal creation request onto the portal's full
// draft payload. This is a one-way projection: every field not derivable
// from the request is a fixed default the portal requires verbatim, and no
// round-trip back to the request is attempted.
//
// The supplier identity fields of the request are not part of the payload;
// the portal derives the sender from the authenticated account.
func buildDraft(req *models.InvoiceCreateRequest, now time.Time) *portal.Draft {
	total := req.TotalAmount.StringFixed(2)

	items := make([]portal.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = portal.LineItem{
			Name:           item.Description,
			Quantity:       item.Quantity.String(),
			Unit:           commonUnitCode,
			UnitPrice:      item.UnitPrice.StringFixed(2),
			Total:          item.Total.StringFixed(2),
			VATRate:        "0",
			VATAmount:      "0",
			DiscountRate:   "0",
			DiscountAmount: "0",
		}
	}

	return &portal.Draft{
		DocumentNumber: req.InvoiceNumber,
		InvoiceDate:    req.IssueDate,
		Time:           now.Format("15:04:05"),
		Currency:       req.Currency,
		ExchangeRate:   "0",
		InvoiceType:    "SATIS",

		TaxOrIdentityNumber: req.CustomerVKN,
		BuyerTitle:          req.CustomerName,
		BuyerFirstName:      req.CustomerName,
		BuyerLastName:       "",
		Country:             "Türkiye",

		Returns:              []portal.LineItem{},
		SpecialBaseAmount:    "0",
		SpecialBaseRate:      0,
		SpecialBaseTaxAmount: "0",
		TaxType:              " ",

		Items:             items,
		DiscountType:      "İskonto",
		TaxBase:           total,
		ItemsTotal:        total,
		TotalDiscount:     "0",
		CalculatedVAT:     "0",
		TaxTotal:          "0",
		TotalIncludingTax: total,
		PayableAmount:     total,

		ReceiptTime: " ",
		ReceiptType: " ",
	}
}
