package response

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	money "github.com/rezonia/tally-connector/internal/decimal"
	"github.com/rezonia/tally-connector/internal/model"
	"github.com/rezonia/tally-connector/internal/normalize"
)

// rawRecord mirrors the record JSON shape with every value left undecoded,
// so numbers may arrive as JSON numbers or as locale-formatted strings.
// amount, description and unit_price are the older prompt's field names.
type rawRecord struct {
	InvoiceNumber json.RawMessage `json:"invoice_number"`
	InvoiceDate   json.RawMessage `json:"invoice_date"`
	CustomerName  json.RawMessage `json:"customer_name"`
	TotalAmount   json.RawMessage `json:"total_amount"`
	Amount        json.RawMessage `json:"amount"`
	Currency      json.RawMessage `json:"currency"`
	IGSTAmount    json.RawMessage `json:"igst_amount"`
	CGSTAmount    json.RawMessage `json:"cgst_amount"`
	SGSTAmount    json.RawMessage `json:"sgst_amount"`
	Items         json.RawMessage `json:"items"`
}

type rawItem struct {
	ItemName    json.RawMessage `json:"item_name"`
	Description json.RawMessage `json:"description"`
	Quantity    json.RawMessage `json:"quantity"`
	UOM         json.RawMessage `json:"uom"`
	Rate        json.RawMessage `json:"rate"`
	UnitPrice   json.RawMessage `json:"unit_price"`
	Amount      json.RawMessage `json:"amount"`
	HSNCode     json.RawMessage `json:"hsn_code"`
}

type decoder struct {
	amounts *normalize.AmountNormalizer
	logger  *zap.Logger
}

// DecodeRecord converts one JSON object into an InvoiceRecord, defaulting
// missing fields. Bad amounts degrade to zero; it never fails on well-formed JSON.
func DecodeRecord(data []byte, logger *zap.Logger) (model.InvoiceRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &decoder{amounts: normalize.NewAmountNormalizer(logger), logger: logger}
	return d.record(data)
}

func (d *decoder) record(data []byte) (model.InvoiceRecord, error) {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.InvoiceRecord{}, err
	}

	rec := model.InvoiceRecord{
		InvoiceNumber: text(raw.InvoiceNumber),
		InvoiceDate:   text(raw.InvoiceDate),
		CustomerName:  text(raw.CustomerName),
		Currency:      text(raw.Currency),
		IGSTAmount:    d.amount(raw.IGSTAmount),
		CGSTAmount:    d.amount(raw.CGSTAmount),
		SGSTAmount:    d.amount(raw.SGSTAmount),
	}
	if rec.InvoiceNumber == "" {
		rec.InvoiceNumber = model.DefaultInvoiceNumber
	}
	if rec.CustomerName == "" {
		rec.CustomerName = model.DefaultCustomerName
	}
	if present(raw.TotalAmount) {
		rec.TotalAmount = d.amount(raw.TotalAmount)
	} else {
		rec.TotalAmount = d.amount(raw.Amount)
	}

	rec.Items = d.items(raw.Items, rec.InvoiceNumber)
	return rec, nil
}

func (d *decoder) items(data json.RawMessage, invoiceNumber string) []model.LineItem {
	if !present(data) {
		return nil
	}
	var raws []rawItem
	if err := json.Unmarshal(data, &raws); err != nil {
		d.logger.Warn("ignoring malformed items",
			zap.String("invoice_number", invoiceNumber),
			zap.Error(err),
		)
		return nil
	}

	items := make([]model.LineItem, 0, len(raws))
	for _, raw := range raws {
		item := model.LineItem{
			ItemName: text(raw.ItemName),
			Quantity: d.amount(raw.Quantity),
			UOM:      text(raw.UOM),
			Amount:   d.amount(raw.Amount),
			HSNCode:  text(raw.HSNCode),
		}
		if item.ItemName == "" {
			item.ItemName = text(raw.Description)
		}
		if present(raw.Rate) {
			item.Rate = d.amount(raw.Rate)
		} else {
			item.Rate = d.amount(raw.UnitPrice)
		}
		items = append(items, item)
	}
	return items
}

// amount treats a missing value as zero and normalises anything else
func (d *decoder) amount(raw json.RawMessage) decimal.Decimal {
	if !present(raw) {
		return money.Zero
	}
	return d.amounts.Normalize(text(raw))
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// text renders a scalar JSON value as a trimmed string; objects and arrays yield ""
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if !present(raw) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '{', '[':
		return ""
	default:
		return string(raw)
	}
}
