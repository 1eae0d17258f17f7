package model

import (
	"github.com/shopspring/decimal"
)

// Defaults applied when the extracted record omits identifying fields
const (
	DefaultInvoiceNumber = "UNKNOWN"
	DefaultCustomerName  = "Unknown"
)

// TaxKind identifies one of the GST components carried on an invoice
type TaxKind string

const (
	TaxIGST TaxKind = "IGST"
	TaxCGST TaxKind = "CGST"
	TaxSGST TaxKind = "SGST"
)

// TaxKinds lists GST components in the order they are posted to the ledger
var TaxKinds = []TaxKind{TaxIGST, TaxCGST, TaxSGST}

// InvoiceRecord is one invoice as salvaged from vision model output.
// Records are built once by the response parser and never mutated afterwards.
type InvoiceRecord struct {
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   string          `json:"invoice_date"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency,omitempty"`
	IGSTAmount    decimal.Decimal `json:"igst_amount"`
	CGSTAmount    decimal.Decimal `json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `json:"sgst_amount"`
	Items         []LineItem      `json:"items"`
}

// LineItem is a single inventory line of an invoice
type LineItem struct {
	ItemName string          `json:"item_name"`
	Quantity decimal.Decimal `json:"quantity"`
	UOM      string          `json:"uom,omitempty"`
	Rate     decimal.Decimal `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
	HSNCode  string          `json:"hsn_code,omitempty"`
}

// VoucherNumber returns the invoice number, or DefaultInvoiceNumber when absent
func (r *InvoiceRecord) VoucherNumber() string {
	if r.InvoiceNumber == "" {
		return DefaultInvoiceNumber
	}
	return r.InvoiceNumber
}

// PartyName returns the customer name, or DefaultCustomerName when absent
func (r *InvoiceRecord) PartyName() string {
	if r.CustomerName == "" {
		return DefaultCustomerName
	}
	return r.CustomerName
}

// Subtotal sums line amounts (tax exclusive)
func (r *InvoiceRecord) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// Tax returns the amount recorded for one GST component
func (r *InvoiceRecord) Tax(kind TaxKind) decimal.Decimal {
	switch kind {
	case TaxIGST:
		return r.IGSTAmount
	case TaxCGST:
		return r.CGSTAmount
	case TaxSGST:
		return r.SGSTAmount
	default:
		return decimal.Zero
	}
}
