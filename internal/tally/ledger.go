package tally

import (
	"github.com/shopspring/decimal"

	money "github.com/rezonia/tally-connector/internal/decimal"
	"github.com/rezonia/tally-connector/internal/model"
)

// SalesLedger is the ledger credited with the tax-exclusive subtotal
const SalesLedger = "Sales"

// LedgerEntry is one signed posting of a voucher
type LedgerEntry struct {
	Name           string
	Amount         decimal.Decimal
	DeemedPositive bool
}

// LedgerEntries returns the postings for rec in emission order:
// party (debit), sales, then each non-zero GST component. A nil record
// posts like an empty one.
func LedgerEntries(rec *model.InvoiceRecord) []LedgerEntry {
	if rec == nil {
		rec = &model.InvoiceRecord{}
	}
	entries := []LedgerEntry{
		{Name: rec.PartyName(), Amount: rec.TotalAmount.Neg(), DeemedPositive: true},
		{Name: SalesLedger, Amount: rec.Subtotal()},
	}
	for _, kind := range model.TaxKinds {
		if amt := rec.Tax(kind); money.IsPositive(amt) {
			entries = append(entries, LedgerEntry{Name: string(kind), Amount: amt})
		}
	}
	return entries
}

// CheckBalance reports a validation error when the postings of rec do not
// net to zero, i.e. total_amount differs from subtotal plus taxes.
func CheckBalance(rec *model.InvoiceRecord) *model.ValidationError {
	amounts := make([]decimal.Decimal, 0, 5)
	for _, e := range LedgerEntries(rec) {
		amounts = append(amounts, e.Amount)
	}
	diff := money.Sum(amounts)
	if diff.IsZero() {
		return nil
	}
	return model.NewValidationError("total_amount", money.Format(rec.TotalAmount), "balanced",
		"ledger entries do not net to zero (difference "+money.Format(diff)+")")
}
