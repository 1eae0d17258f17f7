// Package tallylib provides a public API for turning vision model output
// about GST invoices into Tally voucher import documents.
//
// Example usage:
//
//	outcome := tallylib.Parse(reply)
//	if !outcome.OK() {
//	    log.Fatal(outcome.Err())
//	}
//	docs := tallylib.BuildAll(outcome.Results())
//	fmt.Println(docs["INV-001"].String())
package tallylib

import (
	"github.com/rezonia/tally-connector/internal/model"
	"github.com/rezonia/tally-connector/internal/parser/response"
	"github.com/rezonia/tally-connector/internal/tally"
)

// Re-export core types for public API
type (
	InvoiceRecord   = model.InvoiceRecord
	LineItem        = model.LineItem
	ParseOutcome    = model.ParseOutcome
	RecordResult    = model.RecordResult
	VoucherDocument = model.VoucherDocument
)

// Re-export error types
type (
	ParseError      = model.ParseError
	ValidationError = model.ValidationError
	ExtractionError = model.ExtractionError
)

// Re-export parse failure reasons
const (
	ReasonNoStructure = model.ReasonNoStructure
	ReasonUnparseable = model.ReasonUnparseable
)

// Parse salvages invoice records from free-text model output
func Parse(raw string) ParseOutcome {
	return response.Parse(raw)
}

// Build renders one record as a Tally import document. A nil record renders
// with every field defaulted.
func Build(rec *InvoiceRecord) VoucherDocument {
	return tally.Build(rec)
}

// BuildAll renders every successful record, keyed by invoice number.
// Error-tagged results are skipped; a repeated invoice number keeps the later record.
func BuildAll(results []RecordResult) map[string]VoucherDocument {
	return tally.BuildAll(results)
}

// CheckBalance reports whether the record's ledger entries net to zero
func CheckBalance(rec *InvoiceRecord) *ValidationError {
	return tally.CheckBalance(rec)
}
