package model

// ParseOutcome is the result of salvaging records from raw model text.
// Exactly one of Records or Failure is set; check OK before using Records.
type ParseOutcome struct {
	Records []InvoiceRecord
	Failure *ParseError
}

// Parsed wraps a successful record list
func Parsed(records []InvoiceRecord) ParseOutcome {
	return ParseOutcome{Records: records}
}

// Failed wraps a structural parse failure
func Failed(err *ParseError) ParseOutcome {
	return ParseOutcome{Failure: err}
}

// OK reports whether the outcome carries records. The zero value is not OK.
func (o ParseOutcome) OK() bool {
	return o.Failure == nil && len(o.Records) > 0
}

// Err returns the failure of a non-OK outcome, or nil. An outcome with
// neither records nor a failure reports ReasonNoStructure.
func (o ParseOutcome) Err() error {
	switch {
	case o.OK():
		return nil
	case o.Failure != nil:
		return o.Failure
	default:
		return NewParseError(ReasonNoStructure, "", nil)
	}
}

// Results flattens the outcome into per-record results for batch conversion.
// A failure becomes a single error-tagged result.
func (o ParseOutcome) Results() []RecordResult {
	if !o.OK() {
		return []RecordResult{{Err: o.Err()}}
	}
	results := make([]RecordResult, len(o.Records))
	for i := range o.Records {
		results[i] = RecordResult{Record: &o.Records[i]}
	}
	return results
}

// RecordResult is either a record or the error that prevented producing one
type RecordResult struct {
	Record *InvoiceRecord
	Err    error
}

// IsError reports whether the result is error-tagged
func (r RecordResult) IsError() bool {
	return r.Err != nil || r.Record == nil
}

// VoucherDocument is a rendered import document keyed by its invoice number
type VoucherDocument struct {
	InvoiceNumber string
	XML           []byte
}

// String returns the XML text
func (d VoucherDocument) String() string {
	return string(d.XML)
}
