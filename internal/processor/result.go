package processor

import (
	"github.com/rezonia/tally-connector/internal/model"
)

// Status is the outcome of processing one file
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Result contains processing result for one input file
type Result struct {
	File      string
	Status    Status
	Records   []model.InvoiceRecord
	Documents map[string]model.VoucherDocument
	JSONPath  string
	XMLPaths  []string
	Warnings  []string
	Error     error
}

// OK reports whether the file was processed successfully
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

func newResult(file string) *Result {
	return &Result{File: file, Status: StatusPending}
}

func failed(file string, err error) *Result {
	return newResult(file).fail(err)
}

func (r *Result) fail(err error) *Result {
	r.Status = StatusFailed
	r.Error = err
	return r
}
