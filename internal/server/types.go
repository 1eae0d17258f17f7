package server

import (
	"github.com/rezonia/tally-connector/internal/model"
)

// ParseResponse is the response for the parse endpoint
type ParseResponse struct {
	Records []model.InvoiceRecord `json:"records"`
}

// ParseErrorResponse describes a structural parse failure
type ParseErrorResponse struct {
	Error    string `json:"error"`
	Reason   string `json:"reason"`
	Fragment string `json:"fragment,omitempty"`
}

// ConvertResponse is the response for the convert endpoint
type ConvertResponse struct {
	Documents  map[string]string `json:"documents"`
	Skipped    []string          `json:"skipped,omitempty"`
	Unbalanced []string          `json:"unbalanced,omitempty"`
}

// BalanceResult is the balance check of one record
type BalanceResult struct {
	InvoiceNumber string `json:"invoice_number"`
	Balanced      bool   `json:"balanced"`
	Error         string `json:"error,omitempty"`
}

// ValidationResponse is the response for validate endpoint
type ValidationResponse struct {
	Valid   bool            `json:"valid"`
	Results []BalanceResult `json:"results"`
}

// ProcessRequest is the body of the process endpoint
type ProcessRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
}

// ProcessResponse is the response for process endpoints
type ProcessResponse struct {
	File          string                `json:"file"`
	Status        string                `json:"status"`
	ExtractedData []model.InvoiceRecord `json:"extracted_data,omitempty"`
	TallyXML      map[string]string     `json:"tally_xml,omitempty"`
	Warnings      []string              `json:"warnings,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
