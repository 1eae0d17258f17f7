package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	money "github.com/rezonia/tally-connector/internal/decimal"
	"github.com/rezonia/tally-connector/internal/parser/response"
	"github.com/rezonia/tally-connector/internal/tally"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check that extracted invoices balance",
	Long: `Validate extracted invoice records before importing them into Tally.

Each record is posted to its ledgers (party, Sales, IGST, CGST, SGST) and
the entries must net to zero. Files may hold raw model output or saved
*_extracted.json records.

Examples:
  tally-connector validate invoice_output/json/scan_extracted.json
  tally-connector validate reply.txt --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print results as JSON")
}

// ValidationResult is the balance check of one record
type ValidationResult struct {
	File          string `json:"file"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Total         string `json:"total_amount,omitempty"`
	Valid         bool   `json:"valid"`
	Error         string `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	parser := response.NewParser(response.WithLogger(log))

	var results []ValidationResult
	invalid := 0
	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}

		outcome := parser.Parse(string(data))
		if !outcome.OK() {
			invalid++
			results = append(results, ValidationResult{File: file, Error: outcome.Err().Error()})
			continue
		}

		for i := range outcome.Records {
			rec := &outcome.Records[i]
			r := ValidationResult{
				File:          file,
				InvoiceNumber: rec.VoucherNumber(),
				Total:         money.Format(rec.TotalAmount),
				Valid:         true,
			}
			if verr := tally.CheckBalance(rec); verr != nil {
				r.Valid = false
				r.Error = verr.Message
				invalid++
			}
			results = append(results, r)
		}
	}

	if validateJSON {
		if err := printJSON(cmd, results); err != nil {
			return err
		}
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILE\tINVOICE\tTOTAL\tSTATUS")
		fmt.Fprintln(w, "----\t-------\t-----\t------")
		for _, r := range results {
			status := "OK"
			if !r.Valid {
				status = "INVALID: " + r.Error
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.File, r.InvoiceNumber, r.Total, status)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d invalid records", invalid)
	}
	return nil
}
