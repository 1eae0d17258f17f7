package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	money "github.com/rezonia/tally-connector/internal/decimal"
	"github.com/rezonia/tally-connector/internal/processor"
)

// SheetName is the worksheet holding one row per invoice
const SheetName = "Invoices"

// Columns of the XLSX report
var Columns = []string{"File", "Status", "Invoice", "Date", "Customer", "Total", "IGST", "CGST", "SGST", "Error"}

// WriteXLSX writes the batch as a spreadsheet. Successful files contribute
// one row per invoice; failed files one row carrying the error.
func WriteXLSX(w io.Writer, results []*processor.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 2
	for _, r := range results {
		for _, values := range rows(r) {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
			row++
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "E", "E", 30); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	return f.Write(w)
}

func rows(r *processor.Result) [][]interface{} {
	if !r.OK() {
		msg := ""
		if r.Error != nil {
			msg = r.Error.Error()
		}
		return [][]interface{}{{r.File, string(r.Status), "", "", "", "", "", "", "", msg}}
	}

	out := make([][]interface{}, 0, len(r.Records))
	for i := range r.Records {
		rec := &r.Records[i]
		out = append(out, []interface{}{
			r.File,
			string(r.Status),
			rec.VoucherNumber(),
			rec.InvoiceDate,
			rec.PartyName(),
			money.Format(rec.TotalAmount),
			money.Format(rec.IGSTAmount),
			money.Format(rec.CGSTAmount),
			money.Format(rec.SGSTAmount),
			"",
		})
	}
	return out
}
