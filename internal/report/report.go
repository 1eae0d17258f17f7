package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	money "github.com/rezonia/tally-connector/internal/decimal"
	"github.com/rezonia/tally-connector/internal/processor"
)

// Totals counts processing outcomes
type Totals struct {
	Processed  int
	Successful int
	Failed     int
	Invoices   int
}

// Summary tallies a batch of results
func Summary(results []*processor.Result) Totals {
	var t Totals
	for _, r := range results {
		t.Processed++
		if r.OK() {
			t.Successful++
			t.Invoices += len(r.Records)
		} else {
			t.Failed++
		}
	}
	return t
}

const banner = `╔════════════════════════════════════════════════════════════╗
║         INVOICE PROCESSING PIPELINE - SUMMARY REPORT       ║
╚════════════════════════════════════════════════════════════╝`

// WriteText writes the human-readable batch report
func WriteText(w io.Writer, results []*processor.Result, outputDir string) error {
	t := Summary(results)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n\n", banner)
	fmt.Fprintf(&b, "Total Processed:  %d\n", t.Processed)
	fmt.Fprintf(&b, "Successful:       %d\n", t.Successful)
	fmt.Fprintf(&b, "Failed:           %d\n\n", t.Failed)

	fmt.Fprintf(&b, "Output Locations:\n")
	fmt.Fprintf(&b, "  JSON Files:     %s\n", absPath(filepath.Join(outputDir, "json")))
	fmt.Fprintf(&b, "  Tally XML:      %s\n\n", absPath(filepath.Join(outputDir, "xml")))

	b.WriteString("Details:\n")
	for _, r := range results {
		if r.OK() {
			fmt.Fprintf(&b, "\n[OK] %s", r.File)
			for i := range r.Records {
				rec := &r.Records[i]
				fmt.Fprintf(&b, "\n    Invoice: %s | Customer: %s | Amount: %s",
					rec.VoucherNumber(), rec.PartyName(), money.Format(rec.TotalAmount))
			}
			for _, warn := range r.Warnings {
				fmt.Fprintf(&b, "\n    Warning: %s", warn)
			}
			continue
		}
		fmt.Fprintf(&b, "\n[FAIL] %s", r.File)
		if r.Error != nil {
			fmt.Fprintf(&b, "\n    Error: %v", r.Error)
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
