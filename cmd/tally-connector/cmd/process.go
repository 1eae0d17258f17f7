package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/tally-connector/internal/processor"
	"github.com/rezonia/tally-connector/internal/report"
)

// ReportFileName is written into the output directory after each run
const ReportFileName = "processing_report.txt"

var (
	asPages    bool
	xlsxReport string
	timeout    time.Duration
)

var processCmd = &cobra.Command{
	Use:   "process [files or directories...]",
	Short: "Extract invoices and write Tally vouchers",
	Long: `Process scanned invoices through the vision model and write the results.

Supported formats:
  - PDF: .pdf
  - Images: .png, .jpg, .jpeg

For every input file the extracted records are saved as
<output>/json/<name>_extracted.json and each invoice becomes
<output>/xml/voucher_<invoice number>.xml. A summary is printed and saved
as <output>/processing_report.txt.

Examples:
  tally-connector process invoice.pdf --api-key <key>
  tally-connector process scans/
  tally-connector process page1.png page2.png --pages
  tally-connector process scans/ --xlsx summary.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&asPages, "pages", false, "Treat all inputs as pages of a single invoice")
	processCmd.Flags().StringVar(&xlsxReport, "xlsx", "", "Also write the summary as an Excel workbook")
	processCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Overall processing timeout")
}

func runProcess(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no invoice files found to process")
	}
	printVerbose("Found %d files to process\n", len(files))

	pipeline := newPipeline()
	if !pipeline.HasExtractor() {
		return errors.New("an API key is required to process invoices (set --api-key or LLM_API_KEY)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var results []*processor.Result
	if asPages {
		results = []*processor.Result{pipeline.ProcessPages(ctx, files...)}
	} else {
		results = pipeline.ProcessFiles(ctx, files)
	}

	if err := report.WriteText(cmd.OutOrStdout(), results, pipeline.OutputDir()); err != nil {
		return err
	}
	if err := saveReport(pipeline.OutputDir(), results); err != nil {
		return err
	}
	if xlsxReport != "" {
		if err := saveXLSX(xlsxReport, results); err != nil {
			return err
		}
		printVerbose("Wrote %s\n", xlsxReport)
	}

	if t := report.Summary(results); t.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", t.Failed, t.Processed)
	}
	return nil
}

// collectFiles expands directories into the supported files they contain.
// Explicit file arguments are kept even when unsupported so they are reported.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("file not found: %s", arg)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := processor.ListInvoices(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func saveReport(outputDir string, results []*processor.Result) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outputDir, ReportFileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := report.WriteText(f, results, outputDir); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	printVerbose("Report saved to %s\n", path)
	return nil
}

func saveXLSX(path string, results []*processor.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	defer f.Close()
	return report.WriteXLSX(f, results)
}
