package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/tally-connector/internal/processor"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about invoice files",
	Long: `Display information about invoice files without calling the API.

Shows:
  - Detected file format (PDF, Image)
  - Page count for PDFs
  - File metadata and the extracted JSON name

Examples:
  tally-connector info invoice.pdf
  tally-connector info scans/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no files found")
	}

	out := cmd.OutOrStdout()
	for _, file := range files {
		printFileInfo(out, file)
		fmt.Fprintln(out)
	}
	return nil
}

func printFileInfo(w io.Writer, filePath string) {
	fmt.Fprintf(w, "File: %s\n", filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		fmt.Fprintf(w, "  Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "  Size: %d bytes\n", info.Size())
	fmt.Fprintf(w, "  Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

	data, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(w, "  Error: %v\n", err)
		return
	}

	format := processor.DetectFormat(data)
	fmt.Fprintf(w, "  Format: %s\n", format)
	if !processor.IsSupported(filePath) {
		fmt.Fprintln(w, "  Supported: no")
		return
	}

	switch format {
	case processor.FormatPDF:
		pages, err := processor.PDFPageCount(data)
		if err != nil {
			fmt.Fprintf(w, "  Pages: unknown (%v)\n", err)
		} else {
			fmt.Fprintf(w, "  Pages: %d\n", pages)
		}
	case processor.FormatImage:
		fmt.Fprintf(w, "  MIME type: %s\n", processor.ImageMIMEType(data))
	}
	fmt.Fprintf(w, "  Extracted JSON: %s_extracted.json\n", stemOf(filePath))
}
