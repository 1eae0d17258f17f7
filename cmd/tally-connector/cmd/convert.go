package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	convertDryRun bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert saved model output into Tally vouchers",
	Long: `Convert raw vision model replies or extracted JSON files into Tally
voucher XML without calling the API.

Each input is run through the response parser, so prose, markdown fences
and thousands separators around the JSON are tolerated.

Examples:
  tally-connector convert reply.txt
  tally-connector convert invoice_output/json/*.json -o rebuilt
  tally-connector convert reply.txt --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().BoolVar(&convertDryRun, "dry-run", false, "Print vouchers to stdout instead of writing files")
}

func runConvert(cmd *cobra.Command, args []string) error {
	pipeline := newPipeline()
	out := cmd.OutOrStdout()

	failed := 0
	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}

		conv := pipeline.ConvertText(string(data))
		printVerbose("%s: %d records, %d vouchers\n", file, len(conv.Records), len(conv.Documents))

		if len(conv.Documents) == 0 {
			failed++
			fmt.Fprintf(out, "[FAIL] %s\n", file)
			for _, err := range conv.Skipped {
				fmt.Fprintf(out, "    Error: %v\n", err)
			}
			continue
		}

		fmt.Fprintf(out, "[OK] %s\n", file)
		for _, verr := range conv.Unbalanced {
			fmt.Fprintf(out, "    Warning: %s\n", verr.Error())
		}

		if convertDryRun {
			keys := make([]string, 0, len(conv.Documents))
			for k := range conv.Documents {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintln(out, conv.Documents[k].String())
			}
			continue
		}

		if _, err := pipeline.SaveRecords(stemOf(file), conv.Records); err != nil {
			return err
		}
		paths, err := pipeline.Save(conv)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(out, "    Wrote %s\n", p)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files produced no vouchers", failed, len(args))
	}
	return nil
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// printJSON writes v as indented JSON
func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
