package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rezonia/tally-connector/internal/config"
	"github.com/rezonia/tally-connector/internal/llm"
	"github.com/rezonia/tally-connector/internal/logger"
	"github.com/rezonia/tally-connector/internal/processor"
)

var (
	version = "1.0.0"

	// Global flags
	verbose    bool
	configFile string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tally-connector",
	Short: "Turn scanned GST invoices into Tally voucher XML",
	Long: `Tally Connector reads scanned invoices (PDF and images), asks a vision
model to transcribe them, salvages the invoice records from the reply and
writes one Tally "Import Data" voucher XML per invoice.

Configuration is read from flags, TALLY_* environment variables
(LLM_API_KEY, LLM_BASE_URL and LLM_VISION_MODEL are also honoured) and an
optional config.yaml.

Examples:
  # Process a single scanned invoice
  tally-connector process invoice.pdf --api-key <key>

  # Process every invoice in a folder
  tally-connector process scans/ -o out

  # Convert saved model output without calling the API
  tally-connector convert reply.txt

  # Check that extracted records balance
  tally-connector validate invoice_output/json/*.json`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVar(&configFile, "config", "", "Config file (default: ./config.yaml if present)")
	flags.String("api-key", "", "API key for the vision model provider (env: LLM_API_KEY)")
	flags.String("llm-base-url", "", "OpenAI-compatible API base URL (env: LLM_BASE_URL)")
	flags.String("llm-vision-model", "", "Vision model ID (env: LLM_VISION_MODEL)")
	flags.StringP("output-dir", "o", "", "Directory for extracted JSON and voucher XML")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
}

// flagKeys maps persistent flags onto configuration keys
var flagKeys = map[string]string{
	"api-key":          "llm.api_key",
	"llm-base-url":     "llm.base_url",
	"llm-vision-model": "llm.vision_model",
	"output-dir":       "output.dir",
	"log-level":        "log.level",
}

func initConfig(cmd *cobra.Command, args []string) error {
	v, err := config.New(configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	cfg, err = config.Load(v)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log, err = logger.NewConsole(level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(log)

	if used := v.ConfigFileUsed(); used != "" {
		printVerbose("Using config file: %s\n", used)
	}
	return nil
}

// bindFlags binds only flags the user actually set so that unset flags do not
// shadow environment variables or the config file.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// newClient returns the configured LLM client, or nil without an API key
func newClient() *llm.Client {
	if !cfg.LLM.Enabled() {
		return nil
	}
	return llm.NewClient(cfg.LLM.APIKey,
		llm.WithBaseURL(cfg.LLM.BaseURL),
		llm.WithTimeout(cfg.LLM.Timeout),
		llm.WithDefaultModel(cfg.LLM.VisionModel),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
	)
}

func newPipeline() *processor.Pipeline {
	opts := []processor.Option{
		processor.WithOutputDir(cfg.Output.Dir),
		processor.WithWorkers(cfg.Convert.Workers),
		processor.WithLogger(log),
	}
	if client := newClient(); client != nil {
		opts = append(opts, processor.WithExtractor(llm.NewExtractor(client,
			llm.WithModel(cfg.LLM.VisionModel),
			llm.WithExtractorLogger(log),
		)))
		printVerbose("Vision extraction enabled (model: %s)\n", cfg.LLM.VisionModel)
	}
	return processor.NewPipeline(opts...)
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
