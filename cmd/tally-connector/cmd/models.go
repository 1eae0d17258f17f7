package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/tally-connector/internal/llm"
)

var checkModel bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available LLM models from API",
	Long: `Fetch and list available models from the configured API endpoint.

This command queries the /models endpoint of your LLM provider. Pick a
vision-capable model and set it with LLM_VISION_MODEL or --llm-vision-model.

With --check a one-word prompt is sent to the configured vision model to
confirm the key and model work.`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().BoolVar(&checkModel, "check", false, "Send a test prompt to the configured model")
}

func runModels(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "  LLM_BASE_URL:     %s\n", cfg.LLM.BaseURL)
	fmt.Fprintf(out, "  LLM_VISION_MODEL: %s\n", cfg.LLM.VisionModel)
	fmt.Fprintf(out, "  LLM_API_KEY:      %s\n", maskKey(cfg.LLM.APIKey))
	fmt.Fprintln(out)

	client := newClient()
	if client == nil {
		fmt.Fprintln(out, "LLM_API_KEY is required. Set it via environment variable or --api-key flag.")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLM.Timeout)
	defer cancel()

	if checkModel {
		reply, err := client.ChatText(ctx, "", "", llm.PromptConnectionCheck)
		if err != nil {
			return fmt.Errorf("model check failed: %w", err)
		}
		fmt.Fprintf(out, "Model %s replied: %s\n\n", client.DefaultModel(), strings.TrimSpace(reply))
	}

	fmt.Fprintf(out, "Fetching models from %s/models...\n\n", cfg.LLM.BaseURL)
	models, err := client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(out, "Could not fetch models: %v\n\n", err)
		fmt.Fprintln(out, "Tip: Your API provider may not support the /models endpoint.")
		fmt.Fprintln(out, "     You can still set LLM_VISION_MODEL directly.")
		return nil
	}
	if len(models) == 0 {
		fmt.Fprintln(out, "No models returned from API.")
		return nil
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID < models[j].ID
	})

	fmt.Fprintf(out, "Available Models (%d):\n", len(models))
	fmt.Fprintln(out, "=====================")
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL ID\tOWNER\tCREATED")
	fmt.Fprintln(w, "--------\t-----\t-------")
	for _, m := range models {
		created := ""
		if m.Created.Unix() > 0 {
			created = m.Created.Format(time.DateOnly)
		}
		owner := m.OwnedBy
		if owner == "" {
			owner = inferProvider(m.ID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, owner, created)
	}
	return w.Flush()
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "Not set"
	case len(key) > 8:
		return "Set (" + key[:8] + "...)"
	default:
		return "Set"
	}
}

// inferProvider guesses the provider from the model ID
func inferProvider(modelID string) string {
	id := strings.ToLower(modelID)

	switch {
	case strings.Contains(id, "llama") || strings.Contains(id, "meta"):
		return "meta"
	case strings.Contains(id, "qwen"):
		return "alibaba"
	case strings.Contains(id, "gemini") || strings.Contains(id, "google"):
		return "google"
	case strings.Contains(id, "gpt") || strings.Contains(id, "openai"):
		return "openai"
	case strings.Contains(id, "mistral") || strings.Contains(id, "pixtral"):
		return "mistral"
	case strings.Contains(id, "deepseek"):
		return "deepseek"
	}
	return "-"
}
