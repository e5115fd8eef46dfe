package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_yttranslate/internal/engine"
	"github.com/anatolykoptev/go_yttranslate/internal/toolutil"
)

var translateCmd = &cobra.Command{
	Use:   "translate <url>...",
	Short: "Translate one or more YouTube videos and print the results",
	Long: `Translate YouTube videos from the command line using the same
configuration as the server (GEMINI_API_KEY, cache backend, ...).

Examples:
  go_yttranslate translate https://youtu.be/dQw4w9WgXcQ
  go_yttranslate translate --lang en --preview 0 URL1 URL2
  go_yttranslate translate --json URL`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringP("lang", "l", "", "target language (en, ko, ja, zh, es, fr)")
	translateCmd.Flags().Int("preview", 500, "max characters of translation to print (0 = full text)")
	translateCmd.Flags().Bool("json", false, "output as JSON")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("lang")
	preview, _ := cmd.Flags().GetInt("preview")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig()
	setupLogger(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !cfg.LLMConfigured() {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if len(args) > cfg.BatchMaxURLs {
		return fmt.Errorf("at most %d urls per run, got %d", cfg.BatchMaxURLs, len(args))
	}

	a := initEngine(cmd.Context(), cfg)
	defer a.Close()

	lang = toolutil.NormLang(lang, a.tr.DefaultLanguage())
	if !engine.IsSupportedLanguage(lang) {
		return fmt.Errorf("unsupported language %q", lang)
	}

	out := a.tr.TranslateBatch(cmd.Context(), toolutil.TrimURLs(args), lang)
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printBatch(cmd.OutOrStdout(), out, preview)
	if out.Failed > 0 {
		return fmt.Errorf("%d of %d translations failed", out.Failed, out.Total)
	}
	return nil
}

func printBatch(w io.Writer, out engine.BatchTranslationOutput, preview int) {
	for i, res := range out.Results {
		header := color.New(color.FgWhite, color.Bold)
		header.Fprintf(w, "\n[%d/%d] %s\n", i+1, out.Total, res.SourceURL)
		if res.Status == engine.StatusCompleted {
			color.New(color.FgGreen).Fprintln(w, "✓ completed")
		} else {
			color.New(color.FgRed).Fprintln(w, "✗ failed")
		}
		fmt.Fprint(w, toolutil.FormatResult(res, preview))
	}
	color.New(color.FgCyan).Fprintf(w, "\n%d total, %d completed, %d failed\n", out.Total, out.Completed, out.Failed)
}
