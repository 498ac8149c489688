package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tierscope/internal/pipeline"
)

var (
	extractStrategy string
	extractJSON     string
	extractMD       string
	printJSON       bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <site|url>",
	Short: "Extract the cheapest, middle and most expensive pricing tiers",
	Long: `Extract scrapes a site, splits the page into chunks, asks the LLM for the
pricing tiers in each chunk and merges the answers into a cheapest, middle
and most expensive tier.

Example:
  tierscope extract "Mindsmith AI"
  tierscope extract https://acme.example/pricing --strategy jina
  tierscope extract "Mindsmith AI" --json out/mindsmith.json --md out/mindsmith.md`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractStrategy, "strategy", "", "scrape strategy (html, text, jina); default from config")
	extractCmd.Flags().StringVar(&extractJSON, "json", "", "write the JSON report to this path")
	extractCmd.Flags().StringVar(&extractMD, "md", "", "write the Markdown report to this path")
	extractCmd.Flags().BoolVar(&printJSON, "print-json", false, "print the report as JSON instead of a table")
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()

	site, err := a.resolveSite(ctx, args[0])
	if err != nil {
		return err
	}

	report, err := a.pipeline.ExtractSite(ctx, site, extractStrategy)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if extractJSON != "" {
		if err := a.renderer.WriteJSON(report, extractJSON); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", extractJSON)
		}
	}
	if extractMD != "" {
		if err := a.renderer.WriteMarkdown(pipeline.ExtractionMarkdown(report), extractMD); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", extractMD)
		}
	}

	if printJSON {
		return a.renderer.PrintJSON(report.Outcome)
	}
	return a.renderer.PrintExtraction(report)
}
