package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <site|url> [question]",
	Short: "Ask a free-form question about a site's page",
	Long: `Ask sends the whole scraped page and a question to the LLM in one call.
Pricing questions come back as tiers; other questions as a plain answer.

Example:
  tierscope ask "Mindsmith AI"
  tierscope ask "Mindsmith AI" "Is there a free trial?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&printJSON, "print-json", false, "print the report as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	question := strings.Join(args[1:], " ")
	report, err := a.pipeline.AskSite(ctx, site, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if printJSON {
		return a.renderer.PrintJSON(report)
	}
	return a.renderer.PrintAnswer(report)
}
