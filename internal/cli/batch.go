package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tierscope/internal/model"
	"github.com/ppiankov/tierscope/internal/pipeline"
	"github.com/ppiankov/tierscope/internal/worker"
)

var (
	concurrency   int
	outputDir     string
	batchFile     string
	batchStrategy string
	batchTimeout  time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [site...]",
	Short: "Extract pricing tiers for many sites in parallel",
	Long: `Batch runs the extraction for several tracked sites concurrently and
writes a JSON and a Markdown report per site.

With no arguments and no --file, every tracked site is processed.

Example:
  tierscope batch
  tierscope batch "Mindsmith AI" Acme --concurrency 2
  tierscope batch --file sites.txt --output-dir ./reports`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./tierscope-reports", "output directory for reports")
	batchCmd.Flags().StringVar(&batchFile, "file", "", "file of site names, one per line")
	batchCmd.Flags().StringVar(&batchStrategy, "strategy", "", "scrape strategy (html, text, jina); default from config")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, batchTimeout)
	defer cancelTimeout()

	targets, err := batchSites(ctx, a, args)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no sites to process")
	}

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "⚙️  Processing %d sites with %d workers...\n", len(targets), workers)

	processor := worker.NewBatchProcessor(a.pipeline, workers, a.log)
	results := processor.ProcessSites(ctx, targets, batchStrategy)

	failures := 0
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Site.Name, result.Error)
			continue
		}

		slug := sanitizeFilename(result.Site.Name)
		if err := a.renderer.WriteJSON(result.Report, filepath.Join(outputDir, slug+".json")); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Site.Name, err)
			continue
		}
		if err := a.renderer.WriteMarkdown(pipeline.ExtractionMarkdown(result.Report), filepath.Join(outputDir, slug+".md")); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Site.Name, err)
			continue
		}
	}

	if err := a.renderer.PrintBatch(results); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\n  Total: %d  Failures: %d  Output: %s\n", len(results), failures, outputDir)
	return nil
}

// batchSites resolves the sites named on the command line, in --file, or all stored sites
func batchSites(ctx context.Context, a *app, args []string) ([]model.Site, error) {
	names := append([]string{}, args...)
	if batchFile != "" {
		fromFile, err := worker.ReadSiteNames(batchFile)
		if err != nil {
			return nil, err
		}
		names = append(names, fromFile...)
	}

	if len(names) == 0 {
		return a.store.List(ctx)
	}

	targets := make([]model.Site, 0, len(names))
	for _, name := range names {
		site, err := a.resolveSite(ctx, name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, site)
	}
	return targets, nil
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename turns a site name into a safe file name
func sanitizeFilename(s string) string {
	s = strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(s), "-"), "-.")
	if s == "" {
		s = "site"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return strings.ToLower(s)
}
