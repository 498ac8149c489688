package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tierscope/internal/model"
	"github.com/ppiankov/tierscope/internal/pipeline"
)

var (
	expectedFile string
	evalQuestion string
	evalJSON     string
	evalMD       string
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <site|url>",
	Short: "Grade the LLM's answer for a site against expected tiers",
	Long: `Evaluate asks the pricing question for a site and scores the answer
against a hand-written expected result: one point per tier name, one per
price and one per expected feature.

The expected file maps tier names to tiers, in YAML or JSON:

  Basic:
    name: Basic
    price: 10
    features: [1 user, 5 courses]

Example:
  tierscope evaluate "Mindsmith AI" --expected testdata/mindsmith.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&expectedFile, "expected", "", "expected tiers file (.yaml, .yml or .json)")
	evaluateCmd.Flags().StringVar(&evalQuestion, "question", "", "question to ask (default: the pricing tiers question)")
	evaluateCmd.Flags().StringVar(&evalJSON, "json", "", "write the JSON report to this path")
	evaluateCmd.Flags().StringVar(&evalMD, "md", "", "write the Markdown report to this path")
	_ = evaluateCmd.MarkFlagRequired("expected")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	expected, err := readExpected(expectedFile)
	if err != nil {
		return err
	}

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

	report, err := a.pipeline.EvaluateSite(ctx, site, evalQuestion, expected)
	if err != nil {
		return fmt.Errorf("evaluate failed: %w", err)
	}

	if evalJSON != "" {
		if err := a.renderer.WriteJSON(report, evalJSON); err != nil {
			return err
		}
	}
	if evalMD != "" {
		if err := a.renderer.WriteMarkdown(pipeline.EvaluationMarkdown(report), evalMD); err != nil {
			return err
		}
	}
	return a.renderer.PrintEvaluation(report)
}

// readExpected loads an expected tier set, choosing the decoder by extension
func readExpected(path string) (model.TierSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read expected file")
	}

	var set model.TierSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &set)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &set)
	default:
		return nil, eris.Errorf("unsupported expected file type %q (use .yaml, .yml or .json)", filepath.Ext(path))
	}
	if err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}
	if len(set) == 0 {
		return nil, eris.Errorf("%s defines no tiers", path)
	}
	return set, nil
}
