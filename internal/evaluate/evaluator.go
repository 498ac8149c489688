package evaluate

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/tierscope/internal/model"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// Evaluate grades generated tiers against expected tiers.
//
// Each expected tier present in generated is worth one point for its name, one
// for its price and one per distinct expected feature. Tiers missing from
// generated are reported but score nothing either way.
func Evaluate(generated, expected model.TierSet) model.EvaluationResult {
	result := model.EvaluationResult{
		MissingInfo:   []string{},
		IncorrectInfo: []string{},
		ExtraInfo:     []string{},
	}

	for _, exp := range expected {
		key := exp.Key
		gen, ok := generated.Get(key)
		if !ok {
			result.MissingInfo = append(result.MissingInfo, fmt.Sprintf("Missing tier: %s", key))
			continue
		}

		result.TotalPoints++
		if strings.ToLower(gen.Name) == strings.ToLower(exp.Tier.Name) {
			result.EarnedPoints++
		} else {
			result.IncorrectInfo = append(result.IncorrectInfo, fmt.Sprintf("Incorrect name for %s", key))
		}

		result.TotalPoints++
		if pricesMatch(exp.Tier.Price, gen.Price) {
			result.EarnedPoints++
		} else {
			result.IncorrectInfo = append(result.IncorrectInfo, fmt.Sprintf("Incorrect price for %s", key))
		}

		expFeatures := dedupe(exp.Tier.Features)
		genFeatures := dedupe(gen.Features)

		result.TotalPoints += len(expFeatures)
		for _, f := range expFeatures {
			if containsAny(genFeatures, f) {
				result.EarnedPoints++
			} else {
				result.MissingInfo = append(result.MissingInfo, fmt.Sprintf("Missing feature in %s: %s", key, f))
			}
		}

		for _, f := range genFeatures {
			if !containedByAny(expFeatures, f) {
				result.ExtraInfo = append(result.ExtraInfo, fmt.Sprintf("Extra feature in %s: %s", key, f))
			}
		}
	}

	if result.TotalPoints > 0 {
		result.Accuracy = float64(result.EarnedPoints) / float64(result.TotalPoints)
	}
	return result
}

// pricesMatch compares the first run of digits on each side
func pricesMatch(expected, generated model.Price) bool {
	e := digitRun.FindString(expected.DigitSource())
	g := digitRun.FindString(generated.DigitSource())
	return e != "" && g != "" && e == g
}

// containsAny reports whether some haystack contains needle, case-insensitively
func containsAny(haystacks []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

// containedByAny reports whether hay contains some needle, case-insensitively
func containedByAny(needles []string, hay string) bool {
	hay = strings.ToLower(hay)
	for _, n := range needles {
		if strings.Contains(hay, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// dedupe drops repeated features, keeping first occurrence order
func dedupe(features []string) []string {
	seen := make(map[string]bool, len(features))
	out := make([]string, 0, len(features))
	for _, f := range features {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Evaluator grades query answers and logs the outcome
type Evaluator struct {
	log *zap.Logger
}

// NewEvaluator creates an evaluator
func NewEvaluator(log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{log: log}
}

// EvaluateAnswer grades the tiers of answer and attaches the raw response
func (e *Evaluator) EvaluateAnswer(answer *model.QueryAnswer, expected model.TierSet) model.EvaluationResult {
	var generated model.TierSet
	if answer != nil {
		generated = answer.Tiers
	}

	result := Evaluate(generated, expected)
	if answer != nil {
		result.RawResponse = answer.Raw
	}

	e.log.Info("evaluation complete",
		zap.Float64("accuracy", result.Accuracy),
		zap.Int("earned_points", result.EarnedPoints),
		zap.Int("total_points", result.TotalPoints),
		zap.Int("missing", len(result.MissingInfo)),
		zap.Int("incorrect", len(result.IncorrectInfo)),
		zap.Int("extra", len(result.ExtraInfo)),
	)
	return result
}
