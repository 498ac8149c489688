package model

import (
	"encoding/json"
	"time"
)

// EvaluationResult is the graded comparison of a generated answer against an expected one
type EvaluationResult struct {
	Accuracy      float64         `json:"accuracy"`       // earned / total points, 0 when total is 0
	MissingInfo   []string        `json:"missing_info"`   // Missing tiers and unmatched expected features
	IncorrectInfo []string        `json:"incorrect_info"` // Name and price mismatches
	ExtraInfo     []string        `json:"extra_info"`     // Generated features with no expected counterpart (unscored)
	EarnedPoints  int             `json:"earned_points"`
	TotalPoints   int             `json:"total_points"`
	RawResponse   json.RawMessage `json:"raw_response,omitempty"`
}

// QueryAnswer is the parsed response to a free-form question.
// Tiers holds every top-level object that looks like a pricing tier; Answer holds
// the "answer" value for non-pricing questions.
type QueryAnswer struct {
	Tiers  TierSet         `json:"tiers,omitempty"`
	Answer json.RawMessage `json:"answer,omitempty"`
	Raw    json.RawMessage `json:"raw"`
}

// EvaluationReport is the rendered result of one evaluation run
type EvaluationReport struct {
	RunID      string           `json:"run_id"`
	Site       Site             `json:"site"`
	Question   string           `json:"question"`
	Strategy   string           `json:"strategy"`
	ScrapedAt  time.Time        `json:"scraped_at"`
	Expected   TierSet          `json:"expected"`
	Answer     *QueryAnswer     `json:"answer"`
	Result     EvaluationResult `json:"evaluation"`
	Usage      Usage            `json:"usage"`
	CostUSD    float64          `json:"estimated_cost_usd"`
	DurationMS int64            `json:"duration_ms"`
}

// AnswerReport is the rendered result of an ad hoc question
type AnswerReport struct {
	RunID      string       `json:"run_id"`
	Site       Site         `json:"site"`
	Question   string       `json:"question"`
	Strategy   string       `json:"strategy"`
	Answer     *QueryAnswer `json:"answer"`
	Usage      Usage        `json:"usage"`
	CostUSD    float64      `json:"estimated_cost_usd"`
	DurationMS int64        `json:"duration_ms"`
}
