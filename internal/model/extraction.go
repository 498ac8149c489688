package model

import (
	"encoding/json"
	"time"
)

// Tier slot keys used by the extraction prompt and chunk results
const (
	SlotCheapest      = "cheapest"
	SlotMiddle        = "middle"
	SlotMostExpensive = "most_expensive"
)

// ExtractionFailedMessage is reported when no chunk produced usable pricing
const ExtractionFailedMessage = "could not extract pricing information"

// ChunkResult is the decoded completion for one chunk.
// A slot may be missing entirely, present as null, or present as a tier.
type ChunkResult struct {
	Cheapest      *PricingTier `json:"cheapest"`
	Middle        *PricingTier `json:"middle"`
	MostExpensive *PricingTier `json:"most_expensive"`

	HasCheapest      bool `json:"-"`
	HasMiddle        bool `json:"-"`
	HasMostExpensive bool `json:"-"`
}

// UnmarshalJSON decodes the three slots and records which keys were present
func (r *ChunkResult) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var out ChunkResult
	slots := []struct {
		key  string
		tier **PricingTier
		has  *bool
	}{
		{SlotCheapest, &out.Cheapest, &out.HasCheapest},
		{SlotMiddle, &out.Middle, &out.HasMiddle},
		{SlotMostExpensive, &out.MostExpensive, &out.HasMostExpensive},
	}
	for _, s := range slots {
		raw, ok := fields[s.key]
		if !ok {
			continue
		}
		*s.has = true
		if err := json.Unmarshal(raw, s.tier); err != nil {
			return err
		}
	}

	*r = out
	return nil
}

// Extraction is the merged three-tier pricing summary.
// Any slot may be nil when no chunk supplied it.
type Extraction struct {
	Cheapest      *PricingTier `json:"cheapest"`
	MostExpensive *PricingTier `json:"most_expensive"`
	Middle        *PricingTier `json:"middle"`
}

// ExtractionOutcome is either a merged extraction or an error message
type ExtractionOutcome struct {
	Extraction *Extraction
	Error      string
}

// SucceededExtraction wraps a merged result
func SucceededExtraction(e *Extraction) ExtractionOutcome {
	return ExtractionOutcome{Extraction: e}
}

// FailedExtraction is the {error: ...} sentinel
func FailedExtraction() ExtractionOutcome {
	return ExtractionOutcome{Error: ExtractionFailedMessage}
}

// OK reports whether the outcome holds an extraction
func (o ExtractionOutcome) OK() bool {
	return o.Error == "" && o.Extraction != nil
}

// MarshalJSON renders either the extraction object or {"error": ...}
func (o ExtractionOutcome) MarshalJSON() ([]byte, error) {
	if !o.OK() {
		msg := o.Error
		if msg == "" {
			msg = ExtractionFailedMessage
		}
		return json.Marshal(map[string]string{"error": msg})
	}
	return json.Marshal(o.Extraction)
}

// UnmarshalJSON reads either shape back
func (o *ExtractionOutcome) UnmarshalJSON(data []byte) error {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Error != nil {
		*o = ExtractionOutcome{Error: *probe.Error}
		return nil
	}

	var e Extraction
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	*o = SucceededExtraction(&e)
	return nil
}

// ExtractionReport is the rendered result of one extraction run
type ExtractionReport struct {
	RunID      string            `json:"run_id"`
	Site       Site              `json:"site"`
	Strategy   string            `json:"strategy"`
	ScrapedAt  time.Time         `json:"scraped_at"`
	Chunks     int               `json:"chunks"`
	Dropped    int               `json:"dropped_chunks"`
	Outcome    ExtractionOutcome `json:"outcome"`
	Usage      Usage             `json:"usage"`
	CostUSD    float64           `json:"estimated_cost_usd"`
	DurationMS int64             `json:"duration_ms"`
}
