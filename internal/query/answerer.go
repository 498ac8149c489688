package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/tierscope/internal/llm"
	"github.com/ppiankov/tierscope/internal/model"
)

// DefaultQuestion is asked when the caller does not supply one
const DefaultQuestion = "What are the pricing tiers and their features?"

// ErrMalformedAnswer is returned when the completion is not a JSON object
var ErrMalformedAnswer = errors.New("malformed answer")

// Request is one question about one site's content
type Request struct {
	Site     string
	Content  string
	Question string
}

// Answerer answers free-form questions over a whole page
type Answerer struct {
	llm llm.Completer
	log *zap.Logger
}

// NewAnswerer creates an answerer
func NewAnswerer(completer llm.Completer, log *zap.Logger) *Answerer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Answerer{llm: completer, log: log}
}

// WithLogger returns a copy of the answerer that logs to log
func (a *Answerer) WithLogger(log *zap.Logger) *Answerer {
	if log == nil {
		return a
	}
	cp := *a
	cp.log = log
	return &cp
}

// BuildPrompt renders the single user turn. The content is not chunked.
func BuildPrompt(req Request) string {
	return fmt.Sprintf(`Based on the following content from %s, please answer this question: %s

If the question is about pricing or features, please structure your answer as a JSON object with keys for each pricing tier, including 'name', 'price', and 'features' for each tier.

Content: %s`, req.Site, req.Question, req.Content)
}

// Answer issues exactly one completion and parses the reply
func (a *Answerer) Answer(ctx context.Context, req Request) (*model.QueryAnswer, error) {
	if req.Question == "" {
		req.Question = DefaultQuestion
	}

	a.log.Info("answering question",
		zap.String("question", req.Question),
		zap.Int("content_bytes", len(req.Content)),
	)

	resp, err := a.llm.Complete(ctx, []llm.Message{llm.User(BuildPrompt(req))})
	if err != nil {
		return nil, eris.Wrap(err, "query completion")
	}

	answer, err := ParseAnswer(resp.Content)
	if err != nil {
		a.log.Warn("unparseable answer", zap.Int("response_bytes", len(resp.Content)), zap.Error(err))
		return nil, err
	}

	a.log.Info("answer parsed",
		zap.Strings("tiers", answer.Tiers.Keys()),
		zap.Bool("has_answer", len(answer.Answer) > 0),
	)
	return answer, nil
}

// ParseAnswer reads a completion into a QueryAnswer.
// Top-level objects become Tiers in document order; the "answer" key is kept
// as Answer; anything else is ignored. Tier fields of the wrong type are
// coerced rather than dropping the tier, see coerceTier.
func ParseAnswer(content string) (*model.QueryAnswer, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))

	tok, err := dec.Token()
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedAnswer, "read answer: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, eris.Wrap(ErrMalformedAnswer, "answer is not a JSON object")
	}

	out := &model.QueryAnswer{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, eris.Wrapf(ErrMalformedAnswer, "read key: %v", err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, eris.Wrapf(ErrMalformedAnswer, "read value for %q: %v", key, err)
		}

		if key == "answer" {
			out.Answer = raw
			continue
		}
		if tier, ok := coerceTier(raw); ok {
			out.Tiers.Set(key, tier)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, eris.Wrapf(ErrMalformedAnswer, "close object: %v", err)
	}
	if dec.More() {
		return nil, eris.Wrap(ErrMalformedAnswer, "trailing data after answer object")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(content)); err != nil {
		return nil, eris.Wrapf(ErrMalformedAnswer, "compact answer: %v", err)
	}
	out.Raw = compact.Bytes()
	return out, nil
}

// looseTier mirrors PricingTier with untyped name and features
type looseTier struct {
	Name     json.RawMessage `json:"name"`
	Price    model.Price     `json:"price"`
	Features json.RawMessage `json:"features"`
}

// coerceTier decodes any JSON object as a tier. A non-string name reads as "",
// a lone string feature becomes a one-item list and non-string features are dropped.
func coerceTier(raw json.RawMessage) (model.PricingTier, bool) {
	var tier model.PricingTier
	if len(raw) == 0 || raw[0] != '{' {
		return tier, false
	}
	var loose looseTier
	if err := json.Unmarshal(raw, &loose); err != nil {
		return tier, false
	}

	if len(loose.Name) > 0 && loose.Name[0] == '"' {
		if err := json.Unmarshal(loose.Name, &tier.Name); err != nil {
			return tier, false
		}
	}
	tier.Price = loose.Price
	tier.Features = coerceFeatures(loose.Features)
	return tier, true
}

func coerceFeatures(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '"':
		var one string
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil
		}
		return []string{one}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		var out []string
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 || item[0] != '"' {
				continue
			}
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
