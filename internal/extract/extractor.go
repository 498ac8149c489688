package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ppiankov/tierscope/internal/chunk"
	"github.com/ppiankov/tierscope/internal/llm"
	"github.com/ppiankov/tierscope/internal/model"
)

// SystemPrompt is the fixed instruction sent with every chunk
const SystemPrompt = "Get me the three pricing tiers from this website's content, and return as a JSON with three keys: {cheapest: {name: str, price: float}, middle: {name: str, price: float}, most_expensive: {name: str, price: float}}. If you can't find a price, use null for the price value."

// ErrNoPricing is returned when no usable chunk result names a cheapest and a most expensive tier
var ErrNoPricing = errors.New(model.ExtractionFailedMessage)

// TierSchema constrains a single tier object as produced by the model
const TierSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": ["string", "null"]},
    "features": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

var chunkSchema = llm.MustCompileSchema("chunk_result.json", fmt.Sprintf(`{
  "type": "object",
  "properties": {
    "cheapest": {"anyOf": [{"type": "null"}, %[1]s]},
    "middle": {"anyOf": [{"type": "null"}, %[1]s]},
    "most_expensive": {"anyOf": [{"type": "null"}, %[1]s]}
  }
}`, TierSchema))

// Run is the outcome of one extraction over a document
type Run struct {
	Extraction *model.Extraction
	Chunks     int
	Dropped    int
	Usage      model.Usage
}

// Extractor turns page content into a three-tier pricing summary
type Extractor struct {
	llm       llm.Completer
	chunkSize int
	log       *zap.Logger
}

// NewExtractor creates an extractor. chunkSize <= 0 uses chunk.DefaultMaxTokens.
func NewExtractor(completer llm.Completer, chunkSize int, log *zap.Logger) *Extractor {
	if chunkSize <= 0 {
		chunkSize = chunk.DefaultMaxTokens
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{llm: completer, chunkSize: chunkSize, log: log}
}

// WithLogger returns a copy of the extractor that logs to log
func (e *Extractor) WithLogger(log *zap.Logger) *Extractor {
	if log == nil {
		return e
	}
	cp := *e
	cp.log = log
	return &cp
}

// Extract returns the merged extraction or an error wrapping ErrNoPricing
func (e *Extractor) Extract(ctx context.Context, content string) (*model.Extraction, error) {
	run, err := e.ExtractRun(ctx, content)
	if err != nil {
		return nil, err
	}
	return run.Extraction, nil
}

// ExtractRun processes every chunk sequentially and merges the survivors.
// The returned Run is non-nil whenever chunks were attempted, including on ErrNoPricing.
func (e *Extractor) ExtractRun(ctx context.Context, content string) (*Run, error) {
	chunks := chunk.Chunk(content, e.chunkSize)
	stats := chunk.Measure(chunks)
	e.log.Info("content chunked",
		zap.Int("chunks", stats.Count),
		zap.Int("words", stats.Words),
		zap.Int("max_words", stats.MaxWords),
	)

	run := &Run{Chunks: len(chunks)}
	var results []model.ChunkResult

	for i, text := range chunks {
		if err := ctx.Err(); err != nil {
			return run, eris.Wrap(err, "extraction cancelled")
		}

		log := e.log.With(zap.Int("chunk", i+1), zap.Int("of", len(chunks)))
		log.Debug("processing chunk")

		resp, err := e.llm.Complete(ctx, []llm.Message{llm.System(SystemPrompt), llm.User(text)})
		if err != nil {
			if ctx.Err() != nil {
				return run, eris.Wrap(ctx.Err(), "extraction cancelled")
			}
			log.Warn("completion failed, dropping chunk", zap.Error(err))
			run.Dropped++
			continue
		}
		run.Usage = run.Usage.Add(resp.Usage)

		result, err := parseChunkResult(resp.Content)
		if err != nil {
			log.Warn("unusable chunk result, dropping chunk", zap.Error(err))
			run.Dropped++
			continue
		}
		results = append(results, result)
		log.Debug("chunk processed",
			zap.Bool("cheapest", result.HasCheapest),
			zap.Bool("middle", result.HasMiddle),
			zap.Bool("most_expensive", result.HasMostExpensive),
		)
	}

	extraction, err := Merge(results)
	if err != nil {
		e.log.Warn("extraction failed",
			zap.Int("usable_chunks", len(results)),
			zap.Int("dropped_chunks", run.Dropped),
		)
		return run, err
	}
	run.Extraction = extraction

	e.log.Info("extraction complete",
		zap.Int("usable_chunks", len(results)),
		zap.Int("dropped_chunks", run.Dropped),
		zap.Int("tokens", run.Usage.Tokens()),
	)
	return run, nil
}

// parseChunkResult validates a completion against the chunk schema and decodes it
func parseChunkResult(content string) (model.ChunkResult, error) {
	var result model.ChunkResult
	if _, err := llm.ValidateJSON(chunkSchema, []byte(content)); err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, eris.Wrap(err, "decode chunk result")
	}
	return result, nil
}
