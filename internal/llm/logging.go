package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type loggingCompleter struct {
	next Completer
	log  *zap.Logger
}

// WithLogging wraps next so every call logs entry and exit
func WithLogging(next Completer, log *zap.Logger) Completer {
	if log == nil {
		return next
	}
	return &loggingCompleter{next: next, log: log}
}

func (c *loggingCompleter) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	size := 0
	for _, m := range messages {
		size += len(m.Content)
	}
	c.log.Debug("llm call start", zap.Int("messages", len(messages)), zap.Int("bytes", size))

	start := time.Now()
	resp, err := c.next.Complete(ctx, messages)
	elapsed := time.Since(start)

	if err != nil {
		c.log.Warn("llm call failed", zap.Duration("duration", elapsed), zap.Error(err))
		return nil, err
	}

	c.log.Debug("llm call done",
		zap.Duration("duration", elapsed),
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("response_bytes", len(resp.Content)),
	)
	return resp, nil
}
