package llm

import (
	"context"
	"sync"

	"github.com/ppiankov/tierscope/internal/model"
)

// DefaultCostPerMillionTokens is the blended rate used when none is configured
const DefaultCostPerMillionTokens = 5.0

// CostCalculator estimates spend from token usage at a flat blended rate
type CostCalculator struct {
	PerMillionTokens float64
}

// NewCostCalculator returns a calculator; a non-positive rate uses the default
func NewCostCalculator(perMillion float64) CostCalculator {
	if perMillion <= 0 {
		perMillion = DefaultCostPerMillionTokens
	}
	return CostCalculator{PerMillionTokens: perMillion}
}

// Cost returns the estimated USD cost of usage
func (c CostCalculator) Cost(u model.Usage) float64 {
	return (float64(u.Tokens()) / 1e6) * c.PerMillionTokens
}

// Meter wraps a Completer and accumulates token usage across calls
type Meter struct {
	next Completer

	mu    sync.Mutex
	usage model.Usage
	calls int
}

// NewMeter wraps next
func NewMeter(next Completer) *Meter {
	return &Meter{next: next}
}

// Complete delegates to the wrapped completer and records usage on success
func (m *Meter) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	resp, err := m.next.Complete(ctx, messages)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err == nil && resp != nil {
		m.usage = m.usage.Add(resp.Usage)
	}
	return resp, err
}

// Usage returns the accumulated usage
func (m *Meter) Usage() model.Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}

// Calls returns the number of completion attempts
func (m *Meter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
