package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/tierscope/internal/model"
)

type stubCompleter struct {
	resp *Completion
	err  error
}

func (s stubCompleter) Complete(ctx context.Context, messages []Message) (*Completion, error) {
	return s.resp, s.err
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Provider: "OpenAI", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = NewProvider(Config{Provider: "claude", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	p, err = NewProvider(Config{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	_, err = NewProvider(Config{Provider: "bard"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LLM provider")

	_, err = NewProvider(Config{})
	require.Error(t, err)
}

func TestConfigFromModel(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Model = "gpt-4o"
	cfg.HTTP.HTTPSProxy = "http://proxy:3128"

	c := ConfigFromModel(cfg)
	assert.Equal(t, "openai", c.Provider)
	assert.Equal(t, "gpt-4o", c.Model)
	assert.Equal(t, 60, c.Timeout)
	assert.Equal(t, "http://proxy:3128", c.HTTPSProxy)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```json{\"a\":1}```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFence(tt.in), tt.in)
	}
}

func TestSplitSystem(t *testing.T) {
	system, rest := splitSystem([]Message{System("a"), User("q"), System("b")})
	assert.Equal(t, "a\n\nb", system)
	require.Len(t, rest, 1)
	assert.Equal(t, RoleUser, rest[0].Role)
}

func TestMeter_AccumulatesUsage(t *testing.T) {
	m := NewMeter(stubCompleter{resp: &Completion{Usage: model.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}})

	for i := 0; i < 3; i++ {
		_, err := m.Complete(context.Background(), nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, m.Calls())
	assert.Equal(t, model.Usage{PromptTokens: 30, CompletionTokens: 15, TotalTokens: 45}, m.Usage())

	failing := NewMeter(stubCompleter{err: errors.New("down")})
	_, err := failing.Complete(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, failing.Calls())
	assert.Equal(t, model.Usage{}, failing.Usage())
}

func TestCostCalculator(t *testing.T) {
	c := NewCostCalculator(0)
	assert.Equal(t, DefaultCostPerMillionTokens, c.PerMillionTokens)
	assert.InDelta(t, 0.005, c.Cost(model.Usage{TotalTokens: 1000}), 1e-12)
	assert.InDelta(t, 0.005, c.Cost(model.Usage{PromptTokens: 600, CompletionTokens: 400}), 1e-12)

	c = NewCostCalculator(10)
	assert.InDelta(t, 10.0, c.Cost(model.Usage{TotalTokens: 1_000_000}), 1e-9)
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	c := WithLogging(stubCompleter{resp: &Completion{Content: "{}", Model: "m"}}, log)
	_, err := c.Complete(context.Background(), []Message{User("hello")})
	require.NoError(t, err)

	require.Equal(t, 2, logs.Len())
	start := logs.All()[0]
	assert.Equal(t, "llm call start", start.Message)
	assert.Equal(t, int64(5), start.ContextMap()["bytes"])

	c = WithLogging(stubCompleter{err: errors.New("boom")}, log)
	_, err = c.Complete(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("llm call failed").Len())
}

func TestWithLogging_NilLogger(t *testing.T) {
	inner := stubCompleter{}
	assert.Equal(t, Completer(inner), WithLogging(inner, nil))
}

func TestValidateJSON(t *testing.T) {
	schema := MustCompileSchema("obj.json", `{"type": "object", "required": ["a"]}`)

	v, err := ValidateJSON(schema, []byte(`{"a": 1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, v)

	_, err = ValidateJSON(schema, []byte(`{"b": 1}`))
	require.Error(t, err)

	_, err = ValidateJSON(schema, []byte(`not json`))
	require.Error(t, err)

	_, err = CompileSchema("bad.json", `{"type": 12}`)
	require.Error(t, err)
}
