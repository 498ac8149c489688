package llm

import (
	"context"
	"strings"

	"github.com/ppiankov/tierscope/internal/model"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat completion request
type Message struct {
	Role    string
	Content string
}

// System returns a system turn
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User returns a user turn
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Completion is the text produced by one completion call
type Completion struct {
	Content string
	Model   string
	Usage   model.Usage
}

// Completer issues a single chat completion.
// Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (*Completion, error)
}

// Provider is a named, health-checkable Completer
type Provider interface {
	Completer

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature; zero leaves the provider default
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   60,
		MaxTokens: 2000,
	}
}

// splitSystem separates system turns from the conversation.
// Multiple system turns are joined with blank lines.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	var rest []Message
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

// stripCodeFence removes a surrounding markdown code fence such as ```json ... ```
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
