// Package chunk splits scraped text into pieces sized for a single completion call.
package chunk

import "strings"

// DefaultMaxTokens is the default chunk budget
const DefaultMaxTokens = 4000

// Stats summarizes a chunking pass
type Stats struct {
	Count    int `json:"count"`
	Words    int `json:"words"`
	MaxWords int `json:"max_words"`
}

// Chunk splits content on whitespace into chunks of at most maxTokens words.
//
// Tokens are approximated by words. Words are never split, so a chunk always
// holds at least one word. Empty content yields no chunks.
func Chunk(content string, maxTokens int) []string {
	if maxTokens < 1 {
		maxTokens = 1
	}

	words := strings.Fields(content)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for i := range words {
		if i-start+1 > maxTokens {
			chunks = append(chunks, strings.Join(words[start:i], " "))
			start = i
		}
	}
	chunks = append(chunks, strings.Join(words[start:], " "))

	return chunks
}

// Measure reports chunk statistics for logging
func Measure(chunks []string) Stats {
	s := Stats{Count: len(chunks)}
	for _, c := range chunks {
		n := len(strings.Fields(c))
		s.Words += n
		if n > s.MaxWords {
			s.MaxWords = n
		}
	}
	return s
}
