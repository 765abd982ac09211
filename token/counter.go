// Package token estimates the token cost of text and chat messages,
// and knows the context-window sizes of common model families.
//
// Counts are advisory, not billing-exact: when the precise encoder
// cannot be loaded the counter degrades to a characters-based
// heuristic rather than failing the call.
package token

import (
	"log"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"aigw/storage"
)

// perMessageOverhead is the structural cost of one role-tagged turn in
// chat-formatted protocols (role tag plus separators).
const perMessageOverhead = 4

// replyPrimingOverhead is the fixed cost of priming the model's reply.
const replyPrimingOverhead = 3

// heuristicCharsPerToken is the fallback ratio. BPE tokenizers average
// roughly four characters per token on English text.
const heuristicCharsPerToken = 4

var fallbackOnce sync.Once

// Counter counts tokens for a model family. It holds an encoder
// reference for its lifetime; call Close when the session ends.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// NewCounter creates a Counter for the given model. Models are mapped
// to a tiktoken encoding (cl100k_base covers GPT-4-era and serves as a
// reasonable approximation for Claude and the rest of the gateway
// catalog). If no encoder can be loaded the counter falls back to the
// heuristic, logging the downgrade once per process.
func NewCounter(model string) *Counter {
	enc, err := tiktoken.GetEncoding(encodingForModel(model))
	if err != nil {
		fallbackOnce.Do(func() {
			log.Printf("token: precise encoder unavailable (%v), using ~%d chars/token heuristic", err, heuristicCharsPerToken)
		})
		return &Counter{}
	}
	return &Counter{enc: enc}
}

// encodingForModel picks a tiktoken encoding name for a model ID.
// Gateway IDs carry a vendor prefix ("openai/gpt-4o"), so match on
// substrings.
func encodingForModel(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "gpt-4o"), strings.Contains(m, "o1"), strings.Contains(m, "o3"):
		return "o200k_base"
	default:
		return "cl100k_base"
	}
}

// Count returns the token count of raw text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.enc == nil {
		return (len(text) + heuristicCharsPerToken - 1) / heuristicCharsPerToken
	}
	return len(c.enc.Encode(text, nil, nil))
}

// CountMessage returns the cost of one formatted message: its content
// plus the per-message framing overhead. A cached TokenCount is
// trusted as-is so history is never re-tokenized turn after turn.
func (c *Counter) CountMessage(msg storage.Message) int {
	if msg.TokenCount > 0 {
		return msg.TokenCount
	}
	return c.Count(msg.Content) + perMessageOverhead
}

// CountAll returns the cost of sending messages as one request,
// including the reply priming overhead.
func (c *Counter) CountAll(messages []storage.Message) int {
	total := replyPrimingOverhead
	for _, msg := range messages {
		total += c.CountMessage(msg)
	}
	return total
}

// Close releases the encoder reference. The Counter must not be used
// after Close.
func (c *Counter) Close() {
	c.enc = nil
}
