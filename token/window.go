package token

import "strings"

// windowEntry maps a model-name substring to a context-window size.
type windowEntry struct {
	pattern string
	tokens  int
}

// windowTable is consulted in order, most specific pattern first, so a
// variant naming both a family and a sub-size resolves to the sub-size
// figure (e.g. "gpt-4-32k" before "gpt-4"). Patterns are substrings
// because gateway model IDs carry vendor prefixes ("openai/gpt-4").
//
// Values are from provider documentation; the table is best-effort and
// unknown models fall back to defaultContextWindow.
var windowTable = []windowEntry{
	// OpenAI, sub-sizes before families.
	{"gpt-4o-mini", 128_000},
	{"gpt-4o", 128_000},
	{"gpt-4-turbo", 128_000},
	{"gpt-4-32k", 32_768},
	{"gpt-4", 8_192},
	{"gpt-3.5-turbo-16k", 16_385},
	{"gpt-3.5-turbo", 16_385},
	{"o1-mini", 128_000},
	{"o1", 200_000},
	{"o3-mini", 200_000},
	{"o3", 200_000},

	// Anthropic Claude.
	{"claude-3-opus", 200_000},
	{"claude-3-sonnet", 200_000},
	{"claude-3-haiku", 200_000},
	{"claude-3-5", 200_000},
	{"claude-2", 100_000},
	{"claude", 200_000},

	// Google Gemini, larger 1.5-pro window first.
	{"gemini-1.5-pro", 2_097_152},
	{"gemini", 1_048_576},

	// DeepSeek (covers deepseek-v3.2-exp on the gateway).
	{"deepseek", 64_000},

	// Meta Llama.
	{"llama-3.1", 128_000},
	{"llama-3", 8_192},

	// Mistral.
	{"mixtral-8x7b", 32_768},
	{"mistral-large", 128_000},
	{"mistral", 32_000},
}

// defaultContextWindow is used for models not in the table. 64k is a
// middle ground: small enough not to wildly overestimate older models,
// large enough for most modern ones. Callers can always pass an
// explicit budget instead.
const defaultContextWindow = 64_000

// WindowFor returns the context-window size in tokens for a model ID.
// Matching is case-insensitive substring, first entry wins.
func WindowFor(model string) int {
	m := strings.ToLower(model)
	for _, entry := range windowTable {
		if strings.Contains(m, entry.pattern) {
			return entry.tokens
		}
	}
	return defaultContextWindow
}
