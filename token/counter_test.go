package token

import (
	"testing"

	"aigw/storage"
)

// heuristicCounter returns a Counter with no encoder, forcing the
// chars-based fallback so tests do not depend on encoder data.
func heuristicCounter() *Counter {
	return &Counter{}
}

func TestCountHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"empty string", "", 0},
		{"exact multiple", "abcdefgh", 2},
		{"rounds up", "abcdefghi", 3},
		{"single char", "a", 1},
	}

	c := heuristicCounter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Count(tt.text); got != tt.expected {
				t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.expected)
			}
		})
	}
}

func TestCountMessage(t *testing.T) {
	c := heuristicCounter()

	t.Run("adds per-message overhead", func(t *testing.T) {
		m := storage.Message{Role: storage.RoleUser, Content: "abcdefgh"}
		want := 2 + perMessageOverhead
		if got := c.CountMessage(m); got != want {
			t.Errorf("CountMessage = %d, want %d", got, want)
		}
	})

	t.Run("trusts cached count", func(t *testing.T) {
		m := storage.Message{Role: storage.RoleUser, Content: "abcdefgh", TokenCount: 99}
		if got := c.CountMessage(m); got != 99 {
			t.Errorf("CountMessage = %d, want cached 99", got)
		}
	})

	t.Run("empty message costs only overhead", func(t *testing.T) {
		m := storage.Message{Role: storage.RoleUser}
		if got := c.CountMessage(m); got != perMessageOverhead {
			t.Errorf("CountMessage = %d, want %d", got, perMessageOverhead)
		}
	})
}

func TestCountAll(t *testing.T) {
	c := heuristicCounter()

	t.Run("empty request still primes the reply", func(t *testing.T) {
		if got := c.CountAll(nil); got != replyPrimingOverhead {
			t.Errorf("CountAll(nil) = %d, want %d", got, replyPrimingOverhead)
		}
	})

	t.Run("sums messages plus priming", func(t *testing.T) {
		messages := []storage.Message{
			{Role: storage.RoleSystem, TokenCount: 10},
			{Role: storage.RoleUser, TokenCount: 20},
		}
		want := replyPrimingOverhead + 30
		if got := c.CountAll(messages); got != want {
			t.Errorf("CountAll = %d, want %d", got, want)
		}
	})
}

func TestEncodingForModel(t *testing.T) {
	tests := []struct {
		model    string
		expected string
	}{
		{"gpt-4o", "o200k_base"},
		{"openai/gpt-4o-mini", "o200k_base"},
		{"o1-preview", "o200k_base"},
		{"o3-mini", "o200k_base"},
		{"gpt-4", "cl100k_base"},
		{"anthropic/claude-sonnet-4-5", "cl100k_base"},
		{"deepseek/deepseek-v3.2-exp", "cl100k_base"},
		{"", "cl100k_base"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := encodingForModel(tt.model); got != tt.expected {
				t.Errorf("encodingForModel(%q) = %q, want %q", tt.model, got, tt.expected)
			}
		})
	}
}

func TestCounterClose(t *testing.T) {
	c := NewCounter("gpt-4o")
	c.Close()

	// A closed counter degrades to the heuristic instead of panicking.
	if got := c.Count("abcdefgh"); got != 2 {
		t.Errorf("Count after Close = %d, want heuristic 2", got)
	}
}
