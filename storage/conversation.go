// Package storage persists conversations durably, one record per
// conversation, under the user's data directory.
//
// A conversation is only ever mutated by appending messages; trimming
// for the model's context window happens in the budget package and
// never touches stored history. Concurrent processes writing to the
// same conversation ID are unsupported: there is no file locking, and
// the last writer wins.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single chat turn.
//
// TokenCount is computed once when the message is recorded and cached
// here so history never needs re-tokenizing on later turns.
type Message struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	TokenCount int       `json:"token_count"`
}

// Conversation is one durable chat record.
//
// Messages are in insertion order, which is chronological order, and
// are never reordered. If a system message exists there is exactly one
// and it sits at index 0. TotalTokens equals the sum of every
// message's TokenCount after each committed mutation.
type Conversation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	TotalTokens int       `json:"total_tokens"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary is a lightweight projection of a Conversation for listing,
// omitting message bodies.
type Summary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
	TotalTokens  int       `json:"total_tokens"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store abstracts conversation persistence (JSON files, SQLite).
type Store interface {
	// Create allocates a fresh conversation, with system (if non-nil)
	// pre-populated at position 0, and persists it before returning.
	Create(name, model string, system *Message) (*Conversation, error)

	// Save writes the full record as an atomic whole-record replacement.
	Save(conv *Conversation) error

	// Load returns ErrNotFound if no record exists for id, or a
	// *CorruptError if a record exists but fails to parse.
	Load(id string) (*Conversation, error)

	// Delete removes the record and reports whether one existed.
	Delete(id string) (bool, error)

	// List returns summaries ordered by UpdatedAt descending.
	// Corrupt records are skipped, not fatal.
	List() ([]Summary, error)

	// AppendMessage loads the record, appends msg, recomputes
	// TotalTokens and UpdatedAt, and durably saves. This is the single
	// point where the token-sum invariant is enforced.
	AppendMessage(id string, msg Message) (*Conversation, error)

	Close() error
}

// Summary returns the listing projection of c.
func (c *Conversation) Summary() Summary {
	return Summary{
		ID:           c.ID,
		Name:         c.Name,
		Model:        c.Model,
		MessageCount: len(c.Messages),
		TotalTokens:  c.TotalTokens,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// SystemPrompt returns the system message content, or "" if the
// conversation has none.
func (c *Conversation) SystemPrompt() string {
	if len(c.Messages) > 0 && c.Messages[0].Role == RoleSystem {
		return c.Messages[0].Content
	}
	return ""
}

// Append adds msg to the in-memory record and keeps TotalTokens and
// UpdatedAt consistent. Persistence is the caller's concern.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.TotalTokens = sumTokens(c.Messages)
	c.UpdatedAt = msg.CreatedAt
}

func sumTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += m.TokenCount
	}
	return total
}

// GenerateName derives a conversation name from the first user message.
func GenerateName(firstMessage string) string {
	if firstMessage == "" {
		return fmt.Sprintf("Conversation %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	name := firstMessage
	if len(name) > 30 {
		name = name[:30] + "..."
	}

	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Sprintf("Conversation %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	return name
}
