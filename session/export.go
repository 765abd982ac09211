package session

import (
	"fmt"
	"strings"

	"aigw/storage"
)

const exportTimeFormat = "2006-01-02 15:04:05"

// ExportMarkdown renders a stored conversation as a linear transcript:
// one heading per turn (role, timestamp, token count) followed by its
// content, in chronological order. The document is for reading and
// archival; it does not round-trip back into the store.
func (m *Manager) ExportMarkdown(id string) (string, error) {
	conv, err := m.store.Load(id)
	if err != nil {
		return "", err
	}
	return RenderMarkdown(conv), nil
}

// RenderMarkdown renders an in-memory conversation as a transcript.
func RenderMarkdown(conv *storage.Conversation) string {
	var b strings.Builder

	name := conv.Name
	if name == "" {
		name = "Conversation"
	}
	fmt.Fprintf(&b, "# %s\n\n", name)
	fmt.Fprintf(&b, "- Model: %s\n", conv.Model)
	fmt.Fprintf(&b, "- Created: %s\n", conv.CreatedAt.Format(exportTimeFormat))
	fmt.Fprintf(&b, "- Messages: %d\n", len(conv.Messages))
	fmt.Fprintf(&b, "- Total tokens: %d\n", conv.TotalTokens)

	for _, msg := range conv.Messages {
		fmt.Fprintf(&b, "\n## %s — %s (%d tokens)\n\n%s\n",
			roleLabel(msg.Role),
			msg.CreatedAt.Format(exportTimeFormat),
			msg.TokenCount,
			msg.Content,
		)
	}

	return b.String()
}

func roleLabel(role string) string {
	switch role {
	case storage.RoleSystem:
		return "System"
	case storage.RoleUser:
		return "User"
	case storage.RoleAssistant:
		return "Assistant"
	default:
		return role
	}
}
