package storage

import (
	"sort"
	"time"

	"github.com/sahilm/fuzzy"
)

// MessageMatch is one search hit across stored conversations.
type MessageMatch struct {
	ConversationID   string
	ConversationName string
	MessageIndex     int
	Role             string
	Content          string
	Preview          string
	CreatedAt        time.Time
	Score            int
}

// SearchIndex searches message content across every stored conversation.
type SearchIndex struct {
	store Store
}

func NewSearchIndex(store Store) *SearchIndex {
	return &SearchIndex{store: store}
}

type messageEntry struct {
	conv  *Conversation
	index int
}

type messageSource []messageEntry

func (s messageSource) String(i int) string {
	e := s[i]
	return e.conv.Messages[e.index].Content
}

func (s messageSource) Len() int {
	return len(s)
}

// Search returns fuzzy-ranked matches, best first. System messages are
// excluded; conversations that fail to load are skipped.
func (si *SearchIndex) Search(query string) ([]MessageMatch, error) {
	if query == "" {
		return []MessageMatch{}, nil
	}

	summaries, err := si.store.List()
	if err != nil {
		return nil, err
	}

	var source messageSource
	for _, sum := range summaries {
		conv, err := si.store.Load(sum.ID)
		if err != nil {
			continue
		}
		for i, msg := range conv.Messages {
			if msg.Role == RoleSystem {
				continue
			}
			source = append(source, messageEntry{conv: conv, index: i})
		}
	}

	results := fuzzy.FindFrom(query, source)

	matches := make([]MessageMatch, 0, len(results))
	for _, r := range results {
		entry := source[r.Index]
		msg := entry.conv.Messages[entry.index]

		preview := msg.Content
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}

		matches = append(matches, MessageMatch{
			ConversationID:   entry.conv.ID,
			ConversationName: entry.conv.Name,
			MessageIndex:     entry.index,
			Role:             msg.Role,
			Content:          msg.Content,
			Preview:          preview,
			CreatedAt:        msg.CreatedAt,
			Score:            r.Score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches, nil
}
