package storage

import (
	"strings"
	"testing"
)

func TestSearch(t *testing.T) {
	store := newTestFileStore(t)

	conv1, err := store.Create("Go questions", "gpt-4o",
		&Message{Content: "You are a Go expert.", TokenCount: 6})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.AppendMessage(conv1.ID, Message{
		Role: RoleUser, Content: "How do goroutines work?", TokenCount: 7,
	}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	conv2, err := store.Create("Dinner plans", "gpt-4o", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.AppendMessage(conv2.ID, Message{
		Role: RoleUser, Content: "Suggest a pasta recipe", TokenCount: 6,
	}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	index := NewSearchIndex(store)

	t.Run("finds matching message", func(t *testing.T) {
		matches, err := index.Search("goroutines")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(matches) == 0 {
			t.Fatal("no matches for content known to exist")
		}
		if matches[0].ConversationID != conv1.ID {
			t.Errorf("top match conversation = %q, want %q", matches[0].ConversationID, conv1.ID)
		}
		if matches[0].Role != RoleUser {
			t.Errorf("top match role = %q, want user", matches[0].Role)
		}
	})

	t.Run("system messages excluded", func(t *testing.T) {
		matches, err := index.Search("Go expert")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		for _, m := range matches {
			if m.Role == RoleSystem {
				t.Errorf("system message surfaced in results: %+v", m)
			}
		}
	})

	t.Run("empty query matches nothing", func(t *testing.T) {
		matches, err := index.Search("")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("empty query returned %d matches, want 0", len(matches))
		}
	})
}

func TestSearchPreviewTruncation(t *testing.T) {
	store := newTestFileStore(t)

	conv, err := store.Create("Long message", "gpt-4o", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	long := "needle " + strings.Repeat("filler text ", 30)
	if _, err := store.AppendMessage(conv.ID, Message{
		Role: RoleUser, Content: long, TokenCount: 90,
	}); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	matches, err := NewSearchIndex(store).Search("needle")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no matches")
	}
	if len(matches[0].Preview) != 103 {
		t.Errorf("preview length = %d, want 103 (100 chars plus ellipsis)", len(matches[0].Preview))
	}
	if !strings.HasSuffix(matches[0].Preview, "...") {
		t.Errorf("preview %q missing ellipsis", matches[0].Preview)
	}
	if matches[0].Content != long {
		t.Error("full content not preserved alongside preview")
	}
}
