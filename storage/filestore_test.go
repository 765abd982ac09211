package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestFileStoreCreateAndLoad(t *testing.T) {
	store := newTestFileStore(t)

	system := &Message{Content: "You are helpful.", TokenCount: 8}
	conv, err := store.Create("First chat", "gpt-4o-mini", system)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("Create returned empty ID")
	}

	loaded, err := store.Load(conv.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Name != "First chat" {
		t.Errorf("Name = %q, want %q", loaded.Name, "First chat")
	}
	if loaded.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want %q", loaded.Model, "gpt-4o-mini")
	}
	if len(loaded.Messages) != 1 {
		t.Fatalf("Messages = %d, want 1", len(loaded.Messages))
	}
	if loaded.Messages[0].Role != RoleSystem {
		t.Errorf("system message role = %q, want %q", loaded.Messages[0].Role, RoleSystem)
	}
	if loaded.TotalTokens != 8 {
		t.Errorf("TotalTokens = %d, want 8", loaded.TotalTokens)
	}
	if !loaded.CreatedAt.Equal(conv.CreatedAt) {
		t.Errorf("CreatedAt changed across round-trip: %v vs %v", loaded.CreatedAt, conv.CreatedAt)
	}
}

func TestFileStoreCreateWithoutSystem(t *testing.T) {
	store := newTestFileStore(t)

	conv, err := store.Create("", "llama3.1", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(conv.Messages) != 0 {
		t.Errorf("Messages = %d, want 0", len(conv.Messages))
	}
	if conv.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d, want 0", conv.TotalTokens)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := newTestFileStore(t)

	_, err := store.Load("does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load missing: got %v, want ErrNotFound", err)
	}
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	store := newTestFileStore(t)

	conv, err := store.Create("Corrupt me", "gpt-4", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	path := store.path(conv.ID)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("corrupting file: %v", err)
	}

	_, err = store.Load(conv.ID)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("Load corrupt: got %v, want *CorruptError", err)
	}
	if corrupt.ID != conv.ID {
		t.Errorf("CorruptError.ID = %q, want %q", corrupt.ID, conv.ID)
	}
	if corrupt.Path != path {
		t.Errorf("CorruptError.Path = %q, want %q", corrupt.Path, path)
	}

	// The record must be left in place for inspection.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("corrupt file was removed: %v", err)
	}
}

func TestFileStoreDelete(t *testing.T) {
	store := newTestFileStore(t)

	conv, err := store.Create("Short-lived", "gpt-4", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	existed, err := store.Delete(conv.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Error("Delete existing: existed = false, want true")
	}

	if _, err := store.Load(conv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after delete: got %v, want ErrNotFound", err)
	}

	existed, err = store.Delete(conv.ID)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if existed {
		t.Error("Delete missing: existed = true, want false")
	}
}

func TestFileStoreAppendMessage(t *testing.T) {
	store := newTestFileStore(t)

	system := &Message{Content: "sys", TokenCount: 5}
	conv, err := store.Create("Running sum", "gpt-4o", system)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := store.AppendMessage(conv.ID, Message{
		Role: RoleUser, Content: "hello", TokenCount: 12,
	})
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if updated.TotalTokens != 17 {
		t.Errorf("TotalTokens = %d, want 17", updated.TotalTokens)
	}

	updated, err = store.AppendMessage(conv.ID, Message{
		Role: RoleAssistant, Content: "hi there", TokenCount: 20,
	})
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if updated.TotalTokens != 37 {
		t.Errorf("TotalTokens = %d, want 37", updated.TotalTokens)
	}
	if len(updated.Messages) != 3 {
		t.Fatalf("Messages = %d, want 3", len(updated.Messages))
	}
	if updated.Messages[2].Role != RoleAssistant {
		t.Errorf("final message role = %q, want assistant", updated.Messages[2].Role)
	}

	// The sum invariant must hold on the durable record too.
	loaded, err := store.Load(conv.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.TotalTokens != sumTokens(loaded.Messages) {
		t.Errorf("stored TotalTokens %d != sum of message counts %d",
			loaded.TotalTokens, sumTokens(loaded.Messages))
	}
}

func TestFileStoreAppendToMissing(t *testing.T) {
	store := newTestFileStore(t)

	_, err := store.AppendMessage("ghost", Message{Role: RoleUser, Content: "hi"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AppendMessage to missing: got %v, want ErrNotFound", err)
	}
}

func TestFileStoreList(t *testing.T) {
	store := newTestFileStore(t)

	ids := make([]string, 3)
	for i, name := range []string{"oldest", "middle", "newest"} {
		conv, err := store.Create(name, "gpt-4", nil)
		if err != nil {
			t.Fatalf("Create %q: %v", name, err)
		}
		conv.UpdatedAt = time.Now().Add(time.Duration(i) * time.Hour)
		if err := store.Save(conv); err != nil {
			t.Fatalf("Save %q: %v", name, err)
		}
		ids[i] = conv.ID
	}

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("List returned %d summaries, want 3", len(summaries))
	}

	wantOrder := []string{"newest", "middle", "oldest"}
	for i, want := range wantOrder {
		if summaries[i].Name != want {
			t.Errorf("position %d: got %q, want %q", i, summaries[i].Name, want)
		}
	}

	// Corrupting one record must not break listing the rest.
	if err := os.WriteFile(store.path(ids[1]), []byte("garbage"), 0600); err != nil {
		t.Fatalf("corrupting file: %v", err)
	}
	summaries, err = store.List()
	if err != nil {
		t.Fatalf("List with corrupt record: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("List returned %d summaries, want 2", len(summaries))
	}
	for _, sum := range summaries {
		if sum.Name == "middle" {
			t.Error("corrupt record appeared in listing")
		}
	}
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	store := newTestFileStore(t)

	conv, err := store.Create("tidy", "gpt-4", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Save(conv); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(store.conversationsDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestFileStoreFilePermissions(t *testing.T) {
	store := newTestFileStore(t)

	conv, err := store.Create("private", "gpt-4", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	info, err := os.Stat(filepath.Join(store.conversationsDir, conv.ID+".json"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}
}
