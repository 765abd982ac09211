package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStore persists each conversation as <data_dir>/conversations/<id>.json.
type FileStore struct {
	conversationsDir string
}

// NewFileStore creates a file-backed store rooted at dataDir. The
// conversations directory is created on first use (0700 - user-only
// access), never treated as an error when missing.
func NewFileStore(dataDir string) (*FileStore, error) {
	dir := filepath.Join(dataDir, "conversations")

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create conversations directory: %w", err)
	}

	return &FileStore{conversationsDir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.conversationsDir, id+".json")
}

// Create allocates a fresh conversation and persists it before returning.
func (s *FileStore) Create(name, model string, system *Message) (*Conversation, error) {
	now := time.Now()
	conv := &Conversation{
		ID:        uuid.New().String(),
		Name:      name,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if system != nil {
		msg := *system
		msg.Role = RoleSystem
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = now
		}
		conv.Messages = []Message{msg}
		conv.TotalTokens = msg.TokenCount
	}

	if err := s.Save(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Save writes the full record via a temp file and rename, so an
// interrupted write can never leave a record mixing old and new
// content. Conversation files are 0600 - they hold chat history.
func (s *FileStore) Save(conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	target := s.path(conv.ID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write conversation file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace conversation file: %w", err)
	}

	return nil
}

// Load reads a conversation from disk. A missing file is ErrNotFound;
// a file that fails to parse is a *CorruptError so callers can tell
// corruption from absence.
func (s *FileStore) Load(id string) (*Conversation, error) {
	path := s.path(id)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation file: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, &CorruptError{ID: id, Path: path, Err: err}
	}

	return &conv, nil
}

// Delete removes the record, reporting whether one existed.
func (s *FileStore) Delete(id string) (bool, error) {
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete conversation file: %w", err)
	}
	return true, nil
}

// List returns summaries for all conversations, newest first.
// Corrupt or unreadable records are skipped so one bad file cannot
// break listing.
func (s *FileStore) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.conversationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversations directory: %w", err)
	}

	var summaries []Summary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.conversationsDir, entry.Name()))
		if err != nil {
			continue
		}

		var conv Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			continue
		}

		summaries = append(summaries, conv.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	return summaries, nil
}

// AppendMessage appends msg to the stored record, recomputing
// TotalTokens and UpdatedAt, and durably saves.
func (s *FileStore) AppendMessage(id string, msg Message) (*Conversation, error) {
	conv, err := s.Load(id)
	if err != nil {
		return nil, err
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	conv.Messages = append(conv.Messages, msg)
	conv.TotalTokens = sumTokens(conv.Messages)
	conv.UpdatedAt = time.Now()

	if err := s.Save(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}
