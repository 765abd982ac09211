package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS conversations (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    model         TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL,
    total_tokens  INTEGER DEFAULT 0,
    message_count INTEGER DEFAULT 0,
    messages      TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
`

// SQLiteStore implements Store backed by a single SQLite database.
// Each conversation row carries its messages as one JSON column, so a
// save is still a whole-record replacement.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// WAL keeps listing cheap while a save is in flight.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func (s *SQLiteStore) Create(name, model string, system *Message) (*Conversation, error) {
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

func (s *SQLiteStore) Save(conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}

	msgJSON, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO conversations
			(id, name, model, created_at, updated_at, total_tokens, message_count, messages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		conv.ID,
		conv.Name,
		conv.Model,
		conv.CreatedAt.Format(time.RFC3339Nano),
		conv.UpdatedAt.Format(time.RFC3339Nano),
		conv.TotalTokens,
		len(conv.Messages),
		string(msgJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(id string) (*Conversation, error) {
	row := s.db.QueryRow(`
		SELECT id, name, model, created_at, updated_at, total_tokens, messages
		FROM conversations WHERE id = ?`, id)

	var conv Conversation
	var createdAt, updatedAt, msgJSON string
	err := row.Scan(&conv.ID, &conv.Name, &conv.Model, &createdAt, &updatedAt,
		&conv.TotalTokens, &msgJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	conv.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	conv.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	if err := json.Unmarshal([]byte(msgJSON), &conv.Messages); err != nil {
		return nil, &CorruptError{ID: id, Path: s.path, Err: err}
	}

	return &conv, nil
}

func (s *SQLiteStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec("DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete conversation: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// List reads summaries straight from the indexed columns; message
// bodies are never decoded.
func (s *SQLiteStore) List() ([]Summary, error) {
	rows, err := s.db.Query(`
		SELECT id, name, model, created_at, updated_at, total_tokens, message_count
		FROM conversations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		var createdAt, updatedAt string
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Model, &createdAt, &updatedAt,
			&sum.TotalTokens, &sum.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		sum.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func (s *SQLiteStore) AppendMessage(id string, msg Message) (*Conversation, error) {
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

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
