package session

import (
	"fmt"
	"time"

	"aigw/budget"
	"aigw/storage"
	"aigw/token"
)

// Session is the handle for one live conversation. It owns a token
// encoder for the conversation's model; Close releases it.
type Session struct {
	manager  *Manager
	counter  *token.Counter
	conv     *storage.Conversation
	autoSave bool
}

// Conversation returns the current in-memory record.
func (s *Session) Conversation() *storage.Conversation {
	return s.conv
}

// ID returns the conversation ID ("" until an in-memory session is
// first saved).
func (s *Session) ID() string {
	return s.conv.ID
}

// Counter returns the session's token counter.
func (s *Session) Counter() *token.Counter {
	return s.counter
}

// SetName renames the conversation, persisting the change when the
// session auto-saves.
func (s *Session) SetName(name string) error {
	s.conv.Name = name
	if s.autoSave {
		if err := s.manager.store.Save(s.conv); err != nil {
			return fmt.Errorf("failed to rename conversation: %w", err)
		}
	}
	return nil
}

// RecordTurn computes the turn's token cost and appends it to the
// conversation. With autoSave the append goes through the store, which
// durably commits it; otherwise the turn is held in memory only.
func (s *Session) RecordTurn(role, content string) (storage.Message, error) {
	msg := storage.Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	msg.TokenCount = s.counter.CountMessage(msg)

	if s.autoSave {
		updated, err := s.manager.store.AppendMessage(s.conv.ID, msg)
		if err != nil {
			return storage.Message{}, fmt.Errorf("failed to record turn: %w", err)
		}
		s.conv = updated
		return msg, nil
	}

	s.conv.Append(msg)
	return msg, nil
}

// Outbound selects the history subsequence to transmit for the next
// model call. explicitBudget overrides the model-derived budget when
// positive.
func (s *Session) Outbound(explicitBudget int) budget.Selection {
	return s.manager.PrepareOutboundContext(s.counter, s.conv.Messages, s.conv.Model, explicitBudget)
}

// Persist writes the current in-memory conversation to the store. Used
// when a session started without autoSave is kept after all.
func (s *Session) Persist() error {
	return s.manager.store.Save(s.conv)
}

// Close releases the session's token encoder. The session must not
// record further turns after Close.
func (s *Session) Close() {
	s.counter.Close()
}
