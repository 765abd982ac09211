// Package session orchestrates conversation lifecycle: starting a
// session, recording turns with their token cost, trimming history for
// an outbound model call, and exporting transcripts.
package session

import (
	"fmt"
	"time"

	"aigw/budget"
	"aigw/storage"
	"aigw/token"
)

// defaultReplyReserve is the slice of the context window held back for
// the model's reply when no explicit budget is given.
const defaultReplyReserve = 4096

// Manager wires the tokenizer, the budgeter and the store together.
// It is the only component that depends on all three.
type Manager struct {
	store        storage.Store
	replyReserve int
}

// NewManager creates a Manager over store. replyReserve is the token
// allowance reserved for the model's reply; pass 0 for the default.
func NewManager(store storage.Store, replyReserve int) *Manager {
	if replyReserve <= 0 {
		replyReserve = defaultReplyReserve
	}
	return &Manager{store: store, replyReserve: replyReserve}
}

// Store exposes the underlying conversation store.
func (m *Manager) Store() storage.Store {
	return m.store
}

// StartSession begins a session for a new conversation. The system
// prompt is an explicit argument; there is no process-wide default.
// With autoSave the conversation is created in the store immediately;
// otherwise it lives in memory only until the caller saves it.
//
// The returned session holds a token encoder; call Close when done.
func (m *Manager) StartSession(name, model, systemPrompt string, autoSave bool) (*Session, error) {
	counter := token.NewCounter(model)

	var system *storage.Message
	if systemPrompt != "" {
		msg := storage.Message{
			Role:      storage.RoleSystem,
			Content:   systemPrompt,
			CreatedAt: time.Now(),
		}
		msg.TokenCount = counter.CountMessage(msg)
		system = &msg
	}

	var conv *storage.Conversation
	if autoSave {
		created, err := m.store.Create(name, model, system)
		if err != nil {
			counter.Close()
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		conv = created
	} else {
		now := time.Now()
		conv = &storage.Conversation{
			Name:      name,
			Model:     model,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if system != nil {
			conv.Append(*system)
		}
	}

	return &Session{
		manager:  m,
		counter:  counter,
		conv:     conv,
		autoSave: autoSave,
	}, nil
}

// ResumeSession reopens a stored conversation for further turns.
func (m *Manager) ResumeSession(id string, autoSave bool) (*Session, error) {
	conv, err := m.store.Load(id)
	if err != nil {
		return nil, err
	}
	return &Session{
		manager:  m,
		counter:  token.NewCounter(conv.Model),
		conv:     conv,
		autoSave: autoSave,
	}, nil
}

// PrepareOutboundContext selects the subsequence of messages to send
// for one model call. The effective budget is explicitBudget when
// positive, otherwise the model's context window minus the reply
// reserve.
func (m *Manager) PrepareOutboundContext(counter budget.Counter, messages []storage.Message, model string, explicitBudget int) budget.Selection {
	max := explicitBudget
	if max <= 0 {
		max = token.WindowFor(model) - m.replyReserve
	}
	return budget.Select(counter, messages, max)
}
