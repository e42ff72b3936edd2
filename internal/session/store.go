// Package session tracks per-user conversation state: which multi-step
// flow is in progress and the fields collected so far.
package session

import (
	"context"
	"sync"

	"github.com/spec-kit/support-bot/internal/domain"
)

// Store is the conversation state tracker, keyed by user chat id.
// Get returns the zero Conversation when no state exists. Setting a
// conversation for a new flow replaces any prior one; a user is never in
// two flows at once.
type Store interface {
	Get(ctx context.Context, userID int64) (domain.Conversation, error)
	Set(ctx context.Context, userID int64, conv domain.Conversation) error
	Clear(ctx context.Context, userID int64) error
}

// MemoryStore keeps conversation state in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	state map[int64]domain.Conversation
}

// NewMemoryStore instantiates the in-memory tracker.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: make(map[int64]domain.Conversation)}
}

// Get returns the user's conversation, or the zero value when absent.
func (s *MemoryStore) Get(ctx context.Context, userID int64) (domain.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state[userID], nil
}

// Set replaces the user's conversation.
func (s *MemoryStore) Set(ctx context.Context, userID int64, conv domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[userID] = conv
	return nil
}

// Clear discards the user's conversation.
func (s *MemoryStore) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state, userID)
	return nil
}
