package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var _ Store = (*LocalStore)(nil)

// LocalStore keeps conversations in process memory. It is always healthy and
// never expires entries; its contents are bounded by the process lifetime.
type LocalStore struct {
	mu    sync.RWMutex
	items map[string]*Conversation
}

func NewLocalStore() *LocalStore {
	return &LocalStore{
		items: make(map[string]*Conversation),
	}
}

func (s *LocalStore) Get(_ context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.items[id]
	if !ok {
		return nil, nil
	}

	return cloneConversation(conversation), nil
}

func (s *LocalStore) Save(_ context.Context, conversation *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[conversation.ID] = cloneConversation(conversation)

	return nil
}

func (s *LocalStore) AppendTurn(_ context.Context, id string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, ok := s.items[id]
	if !ok {
		conversation = NewConversation(id)
		s.items[id] = conversation
	}

	conversation.Turns = append(conversation.Turns, turn)
	conversation.LastUpdated = time.Now().UTC()

	return nil
}

func (s *LocalStore) UpdateAgentState(_ context.Context, id string, state AgentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversation, ok := s.items[id]
	if !ok {
		return fmt.Errorf("conversation %s not found", id)
	}

	conversation.AgentState = state
	conversation.LastUpdated = time.Now().UTC()

	return nil
}

func (s *LocalStore) HealthCheck(_ context.Context) error {
	return nil
}
