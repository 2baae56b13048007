package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the single-instance Store. Each conversation carries its own
// mutex so same-conversation merges serialize in arrival order while other
// conversations proceed untouched; the outer lock only guards the map.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
}

type conversation struct {
	mu         sync.Mutex
	slots      Slots
	lastActive time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*conversation),
	}
}

func (s *MemoryStore) MergeEntities(_ context.Context, conversationID string, entities Slots) (Slots, error) {
	c := s.getOrCreate(conversationID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = Merge(c.slots, entities)
	c.lastActive = time.Now()
	return c.slots.Clone(), nil
}

func (s *MemoryStore) GetEntities(_ context.Context, conversationID string) (Slots, error) {
	s.mu.RLock()
	c := s.conversations[conversationID]
	s.mu.RUnlock()

	if c == nil {
		return Slots{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots.Clone(), nil
}

func (s *MemoryStore) ClearEntities(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationID)
	return nil
}

// EvictIdle removes conversations idle for longer than maxIdle and returns
// how many were dropped. Session expiry is service policy, so the janitor in
// the service binary calls this; the store itself never expires anything.
func (s *MemoryStore) EvictIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, c := range s.conversations {
		c.mu.Lock()
		idle := c.lastActive.Before(cutoff)
		c.mu.Unlock()
		if idle {
			delete(s.conversations, id)
			evicted++
		}
	}
	return evicted
}

// Len reports how many conversations are currently held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

func (s *MemoryStore) getOrCreate(conversationID string) *conversation {
	s.mu.RLock()
	c := s.conversations[conversationID]
	s.mu.RUnlock()
	if c != nil {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c = s.conversations[conversationID]; c == nil {
		c = &conversation{slots: Slots{}}
		s.conversations[conversationID] = c
	}
	return c
}
