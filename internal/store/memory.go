package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/securemov/ana-chat/backend/internal/model/chat"
	"github.com/securemov/ana-chat/backend/internal/model/memory"
)

// InMemoryStore keeps messages and memory records in process. It is meant for
// development and tests; nothing survives a restart.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages []chat.Message
	memories map[string]memory.Record
	now      func() time.Time
}

// NewInMemoryStore returns an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		messages: make([]chat.Message, 0, 64),
		memories: make(map[string]memory.Record),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// InsertMessage appends a message to the log.
func (s *InMemoryStore) InsertMessage(_ context.Context, author, body string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := chat.Message{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
		Author:    author,
		Body:      body,
	}
	s.messages = append(s.messages, message)
	return message, nil
}

// ListMessages returns a copy of the newest limit messages, oldest first.
func (s *InMemoryStore) ListMessages(_ context.Context, limit int) ([]chat.Message, error) {
	limit = normalizeLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if len(s.messages) > limit {
		start = len(s.messages) - limit
	}

	copied := make([]chat.Message, len(s.messages)-start)
	copy(copied, s.messages[start:])
	return copied, nil
}

// GetMemory returns the memory record for roomID.
func (s *InMemoryStore) GetMemory(_ context.Context, roomID string) (memory.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.memories[roomID]
	return rec, ok, nil
}

// UpsertMemory overwrites the memory record for rec.RoomID.
func (s *InMemoryStore) UpsertMemory(_ context.Context, rec memory.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = s.now()
	}
	s.memories[rec.RoomID] = rec
	return nil
}

// Ping always succeeds.
func (s *InMemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *InMemoryStore) Close() {}
