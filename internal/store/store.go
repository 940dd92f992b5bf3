// Package store is the persistence layer for the chat log and the per-room
// assistant memory.
package store

import (
	"context"

	"github.com/securemov/ana-chat/backend/internal/model/chat"
	"github.com/securemov/ana-chat/backend/internal/model/memory"
)

// DefaultListLimit caps how many messages a list call returns.
const DefaultListLimit = 200

// MessageStore is the append-only chat log.
type MessageStore interface {
	// InsertMessage stores a new message and returns it with id and
	// creation time assigned.
	InsertMessage(ctx context.Context, author, body string) (chat.Message, error)
	// ListMessages returns the most recent limit messages, oldest first.
	ListMessages(ctx context.Context, limit int) ([]chat.Message, error)
}

// MemoryStore holds one memory record per room.
type MemoryStore interface {
	// GetMemory loads the record for roomID. A missing record is reported
	// with found == false and a nil error.
	GetMemory(ctx context.Context, roomID string) (rec memory.Record, found bool, err error)
	// UpsertMemory creates or overwrites the record keyed by rec.RoomID.
	UpsertMemory(ctx context.Context, rec memory.Record) error
}

// DataStore is implemented by every backend.
type DataStore interface {
	MessageStore
	MemoryStore

	Ping(ctx context.Context) error
	Close()
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}
