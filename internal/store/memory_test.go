package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securemov/ana-chat/backend/internal/model/memory"
)

func TestInMemoryStoreInsertAssignsIDAndTime(t *testing.T) {
	s := NewInMemoryStore()

	msg, err := s.InsertMessage(context.Background(), "Mario", "ciao")
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.Equal(t, "Mario", msg.Author)
	assert.Equal(t, "ciao", msg.Body)
}

func TestInMemoryStoreListReturnsNewestOldestFirst(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.InsertMessage(ctx, "u", fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	got, err := s.ListMessages(ctx, 3)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "m2", got[0].Body)
	assert.Equal(t, "m4", got[2].Body)
}

func TestInMemoryStoreListCapsLimit(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	for i := 0; i < DefaultListLimit+10; i++ {
		_, err := s.InsertMessage(ctx, "u", "x")
		require.NoError(t, err)
	}

	for _, limit := range []int{0, -1, DefaultListLimit + 1} {
		got, err := s.ListMessages(ctx, limit)
		require.NoError(t, err)
		assert.Len(t, got, DefaultListLimit)
	}
}

func TestInMemoryStoreListReturnsCopy(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	_, err := s.InsertMessage(ctx, "u", "originale")
	require.NoError(t, err)

	got, err := s.ListMessages(ctx, 10)
	require.NoError(t, err)
	got[0].Body = "modificato"

	again, err := s.ListMessages(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "originale", again[0].Body)
}

func TestInMemoryStoreMemoryUpsert(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	_, found, err := s.GetMemory(ctx, "room1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.UpsertMemory(ctx, memory.Record{RoomID: "room1", Summary: "U: a"}))
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.UpsertMemory(ctx, memory.Record{RoomID: "room1", Summary: "U: a\nA: b", UpdatedAt: stamp}))

	rec, found, err := s.GetMemory(ctx, "room1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "U: a\nA: b", rec.Summary)
	assert.Equal(t, stamp, rec.UpdatedAt)

	_, found, err = s.GetMemory(ctx, "room2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInMemoryStoreUpsertStampsTime(t *testing.T) {
	s := NewInMemoryStore()
	stamp := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return stamp }

	require.NoError(t, s.UpsertMemory(context.Background(), memory.Record{RoomID: "r"}))

	rec, _, err := s.GetMemory(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, stamp, rec.UpdatedAt)
}
