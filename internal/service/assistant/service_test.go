package assistant

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securemov/ana-chat/backend/internal/model/memory"
	"github.com/securemov/ana-chat/backend/internal/model/persona"
	"github.com/securemov/ana-chat/backend/internal/service/ai"
	"github.com/securemov/ana-chat/backend/internal/store"
)

type fakeGenerator struct {
	reply  string
	err    error
	inputs []string
}

func (f *fakeGenerator) Generate(_ context.Context, input string) (string, error) {
	f.inputs = append(f.inputs, input)
	return f.reply, f.err
}

type fakeMemory struct {
	records map[string]memory.Record
	getErr  error
	putErr  error
	gets    int
	puts    []memory.Record
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{records: make(map[string]memory.Record)}
}

func (f *fakeMemory) GetMemory(_ context.Context, roomID string) (memory.Record, bool, error) {
	f.gets++
	if f.getErr != nil {
		return memory.Record{}, false, f.getErr
	}
	rec, ok := f.records[roomID]
	return rec, ok, nil
}

func (f *fakeMemory) UpsertMemory(_ context.Context, rec memory.Record) error {
	f.puts = append(f.puts, rec)
	if f.putErr != nil {
		return f.putErr
	}
	f.records[rec.RoomID] = rec
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestService(gen Generator, mem *fakeMemory) *Service {
	var ms store.MemoryStore
	if mem != nil {
		ms = mem
	}
	svc := NewService(gen, ms, ai.NewComposer(persona.Ana()), zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestTurnFirstTurnCreatesMemory(t *testing.T) {
	gen := &fakeGenerator{reply: "  L'indicatore misura il rischio.  "}
	mem := newFakeMemory()
	svc := newTestService(gen, mem)

	reply, err := svc.Turn(context.Background(), TurnRequest{
		RoomID:     "room1",
		UserPrompt: "explain the risk indicator",
	})
	require.NoError(t, err)

	assert.Equal(t, "L'indicatore misura il rischio.", reply)
	require.Len(t, gen.inputs, 1)
	assert.Contains(t, gen.inputs[0], ai.NoSummaryPlaceholder)
	assert.Contains(t, gen.inputs[0], "explain the risk indicator")

	require.Len(t, mem.puts, 1)
	saved := mem.puts[0]
	assert.Equal(t, "room1", saved.RoomID)
	assert.Equal(t, fixedNow, saved.UpdatedAt)
	assert.Equal(t, []string{
		"U: explain the risk indicator",
		"A: L'indicatore misura il rischio.",
	}, strings.Split(saved.Summary, "\n"))
}

func TestTurnExtendsExistingSummary(t *testing.T) {
	gen := &fakeGenerator{reply: "seconda risposta"}
	mem := newFakeMemory()
	mem.records["room1"] = memory.Record{RoomID: "room1", Summary: "U: prima\nA: risposta"}
	svc := newTestService(gen, mem)

	_, err := svc.Turn(context.Background(), TurnRequest{
		RoomID:     "room1",
		UserPrompt: "seconda",
		History:    "mario: seconda",
		Docs:       []string{"Report Ricerca Social SecureMov"},
	})
	require.NoError(t, err)

	assert.Contains(t, gen.inputs[0], "U: prima\nA: risposta")
	assert.Contains(t, gen.inputs[0], "mario: seconda")
	assert.Contains(t, gen.inputs[0], "- Report Ricerca Social SecureMov")
	assert.Equal(t, "U: prima\nA: risposta\nU: seconda\nA: seconda risposta", mem.records["room1"].Summary)
}

func TestTurnSummaryStaysBounded(t *testing.T) {
	gen := &fakeGenerator{reply: strings.Repeat("r", 400)}
	mem := newFakeMemory()
	svc := newTestService(gen, mem)

	for i := 0; i < 15; i++ {
		_, err := svc.Turn(context.Background(), TurnRequest{RoomID: "r", UserPrompt: "domanda"})
		require.NoError(t, err)
	}

	lines := strings.Split(mem.records["r"].Summary, "\n")
	assert.Len(t, lines, ai.SummaryMaxLines)
	assert.Equal(t, "A: "+strings.Repeat("r", ai.SummaryMaxLineLength-3), lines[len(lines)-1])
}

func TestTurnEmptyReplySkipsWrite(t *testing.T) {
	gen := &fakeGenerator{reply: " \n\t"}
	mem := newFakeMemory()
	svc := newTestService(gen, mem)

	_, err := svc.Turn(context.Background(), TurnRequest{RoomID: "room1", UserPrompt: "ciao"})

	require.ErrorIs(t, err, ErrEmptyReply)
	assert.Empty(t, mem.puts)
	var turnErr *TurnError
	require.True(t, errors.As(err, &turnErr))
	assert.Equal(t, StagePromptBuilt, turnErr.Stage)
}

func TestTurnReadFailureSkipsModel(t *testing.T) {
	gen := &fakeGenerator{reply: "mai"}
	mem := newFakeMemory()
	mem.getErr = errors.New("connection refused")
	svc := newTestService(gen, mem)

	_, err := svc.Turn(context.Background(), TurnRequest{RoomID: "room1", UserPrompt: "ciao"})

	require.ErrorIs(t, err, ErrStoreRead)
	assert.Empty(t, gen.inputs)
	assert.Empty(t, mem.puts)

	var turnErr *TurnError
	require.True(t, errors.As(err, &turnErr))
	assert.Equal(t, "connection refused", turnErr.Detail())
}

func TestTurnModelFailureSkipsWrite(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	mem := newFakeMemory()
	svc := newTestService(gen, mem)

	_, err := svc.Turn(context.Background(), TurnRequest{RoomID: "room1", UserPrompt: "ciao"})

	require.ErrorIs(t, err, ErrModelInvocation)
	assert.Empty(t, mem.puts)
}

func TestTurnWriteFailureReportsError(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	mem := newFakeMemory()
	mem.putErr = errors.New("disk full")
	svc := newTestService(gen, mem)

	reply, err := svc.Turn(context.Background(), TurnRequest{RoomID: "room1", UserPrompt: "ciao"})

	require.ErrorIs(t, err, ErrStoreWrite)
	assert.Empty(t, reply)
	assert.Len(t, gen.inputs, 1)
	assert.Len(t, mem.puts, 1)
}

func TestTurnMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		req   TurnRequest
		field string
	}{
		{name: "missing chat id", req: TurnRequest{UserPrompt: "ciao"}, field: "chat_id"},
		{name: "missing prompt", req: TurnRequest{RoomID: "room1"}, field: "user_prompt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: "x"}
			mem := newFakeMemory()
			svc := newTestService(gen, mem)

			_, err := svc.Turn(context.Background(), tt.req)

			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tt.field, fieldErr.Field)
			assert.ErrorIs(t, err, ErrMissingField)
			assert.Zero(t, mem.gets)
			assert.Empty(t, gen.inputs)
		})
	}
}

func TestTurnWithoutModel(t *testing.T) {
	mem := newFakeMemory()
	svc := newTestService(nil, mem)

	_, err := svc.Turn(context.Background(), TurnRequest{RoomID: "room1", UserPrompt: "ciao"})

	require.ErrorIs(t, err, ErrConfiguration)
	assert.Zero(t, mem.gets)
}

func TestTurnWithoutMemoryStore(t *testing.T) {
	gen := &fakeGenerator{reply: "x"}
	svc := newTestService(gen, nil)

	_, err := svc.Turn(context.Background(), TurnRequest{RoomID: "room1", UserPrompt: "ciao"})

	require.ErrorIs(t, err, ErrConfiguration)
	assert.Empty(t, gen.inputs)
}

func TestLegacyPassesPromptThrough(t *testing.T) {
	gen := &fakeGenerator{reply: "  testo grezzo  "}
	mem := newFakeMemory()
	svc := newTestService(gen, mem)

	text, err := svc.Handle(context.Background(), LegacyRequest{Prompt: "ciao Ana"})
	require.NoError(t, err)

	assert.Equal(t, "  testo grezzo  ", text)
	assert.Equal(t, []string{"ciao Ana"}, gen.inputs)
	assert.Zero(t, mem.gets)
	assert.Empty(t, mem.puts)
}

func TestHandleDispatchesTurn(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	mem := newFakeMemory()
	svc := newTestService(gen, mem)

	inv := Request{ChatID: "room1", UserPrompt: "ciao"}.Invocation()
	_, err := svc.Handle(context.Background(), inv)
	require.NoError(t, err)

	assert.Len(t, mem.puts, 1)
}

func TestTurnLogsEveryStage(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	svc := NewService(&fakeGenerator{reply: "ok"}, newFakeMemory(), ai.NewComposer(persona.Ana()), logger)

	_, err := svc.Turn(context.Background(), TurnRequest{RoomID: "room1", UserPrompt: "ciao"})
	require.NoError(t, err)

	out := buf.String()
	last := -1
	for _, stage := range []Stage{StageMemoryLoaded, StagePromptBuilt, StageModelCalled, StageMemorySaved, StageDone} {
		idx := strings.Index(out, `"stage":"`+stage.String()+`"`)
		require.GreaterOrEqual(t, idx, 0, "stage %s not logged", stage)
		assert.Greater(t, idx, last, "stage %s out of order", stage)
		last = idx
	}
}

func TestTurnWriteFailureStopsBeforeMemorySaved(t *testing.T) {
	var buf bytes.Buffer
	mem := newFakeMemory()
	mem.putErr = errors.New("disk full")
	svc := NewService(&fakeGenerator{reply: "ok"}, mem, ai.NewComposer(persona.Ana()), zerolog.New(&buf).Level(zerolog.DebugLevel))

	_, err := svc.Turn(context.Background(), TurnRequest{RoomID: "room1", UserPrompt: "ciao"})

	var turnErr *TurnError
	require.True(t, errors.As(err, &turnErr))
	assert.Equal(t, StageModelCalled, turnErr.Stage)
	assert.NotContains(t, buf.String(), StageMemorySaved.String())
}
