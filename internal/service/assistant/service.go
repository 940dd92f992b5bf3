// Package assistant runs assistant turns: load the room's rolling summary,
// compose the prompt, call the model, then persist the extended summary.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/securemov/ana-chat/backend/internal/metrics"
	"github.com/securemov/ana-chat/backend/internal/model/memory"
	"github.com/securemov/ana-chat/backend/internal/service/ai"
	"github.com/securemov/ana-chat/backend/internal/store"
)

// Stage is a step of a memory turn.
type Stage int

const (
	StageStart Stage = iota
	StageMemoryLoaded
	StagePromptBuilt
	StageModelCalled
	StageMemorySaved
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageMemoryLoaded:
		return "memory_loaded"
	case StagePromptBuilt:
		return "prompt_built"
	case StageModelCalled:
		return "model_called"
	case StageMemorySaved:
		return "memory_saved"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Generator is the language model: one text in, one text out.
type Generator interface {
	Generate(ctx context.Context, input string) (string, error)
}

// Service orchestrates assistant turns. It holds no per-turn state, so one
// instance serves every room concurrently. Two turns for the same room are
// not serialized: both read the same summary and the later write wins.
type Service struct {
	model    Generator
	memory   store.MemoryStore
	composer *ai.Composer
	now      func() time.Time
	logger   zerolog.Logger
}

// NewService wires the orchestrator. model or memory may be nil when the
// matching collaborator is not configured; turns that need it then fail with
// ErrConfiguration.
func NewService(model Generator, memory store.MemoryStore, composer *ai.Composer, logger zerolog.Logger) *Service {
	return &Service{
		model:    model,
		memory:   memory,
		composer: composer,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With().Str("component", "assistant").Logger(),
	}
}

// Handle dispatches an invocation to the legacy or the memory path.
func (s *Service) Handle(ctx context.Context, inv Invocation) (string, error) {
	switch req := inv.(type) {
	case LegacyRequest:
		return s.Legacy(ctx, req)
	case TurnRequest:
		return s.Turn(ctx, req)
	default:
		return "", &FieldError{Field: "user_prompt"}
	}
}

// Legacy sends a bare prompt straight to the model and returns its output
// verbatim. It never reads or writes memory.
func (s *Service) Legacy(ctx context.Context, req LegacyRequest) (string, error) {
	if s.model == nil {
		s.record("legacy", ErrConfiguration)
		return "", &TurnError{Stage: StageStart, Kind: ErrConfiguration, Err: errors.New("language model not configured")}
	}
	if req.Prompt == "" {
		return "", &FieldError{Field: "prompt"}
	}

	text, err := s.generate(ctx, req.Prompt)
	if err != nil {
		s.record("legacy", ErrModelInvocation)
		return "", &TurnError{Stage: StagePromptBuilt, Kind: ErrModelInvocation, Err: err}
	}

	s.record("legacy", nil)
	return text, nil
}

// Turn runs one memory turn for a room and returns the trimmed reply.
func (s *Service) Turn(ctx context.Context, req TurnRequest) (string, error) {
	reply, stage, err := s.turn(ctx, req)

	event := s.logger.Info()
	if err != nil {
		event = s.logger.Warn().Err(err)
	}
	event.
		Str("room_id", req.RoomID).
		Str("stage", stage.String()).
		Int("reply_length", len(reply)).
		Msg("assistant turn finished")

	s.record("memory", err)
	return reply, err
}

func (s *Service) turn(ctx context.Context, req TurnRequest) (string, Stage, error) {
	stage := StageStart

	if s.model == nil {
		return "", stage, &TurnError{Stage: stage, Kind: ErrConfiguration, Err: errors.New("language model not configured")}
	}
	if req.RoomID == "" {
		return "", stage, &FieldError{Field: "chat_id"}
	}
	if req.UserPrompt == "" {
		return "", stage, &FieldError{Field: "user_prompt"}
	}
	if s.memory == nil {
		return "", stage, &TurnError{Stage: stage, Kind: ErrConfiguration, Err: errors.New("memory store not configured")}
	}

	rec, _, err := s.memory.GetMemory(ctx, req.RoomID)
	if err != nil {
		return "", stage, &TurnError{Stage: stage, Kind: ErrStoreRead, Err: err}
	}
	stage = s.enter(req.RoomID, StageMemoryLoaded)

	prompt := s.composer.Compose(ai.PromptInput{
		Summary:    rec.Summary,
		Documents:  req.Docs,
		Transcript: req.History,
		Request:    req.UserPrompt,
	})
	stage = s.enter(req.RoomID, StagePromptBuilt)

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return "", stage, &TurnError{Stage: stage, Kind: ErrModelInvocation, Err: err}
	}
	reply := strings.TrimSpace(text)
	if reply == "" {
		return "", stage, &TurnError{Stage: stage, Kind: ErrEmptyReply}
	}
	stage = s.enter(req.RoomID, StageModelCalled)

	summary := ai.AppendSummary(rec.Summary, ai.SummaryLine(ai.UserTag, req.UserPrompt))
	summary = ai.AppendSummary(summary, ai.SummaryLine(ai.AssistantTag, reply))

	err = s.memory.UpsertMemory(ctx, memory.Record{
		RoomID:    req.RoomID,
		Summary:   summary,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return "", stage, &TurnError{Stage: stage, Kind: ErrStoreWrite, Err: err}
	}
	s.enter(req.RoomID, StageMemorySaved)

	return reply, s.enter(req.RoomID, StageDone), nil
}

// enter records that a turn reached stage.
func (s *Service) enter(roomID string, stage Stage) Stage {
	s.logger.Debug().Str("room_id", roomID).Str("stage", stage.String()).Msg("assistant turn stage")
	return stage
}

func (s *Service) generate(ctx context.Context, input string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.ModelLatency.Observe(time.Since(start).Seconds())
	}()
	return s.model.Generate(ctx, input)
}

func (s *Service) record(mode string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingField):
		outcome = "invalid"
	case errors.Is(err, ErrConfiguration):
		outcome = "config"
	case errors.Is(err, ErrStoreRead):
		outcome = "store_read"
	case errors.Is(err, ErrStoreWrite):
		outcome = "store_write"
	case errors.Is(err, ErrEmptyReply):
		outcome = "empty_reply"
	default:
		outcome = "model_error"
	}
	metrics.AssistantTurns.WithLabelValues(mode, outcome).Inc()
}
