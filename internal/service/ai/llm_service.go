package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

// Service sends one composed text input to a chat model and returns the
// generated text. It keeps no state between calls.
type Service struct {
	chatModel model.BaseChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewService compiles the single-input chain around chatModel. A zero
// timeout leaves cancellation to the caller's context.
func NewService(ctx context.Context, chatModel model.BaseChatModel, timeout time.Duration, logger zerolog.Logger) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{input}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		chain:     runnable,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Generate runs the model on input. The returned text is the raw model
// output; callers decide what counts as empty.
func (s *Service) Generate(ctx context.Context, input string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	response, err := s.chain.Invoke(ctx, map[string]any{"input": input})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil {
		return "", nil
	}

	s.logger.Debug().
		Int("input_length", len(input)).
		Int("output_length", len(response.Content)).
		Dur("latency", time.Since(start)).
		Msg("model call completed")
	return response.Content, nil
}
