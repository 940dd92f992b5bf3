package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply string
	err   error
	wait  time.Duration
	input []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestNewServiceRequiresModel(t *testing.T) {
	_, err := NewService(context.Background(), nil, 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestGenerateSendsSingleUserMessage(t *testing.T) {
	fake := &fakeChatModel{reply: "risposta"}
	svc, err := NewService(context.Background(), fake, time.Second, zerolog.Nop())
	require.NoError(t, err)

	got, err := svc.Generate(context.Background(), "prompt completo")
	require.NoError(t, err)

	assert.Equal(t, "risposta", got)
	require.Len(t, fake.input, 1)
	assert.Equal(t, schema.User, fake.input[0].Role)
	assert.Equal(t, "prompt completo", fake.input[0].Content)
}

func TestGenerateReturnsRawOutput(t *testing.T) {
	fake := &fakeChatModel{reply: "  \n"}
	svc, err := NewService(context.Background(), fake, 0, zerolog.Nop())
	require.NoError(t, err)

	got, err := svc.Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "  \n", got)
}

func TestGenerateWrapsModelError(t *testing.T) {
	boom := errors.New("upstream down")
	svc, err := NewService(context.Background(), &fakeChatModel{err: boom}, 0, zerolog.Nop())
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestGenerateTimeout(t *testing.T) {
	svc, err := NewService(context.Background(), &fakeChatModel{reply: "tardi", wait: time.Second}, 20*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "x")
	assert.Error(t, err)
}
