package chat

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/securemov/ana-chat/backend/internal/feed"
	"github.com/securemov/ana-chat/backend/internal/metrics"
	"github.com/securemov/ana-chat/backend/internal/model/chat"
	"github.com/securemov/ana-chat/backend/internal/service/assistant"
	"github.com/securemov/ana-chat/backend/internal/store"
)

const (
	// CommandPrefix marks a message as an assistant invocation.
	CommandPrefix = "/ai "
	// HistoryWindow is how many recent messages are sent as transcript.
	HistoryWindow = 30
	// MinNameLength is the shortest accepted display name, in characters.
	MinNameLength = 2
)

var (
	ErrNameRequired = errors.New("name must be at least 2 characters")
	ErrCodeRequired = errors.New("join code is required")
	ErrCodeMismatch = errors.New("wrong join code")
	ErrEmptyMessage = errors.New("message text is required")
	ErrEmptyPrompt  = errors.New("assistant prompt is required")
)

// SendError wraps a failure to store a plain message.
type SendError struct{ Err error }

func (e *SendError) Error() string { return "send error: " + e.Err.Error() }
func (e *SendError) Unwrap() error { return e.Err }

// AssistantError wraps a failure anywhere in an assistant invocation after
// the user's message was accepted.
type AssistantError struct{ Err error }

func (e *AssistantError) Error() string { return "assistant error: " + e.Err.Error() }
func (e *AssistantError) Unwrap() error { return e.Err }

// ReplyError reports that the assistant answered but its reply could not be
// stored in the chat log.
type ReplyError struct{ Err error }

func (e *ReplyError) Error() string { return "reply not saved: " + e.Err.Error() }
func (e *ReplyError) Unwrap() error { return e.Err }

// Assistant runs a memory turn.
type Assistant interface {
	Turn(ctx context.Context, req assistant.TurnRequest) (string, error)
}

// Config holds the room settings.
type Config struct {
	JoinCode    string
	DefaultRoom string
	Documents   []string
}

// Service is the server side of the chat client: join check, plain sends and
// the "/ai" flow that inserts the user's message, asks the assistant and
// inserts the reply.
type Service struct {
	messages  store.MessageStore
	publisher feed.Publisher
	assistant Assistant
	cfg       Config
	logger    zerolog.Logger
}

// NewService creates the chat service. publisher and assistant may be nil.
func NewService(messages store.MessageStore, publisher feed.Publisher, asst Assistant, cfg Config, logger zerolog.Logger) *Service {
	if cfg.DefaultRoom == "" {
		cfg.DefaultRoom = "default"
	}
	return &Service{
		messages:  messages,
		publisher: publisher,
		assistant: asst,
		cfg:       cfg,
		logger:    logger.With().Str("component", "chat").Logger(),
	}
}

// Join validates a display name and access code.
func (s *Service) Join(name, code string) (chat.Session, error) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)

	if utf8.RuneCountInString(name) < MinNameLength {
		return chat.Session{}, ErrNameRequired
	}
	if code == "" {
		return chat.Session{}, ErrCodeRequired
	}
	if !s.Authorized(code) {
		return chat.Session{}, ErrCodeMismatch
	}
	return chat.Session{Name: name, RoomID: s.RoomID(code)}, nil
}

// Authorized reports whether code grants access. Without a configured join
// code every caller is accepted.
func (s *Service) Authorized(code string) bool {
	return s.cfg.JoinCode == "" || strings.TrimSpace(code) == s.cfg.JoinCode
}

// RoomID maps an access code to the assistant memory key.
func (s *Service) RoomID(code string) string {
	if code = strings.TrimSpace(code); code != "" {
		return code
	}
	return s.cfg.DefaultRoom
}

// List returns the latest messages, oldest first.
func (s *Service) List(ctx context.Context) ([]chat.Message, error) {
	return s.messages.ListMessages(ctx, store.DefaultListLimit)
}

// Send stores a plain message and announces it on the feed.
func (s *Service) Send(ctx context.Context, author, text string) (chat.Message, error) {
	message, err := s.messages.InsertMessage(ctx, author, text)
	if err != nil {
		return chat.Message{}, err
	}

	authorType := "user"
	if message.FromAssistant() {
		authorType = "assistant"
	}
	metrics.MessagesPosted.WithLabelValues(authorType).Inc()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, message); err != nil {
			s.logger.Warn().Err(err).Str("message_id", message.ID).Msg("failed to publish message")
		}
	}
	return message, nil
}

// PostRequest is one message typed by a user.
type PostRequest struct {
	Author    string
	Text      string
	RoomCode  string
	Assistant bool
}

// Post handles a user message. Assistant invocations return the user's
// message followed by the assistant reply.
func (s *Service) Post(ctx context.Context, req PostRequest) ([]chat.Message, error) {
	text := strings.TrimSpace(req.Text)
	author := strings.TrimSpace(req.Author)

	if text == "" {
		return nil, &SendError{Err: ErrEmptyMessage}
	}
	if utf8.RuneCountInString(author) < MinNameLength {
		return nil, &SendError{Err: ErrNameRequired}
	}

	prompt, isAssistant := ParseCommand(text, req.Assistant)
	if !isAssistant {
		message, err := s.Send(ctx, author, text)
		if err != nil {
			return nil, &SendError{Err: err}
		}
		return []chat.Message{message}, nil
	}

	if prompt == "" {
		return nil, &AssistantError{Err: ErrEmptyPrompt}
	}
	if s.assistant == nil {
		return nil, &AssistantError{Err: assistant.ErrConfiguration}
	}

	userMessage, err := s.Send(ctx, author, prompt)
	if err != nil {
		return nil, &SendError{Err: err}
	}

	recent, err := s.messages.ListMessages(ctx, HistoryWindow)
	if err != nil {
		return nil, &AssistantError{Err: err}
	}

	reply, err := s.assistant.Turn(ctx, assistant.TurnRequest{
		RoomID:     s.RoomID(req.RoomCode),
		UserPrompt: prompt,
		History:    FormatHistory(withMessage(recent, userMessage), HistoryWindow),
		Docs:       append([]string(nil), s.cfg.Documents...),
	})
	if err != nil {
		return nil, &AssistantError{Err: err}
	}

	replyMessage, err := s.Send(ctx, chat.AssistantAuthor, reply)
	if err != nil {
		return nil, &AssistantError{Err: &ReplyError{Err: err}}
	}
	return []chat.Message{userMessage, replyMessage}, nil
}

// ParseCommand reports whether text invokes the assistant, either through
// force or the case-insensitive "/ai " prefix, and returns the prompt. A bare
// "/ai" is an invocation with an empty prompt.
func ParseCommand(text string, force bool) (string, bool) {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	if lower == strings.TrimSpace(CommandPrefix) {
		return "", true
	}
	if strings.HasPrefix(lower, CommandPrefix) {
		return strings.TrimSpace(text[len(CommandPrefix):]), true
	}
	return text, force
}

// FormatHistory renders the last max messages as "author: body" lines.
func FormatHistory(messages []chat.Message, max int) string {
	if max > 0 && len(messages) > max {
		messages = messages[len(messages)-max:]
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		author := m.Author
		if author == "" {
			author = "?"
		}
		lines = append(lines, author+": "+strings.TrimSpace(m.Body))
	}
	return strings.Join(lines, "\n")
}

// withMessage makes sure message is the tail of messages, whatever the store
// returned.
func withMessage(messages []chat.Message, message chat.Message) []chat.Message {
	for _, m := range messages {
		if m.Key() == message.Key() {
			return messages
		}
	}
	return append(messages, message)
}
