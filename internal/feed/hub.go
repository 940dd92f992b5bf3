// Package feed delivers newly inserted chat messages to live listeners.
package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/securemov/ana-chat/backend/internal/metrics"
	"github.com/securemov/ana-chat/backend/internal/model/chat"
)

const defaultBuffer = 32

// Publisher announces a newly stored message.
type Publisher interface {
	Publish(ctx context.Context, message chat.Message) error
}

// Subscriber hands out a channel of new messages and a cancel func that
// releases it.
type Subscriber interface {
	Subscribe() (<-chan chat.Message, func())
}

// Hub fans messages out to in-process subscribers. Delivery never blocks the
// publisher: a subscriber whose buffer is full misses the message.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan chat.Message
	nextID uint64
	buffer int
	logger zerolog.Logger
}

// NewHub creates a Hub whose subscriber channels hold buffer messages.
func NewHub(buffer int, logger zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[uint64]chan chat.Message),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a listener.
func (h *Hub) Subscribe() (<-chan chat.Message, func()) {
	ch := make(chan chat.Message, h.buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()
	metrics.FeedSubscribers.Inc()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
			metrics.FeedSubscribers.Dec()
		})
	}
	return ch, cancel
}

// Publish delivers message to every current subscriber.
func (h *Hub) Publish(_ context.Context, message chat.Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- message:
		default:
			h.logger.Warn().Uint64("subscriber", id).Str("message_id", message.ID).Msg("feed subscriber lagging, message dropped")
		}
	}
	return nil
}
