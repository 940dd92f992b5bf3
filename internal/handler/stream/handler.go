package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/securemov/ana-chat/backend/internal/feed"
	"github.com/securemov/ana-chat/backend/internal/model/chat"
	"github.com/securemov/ana-chat/backend/pkg/utils"
)

const defaultHeartbeat = 15 * time.Second

// Lister loads the current message log.
type Lister interface {
	List(ctx context.Context) ([]chat.Message, error)
}

// Handler streams the message log via Server-Sent Events: a "snapshot" event
// with the current log, then one "message" event per new row.
type Handler struct {
	messages  Lister
	feed      feed.Subscriber
	heartbeat time.Duration
	logger    zerolog.Logger
}

// New creates a new stream handler
func New(messages Lister, sub feed.Subscriber, logger zerolog.Logger) *Handler {
	return &Handler{
		messages:  messages,
		feed:      sub,
		heartbeat: defaultHeartbeat,
		logger:    logger.With().Str("component", "sse").Logger(),
	}
}

// StreamStatus is the payload of status and heartbeat events.
type StreamStatus struct {
	Event   string `json:"event"`
	Message string `json:"message,omitempty"`
	Time    string `json:"time,omitempty"`
}

// HandleStream 处理SSE连接
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// 先订阅再加载，避免两者之间插入的消息丢失；重复的由 Deduper 过滤。
	updates, cancel := h.feed.Subscribe()
	defer cancel()

	initial, err := h.messages.List(r.Context())
	if err != nil {
		utils.RespondErrorDetail(w, http.StatusInternalServerError, "read error", err.Error())
		return
	}
	if initial == nil {
		initial = []chat.Message{}
	}
	seen := feed.NewDeduper(initial)

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	utils.SendSSEEvent(w, flusher, "snapshot", initial)
	h.logger.Debug().Int("messages", len(initial)).Msg("stream opened")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug().Msg("stream closed")
			return
		case t := <-ticker.C:
			utils.SendSSEChunk(w, flusher, StreamStatus{
				Event: "heartbeat",
				Time:  t.UTC().Format(time.RFC3339),
			})
		case msg, ok := <-updates:
			if !ok {
				return
			}
			if seen.Seen(msg) {
				continue
			}
			utils.SendSSEEvent(w, flusher, "message", msg)
		}
	}
}
