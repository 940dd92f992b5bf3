package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	feedpkg "github.com/securemov/ana-chat/backend/internal/feed"
	"github.com/securemov/ana-chat/backend/internal/model/chat"
	"github.com/securemov/ana-chat/backend/pkg/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Lister loads the current message log.
type Lister interface {
	List(ctx context.Context) ([]chat.Message, error)
}

// WebSocketHandler 通过WebSocket推送聊天消息
type WebSocketHandler struct {
	messages Lister
	feed     feedpkg.Subscriber
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(messages Lister, sub feedpkg.Subscriber, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		messages: messages,
		feed:     sub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With().Str("component", "websocket").Logger(),
	}
}

// Frame is one server-to-client message. Data is the message list for
// "snapshot" frames and a single message for "message" frames.
type Frame struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// HandleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	updates, cancelSub := h.feed.Subscribe()
	defer cancelSub()

	initial, err := h.messages.List(r.Context())
	if err != nil {
		utils.RespondErrorDetail(w, http.StatusInternalServerError, "read error", err.Error())
		return
	}
	if initial == nil {
		initial = []chat.Message{}
	}
	seen := feedpkg.NewDeduper(initial)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// 客户端只接收；读循环用于处理 pong 和发现断开。
	go h.readLoop(conn, cancel)

	if err := h.send(conn, Frame{Type: "snapshot", Data: initial}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg, ok := <-updates:
			if !ok {
				return
			}
			if seen.Seen(msg) {
				continue
			}
			if err := h.send(conn, Frame{Type: "message", Data: msg}); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Msg("read error")
			}
			return
		}
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, frame Frame) error {
	frame.Timestamp = time.Now().UnixMilli()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame); err != nil {
		h.logger.Debug().Err(err).Str("type", frame.Type).Msg("write failed")
		return err
	}
	return nil
}
