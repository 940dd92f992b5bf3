package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	assistantHandler "github.com/securemov/ana-chat/backend/internal/handler/assistant"
	"github.com/securemov/ana-chat/backend/internal/middleware"
	"github.com/securemov/ana-chat/backend/internal/model/chat"
	chatService "github.com/securemov/ana-chat/backend/internal/service/chat"
	"github.com/securemov/ana-chat/backend/pkg/utils"
)

// Limiter throttles assistant invocations. Allow writes the rejection itself.
type Limiter interface {
	Allow(w http.ResponseWriter, r *http.Request) bool
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	limiter Limiter
}

// New 创建聊天处理器。limiter 为 nil 时不限制助手调用。
func New(chatSvc *chatService.Service, limiter Limiter) *Handler {
	return &Handler{chatSvc: chatSvc, limiter: limiter}
}

// RegisterRoutes 注册公开的加入接口
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/join", h.handleJoin)
}

// RegisterProtectedRoutes 注册需要加入码的消息接口
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/messages", h.handleListMessages)
	r.Post("/messages", h.handlePostMessage)
}

// handleJoin 校验昵称与加入码
func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.Join(payload.Name, payload.Code)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, chatService.ErrCodeMismatch) {
			status = http.StatusUnauthorized
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

// handleListMessages 按时间顺序返回最近的消息
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.List(r.Context())
	if err != nil {
		utils.RespondErrorDetail(w, http.StatusInternalServerError, "read error", err.Error())
		return
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handlePostMessage 保存消息，必要时调用助手
func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Author    string `json:"author"`
		Text      string `json:"text"`
		Assistant bool   `json:"assistant"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// 助手调用与 /api/ai 共用同一个限流桶
	if _, isAssistant := chatService.ParseCommand(payload.Text, payload.Assistant); isAssistant && h.limiter != nil {
		if !h.limiter.Allow(w, r) {
			return
		}
	}

	created, err := h.chatSvc.Post(r.Context(), chatService.PostRequest{
		Author:    payload.Author,
		Text:      payload.Text,
		RoomCode:  middleware.JoinCode(r),
		Assistant: payload.Assistant,
	})
	if err != nil {
		respondPostError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{"messages": created})
}

func respondPostError(w http.ResponseWriter, err error) {
	var replyErr *chatService.ReplyError
	if errors.As(err, &replyErr) {
		utils.RespondErrorDetail(w, http.StatusInternalServerError, "assistant error: reply not saved", replyErr.Err.Error())
		return
	}

	var assistantErr *chatService.AssistantError
	if errors.As(err, &assistantErr) {
		status, message, detail := assistantHandler.Classify(assistantErr.Err)
		if errors.Is(err, chatService.ErrEmptyPrompt) {
			status = http.StatusBadRequest
		}
		utils.RespondErrorDetail(w, status, "assistant error: "+message, detail)
		return
	}

	var sendErr *chatService.SendError
	if errors.As(err, &sendErr) {
		if errors.Is(err, chatService.ErrEmptyMessage) || errors.Is(err, chatService.ErrNameRequired) {
			utils.RespondError(w, http.StatusBadRequest, sendErr.Error())
			return
		}
		utils.RespondErrorDetail(w, http.StatusInternalServerError, "send error", sendErr.Err.Error())
		return
	}

	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
