package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	assistantService "github.com/securemov/ana-chat/backend/internal/service/assistant"
	"github.com/securemov/ana-chat/backend/pkg/utils"
)

// Service runs an assistant invocation.
type Service interface {
	Handle(ctx context.Context, inv assistantService.Invocation) (string, error)
}

// Handler 助手接口的HTTP处理器
type Handler struct {
	svc Service
}

// New 创建助手处理器
func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册助手相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ai", h.handleAssistant)
}

// handleAssistant 处理新旧两种请求格式
func (h *Handler) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantService.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text, err := h.svc.Handle(r.Context(), req.Invocation())
	if err != nil {
		status, message, detail := Classify(err)
		utils.RespondErrorDetail(w, status, message, detail)
		return
	}

	utils.RespondJSON(w, http.StatusOK, assistantService.Response{Text: text})
}

// Classify maps an assistant failure to an HTTP status, a public message and
// the collaborator detail. Client input errors are 4xx; configuration and
// store failures are 500; model failures are 502.
func Classify(err error) (status int, message, detail string) {
	var fieldErr *assistantService.FieldError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, fieldErr.Error(), ""
	}

	var turnErr *assistantService.TurnError
	if errors.As(err, &turnErr) {
		detail = turnErr.Detail()
	}

	switch {
	case errors.Is(err, assistantService.ErrConfiguration):
		if detail == "" {
			detail = "assistant not configured"
		}
		return http.StatusInternalServerError, detail, ""
	case errors.Is(err, assistantService.ErrStoreRead):
		return http.StatusInternalServerError, assistantService.ErrStoreRead.Error(), detail
	case errors.Is(err, assistantService.ErrStoreWrite):
		return http.StatusInternalServerError, assistantService.ErrStoreWrite.Error(), detail
	case errors.Is(err, assistantService.ErrEmptyReply):
		return http.StatusBadGateway, assistantService.ErrEmptyReply.Error(), ""
	case errors.Is(err, assistantService.ErrModelInvocation):
		return http.StatusBadGateway, assistantService.ErrModelInvocation.Error(), detail
	default:
		return http.StatusInternalServerError, "internal error", err.Error()
	}
}
