package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatService "github.com/zhouzirui/mathtutor-chat/internal/service/chat"
	"github.com/zhouzirui/mathtutor-chat/pkg/utils"
)

// Handler 会话记录的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建会话处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/conversations", h.handleCreateConversation)
	r.Get("/conversations/{conversationID}", h.handleGetTranscript)
}

// handleCreateConversation 创建会话
func (h *Handler) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	conversation, err := h.chatSvc.CreateConversation(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, conversation)
}

// handleGetTranscript 返回会话记录
func (h *Handler) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	conversation, err := h.chatSvc.GetConversation(r.Context(), conversationID)
	if err != nil {
		respondLookupError(w, err)
		return
	}

	messages, err := h.chatSvc.LoadTranscript(r.Context(), conversationID)
	if err != nil {
		respondLookupError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"id":        conversation.ID,
		"createdAt": conversation.CreatedAt,
		"messages":  messages,
	})
}

func respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatService.ErrConversationNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
