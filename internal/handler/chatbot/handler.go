package chatbot

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/mathtutor-chat/internal/model/chat"
	chatService "github.com/zhouzirui/mathtutor-chat/internal/service/chat"
	chatbotService "github.com/zhouzirui/mathtutor-chat/internal/service/chatbot"
	"github.com/zhouzirui/mathtutor-chat/pkg/utils"
)

// Handler 聊天机器人接口的HTTP处理器
type Handler struct {
	bot    *chatbotService.Service
	logger *zap.Logger
}

// New 创建聊天机器人处理器
func New(bot *chatbotService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{bot: bot, logger: logger}
}

// RegisterRoutes 注册聊天机器人路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chatbot", h.handleStatement)
	r.Post("/chatbot/", h.handleStatement)
}

// handleStatement 回答一条用户输入
func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	var payload chat.Statement
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exchange, err := h.bot.Respond(r.Context(), payload.ConversationID, payload.Text)
	if err != nil {
		if errors.Is(err, chatService.ErrConversationNotFound) {
			utils.RespondError(w, http.StatusNotFound, chatService.ErrConversationNotFound.Error())
			return
		}
		h.logger.Error("chatbot respond failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to answer")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chat.Reply{
		Text:           chat.Lines{exchange.Text},
		ConversationID: exchange.ConversationID,
		Intent:         exchange.Intent,
	})
}
