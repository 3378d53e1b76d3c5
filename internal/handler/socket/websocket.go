package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/mathtutor-chat/internal/model/chat"
	chatService "github.com/zhouzirui/mathtutor-chat/internal/service/chat"
	chatbotService "github.com/zhouzirui/mathtutor-chat/internal/service/chatbot"
)

const (
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second
	writeWait    = 10 * time.Second
	maxFrameSize = 64 * 1024
)

// Handler WebSocket聊天处理器
type Handler struct {
	bot         *chatbotService.Service
	upgrader    websocket.Upgrader
	connections *ConnectionManager
	logger      *zap.Logger
}

// New 创建WebSocket处理器。connections 为 nil 时使用私有的管理器。
func New(bot *chatbotService.Service, connections *ConnectionManager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if connections == nil {
		connections = NewConnectionManager()
	}
	return &Handler{
		bot:         bot,
		connections: connections,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type outgoingMessage struct {
	Type           string `json:"type"`
	Text           string `json:"text,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Intent         string `json:"intent,omitempty"`
	Error          string `json:"error,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接，每帧 {"text": ...} 对应一条回复
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	id := h.connections.Add(conn)
	defer h.connections.Remove(id)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go h.pingLoop(ctx, conn)

	// 未指定会话时为本连接开一个会话，断开即丢弃。
	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		conversationID, err = h.bot.OpenConversation(ctx)
		if err != nil {
			h.logger.Error("failed to open conversation", zap.Error(err))
			return
		}
		defer h.bot.CloseConversation(context.Background(), conversationID)
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("websocket read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var statement chat.Statement
		if err := json.Unmarshal(data, &statement); err != nil {
			h.send(conn, outgoingMessage{Type: "error", Error: "invalid message"})
			continue
		}
		if statement.ConversationID != "" {
			conversationID = statement.ConversationID
		}

		exchange, err := h.bot.Respond(ctx, conversationID, statement.Text)
		if err != nil {
			msg := "failed to answer"
			if errors.Is(err, chatService.ErrConversationNotFound) {
				msg = chatService.ErrConversationNotFound.Error()
			}
			h.send(conn, outgoingMessage{Type: "error", Error: msg})
			continue
		}
		conversationID = exchange.ConversationID

		h.send(conn, outgoingMessage{
			Type:           "reply",
			Text:           exchange.Text,
			ConversationID: exchange.ConversationID,
			Intent:         exchange.Intent,
		})
	}
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().Unix()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("websocket write failed", zap.Error(err))
	}
}

// pingLoop 定期发送ping消息；WriteControl 可与其他写操作并发调用
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
