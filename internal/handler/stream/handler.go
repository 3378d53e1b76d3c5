package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/mathtutor-chat/internal/model/chat"
	chatService "github.com/zhouzirui/mathtutor-chat/internal/service/chat"
	chatbotService "github.com/zhouzirui/mathtutor-chat/internal/service/chatbot"
	"github.com/zhouzirui/mathtutor-chat/pkg/utils"
)

// Generator is the LLM side of the responder chain.
type Generator interface {
	StreamingEnabled() bool
	GenerateReply(ctx context.Context, history []chat.Message, text string) (string, error)
	StreamReply(ctx context.Context, history []chat.Message, text string) (*schema.StreamReader[*schema.Message], error)
}

// Handler streams chatbot replies via Server-Sent Events
type Handler struct {
	bot       *chatbotService.Service
	generator Generator
	logger    *zap.Logger
}

// New creates a new stream handler. generator may be nil.
func New(bot *chatbotService.Service, generator Generator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{bot: bot, generator: generator, logger: logger}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event          string `json:"event"`
	Content        string `json:"content,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Intent         string `json:"intent,omitempty"`
	Finished       bool   `json:"finished,omitempty"`
	Error          string `json:"error,omitempty"`
}

// RegisterRoutes registers the streaming endpoint
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	conversationID := r.URL.Query().Get("conversationId")

	if err := h.HandleStreamRequest(r.Context(), w, conversationID, text); err != nil {
		h.logger.Warn("stream request failed", zap.String("conversationId", conversationID), zap.Error(err))
	}
}

// HandleStreamRequest answers one chat line as an SSE stream
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, conversationID, text string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return fmt.Errorf("streaming unsupported")
	}

	turn, err := h.bot.Begin(ctx, conversationID, text)
	if err != nil {
		if errors.Is(err, chatService.ErrConversationNotFound) {
			utils.RespondError(w, http.StatusNotFound, chatService.ErrConversationNotFound.Error())
		} else {
			utils.RespondError(w, http.StatusInternalServerError, "failed to open conversation")
		}
		return err
	}

	utils.SetupSSEHeaders(w)
	h.sendSSE(w, flusher, StreamResponse{Event: "start", ConversationID: turn.ConversationID})

	reply, tag, matched := h.bot.Match(text)
	switch {
	case matched:
		h.sendSSE(w, flusher, StreamResponse{Event: "delta", ConversationID: turn.ConversationID, Content: reply})
	case h.generator != nil:
		generated, streamed, genErr := h.dispatchAIResponse(ctx, w, flusher, turn)
		if genErr != nil {
			h.logger.Warn("llm reply failed", zap.String("conversationId", turn.ConversationID),
				zap.Bool("streamed", streamed), zap.Error(genErr))
			if ctx.Err() != nil {
				h.sendSSEError(w, flusher, turn.ConversationID, "request cancelled")
				return genErr
			}
			// 已推送的片段无法撤回，此时只能报错结束。
			if streamed {
				h.sendSSEError(w, flusher, turn.ConversationID, "reply interrupted")
				return genErr
			}
			reply, tag = h.bot.NoAnswer()
			h.sendSSE(w, flusher, StreamResponse{Event: "delta", ConversationID: turn.ConversationID, Content: reply})
		} else {
			reply, tag = generated, chatbotService.LLMTag
		}
	default:
		reply, tag = h.bot.NoAnswer()
		h.sendSSE(w, flusher, StreamResponse{Event: "delta", ConversationID: turn.ConversationID, Content: reply})
	}

	exchange := h.bot.Finish(ctx, turn, reply, tag)

	h.sendSSE(w, flusher, StreamResponse{
		Event:          "message",
		ConversationID: exchange.ConversationID,
		Content:        exchange.Text,
		Intent:         exchange.Intent,
	})
	h.sendSSE(w, flusher, StreamResponse{
		Event:          "end",
		ConversationID: exchange.ConversationID,
		Finished:       true,
	})
	return nil
}

// dispatchAIResponse sends the LLM reply as deltas. streamed reports whether
// any delta reached the client before an error.
func (h *Handler) dispatchAIResponse(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, turn chatbotService.Turn) (reply string, streamed bool, err error) {
	if !h.generator.StreamingEnabled() {
		reply, err := h.generator.GenerateReply(ctx, turn.History, turn.Text)
		if err != nil {
			return "", false, err
		}
		h.sendSSE(w, flusher, StreamResponse{Event: "delta", ConversationID: turn.ConversationID, Content: reply})
		return reply, true, nil
	}

	stream, err := h.generator.StreamReply(ctx, turn.History, turn.Text)
	if err != nil {
		return "", false, err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", streamed, recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			h.sendSSE(w, flusher, StreamResponse{Event: "delta", ConversationID: turn.ConversationID, Content: chunk.Content})
			streamed = true
		}
	}

	if len(chunks) == 0 {
		return "", false, errors.New("empty llm stream")
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", streamed, err
	}
	return response.Content, streamed, nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEEvent(w, flusher, response.Event, response)
}

func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, conversationID, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{Event: "error", ConversationID: conversationID, Error: errorMsg})
}
