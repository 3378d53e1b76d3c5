package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/mathtutor-chat/internal/config"
	"github.com/zhouzirui/mathtutor-chat/internal/model/chat"
)

const historyLimit = 10

// Service answers chat lines with an LLM when the intent classifier cannot.
type Service struct {
	streaming bool
	system    string
	chain     compose.Runnable[map[string]any, *schema.Message]
	logger    *zap.Logger
}

// NewService creates a new AI service from configuration.
func NewService(ctx context.Context, cfg config.AIConfig, known []string, logger *zap.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, cfg.StreamResponse, known, logger)
}

// NewServiceWithModel builds the chain around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.ChatModel, streaming bool, known []string, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		streaming: streaming,
		system:    DefaultTutorTemplate().BuildSystemPrompt(known),
		chain:     runnable,
		logger:    logger,
	}, nil
}

// StreamingEnabled reports whether replies should be streamed chunk by chunk.
func (s *Service) StreamingEnabled() bool {
	return s.streaming
}

// GenerateReply returns a complete reply for the user text.
func (s *Service) GenerateReply(ctx context.Context, history []chat.Message, text string) (string, error) {
	response, err := s.chain.Invoke(ctx, s.buildChainInput(history, text))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	s.logger.Debug("generated reply", zap.Int("length", len(response.Content)))
	return response.Content, nil
}

// StreamReply streams reply chunks via the configured chain.
func (s *Service) StreamReply(ctx context.Context, history []chat.Message, text string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	stream, err := s.chain.Stream(ctx, s.buildChainInput(history, text))
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}
	return stream, nil
}

func (s *Service) buildChainInput(history []chat.Message, text string) map[string]any {
	return map[string]any{
		"system":  s.system,
		"history": buildHistoryMessages(history),
		"query":   text,
	}
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.SenderBot:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}
	return history
}
