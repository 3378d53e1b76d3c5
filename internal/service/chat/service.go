package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/mathtutor-chat/internal/model/chat"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Service keeps conversation transcripts in memory.
type Service struct {
	mu            sync.RWMutex
	conversations map[string]chat.Conversation
	messages      map[string][]chat.Message
}

// NewService bootstraps the in-memory transcript service.
func NewService() *Service {
	return &Service{
		conversations: make(map[string]chat.Conversation),
		messages:      make(map[string][]chat.Message),
	}
}

// CreateConversation provisions an anonymous conversation.
func (s *Service) CreateConversation(_ context.Context) (chat.Conversation, error) {
	conversation := chat.Conversation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.conversations[conversation.ID] = conversation
	s.messages[conversation.ID] = make([]chat.Message, 0, 16)
	s.mu.Unlock()

	return conversation, nil
}

// AppendMessage appends a message to the conversation transcript and returns
// it with its id and timestamp filled in.
func (s *Service) AppendMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.ConversationID == "" {
		return chat.Message{}, ErrConversationNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[message.ConversationID]; !ok {
		return chat.Message{}, ErrConversationNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.messages[message.ConversationID] = append(s.messages[message.ConversationID], message)
	return message, nil
}

// GetConversation retrieves a conversation by identifier.
func (s *Service) GetConversation(_ context.Context, conversationID string) (chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conversation, ok := s.conversations[conversationID]
	if !ok {
		return chat.Conversation{}, ErrConversationNotFound
	}
	return conversation, nil
}

// LoadTranscript returns stored messages for the provided conversation.
func (s *Service) LoadTranscript(_ context.Context, conversationID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// DeleteConversation drops a conversation and its transcript. Unknown ids are ignored.
func (s *Service) DeleteConversation(_ context.Context, conversationID string) {
	s.mu.Lock()
	delete(s.conversations, conversationID)
	delete(s.messages, conversationID)
	s.mu.Unlock()
}

// Count returns the number of stored conversations.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
