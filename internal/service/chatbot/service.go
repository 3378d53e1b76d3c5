// Package chatbot answers chat lines: intent classification first, an optional
// LLM responder second, and a canned "no answer" reply last.
package chatbot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/mathtutor-chat/internal/analysis/intent"
	"github.com/zhouzirui/mathtutor-chat/internal/model/chat"
	intentModel "github.com/zhouzirui/mathtutor-chat/internal/model/intent"
	chatService "github.com/zhouzirui/mathtutor-chat/internal/service/chat"
)

// LLMTag marks replies produced by the LLM responder.
const LLMTag = "llm"

const defaultNoAnswer = "Sorry, can't understand you"

// Responder produces a free-form reply when no intent matches.
type Responder interface {
	GenerateReply(ctx context.Context, history []chat.Message, text string) (string, error)
}

// Exchange is the outcome of answering one chat line.
type Exchange struct {
	ConversationID string
	Text           string
	Intent         string
}

// Turn is an opened exchange: the user line is recorded and the history
// preceding it is loaded.
type Turn struct {
	ConversationID string
	Text           string
	History        []chat.Message
}

// Option configures a Service.
type Option func(*Service)

// WithResponder sets the fallback responder used when no intent matches.
func WithResponder(r Responder) Option {
	return func(s *Service) { s.responder = r }
}

// WithRand replaces the random source used to pick among an intent's responses.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rnd = r }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Service answers chat lines and records them in conversation transcripts.
type Service struct {
	intents     intentModel.Store
	classifier  *intent.Classifier
	transcripts *chatService.Service
	responder   Responder
	logger      *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewService builds the chatbot over an intent store and a transcript service.
func NewService(intents intentModel.Store, threshold float64, transcripts *chatService.Service, opts ...Option) *Service {
	now := uint64(time.Now().UnixNano())
	s := &Service{
		intents:     intents,
		classifier:  intent.NewClassifier(intents.List(), threshold),
		transcripts: transcripts,
		logger:      zap.NewNop(),
		rnd:         rand.New(rand.NewPCG(now, now>>1)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasResponder reports whether an LLM responder is configured.
func (s *Service) HasResponder() bool {
	return s.responder != nil
}

// Respond answers text within the given conversation. An empty id answers
// statelessly: nothing is recorded and the responder sees no history.
func (s *Service) Respond(ctx context.Context, conversationID, text string) (Exchange, error) {
	turn, err := s.Begin(ctx, conversationID, text)
	if err != nil {
		return Exchange{}, err
	}

	reply, tag, ok := s.Match(text)
	if !ok && s.responder != nil {
		generated, genErr := s.responder.GenerateReply(ctx, turn.History, text)
		if genErr != nil {
			s.logger.Warn("llm responder failed, using no-answer reply",
				zap.String("conversationId", turn.ConversationID), zap.Error(genErr))
		} else {
			reply, tag, ok = generated, LLMTag, true
		}
	}
	if !ok {
		reply, tag = s.NoAnswer()
	}

	return s.Finish(ctx, turn, reply, tag), nil
}

// Begin loads the conversation history and records the user line. With an
// empty conversation id the turn is stateless.
func (s *Service) Begin(ctx context.Context, conversationID, text string) (Turn, error) {
	if conversationID == "" {
		return Turn{Text: text}, nil
	}

	history, err := s.transcripts.LoadTranscript(ctx, conversationID)
	if err != nil {
		return Turn{}, fmt.Errorf("load transcript: %w", err)
	}

	if _, err := s.transcripts.AppendMessage(ctx, chat.Message{
		ConversationID: conversationID,
		Sender:         chat.SenderUser,
		Text:           text,
	}); err != nil {
		return Turn{}, fmt.Errorf("save user message: %w", err)
	}

	return Turn{ConversationID: conversationID, Text: text, History: history}, nil
}

// Finish records the bot reply, if the turn belongs to a conversation, and
// returns the exchange.
func (s *Service) Finish(ctx context.Context, turn Turn, reply, tag string) Exchange {
	if turn.ConversationID != "" {
		if _, err := s.transcripts.AppendMessage(ctx, chat.Message{
			ConversationID: turn.ConversationID,
			Sender:         chat.SenderBot,
			Text:           reply,
			Intent:         tag,
		}); err != nil {
			s.logger.Warn("failed to save bot message", zap.String("conversationId", turn.ConversationID), zap.Error(err))
		}
	}

	s.logger.Debug("answered chat line",
		zap.String("conversationId", turn.ConversationID), zap.String("intent", tag))
	return Exchange{ConversationID: turn.ConversationID, Text: reply, Intent: tag}
}

// OpenConversation starts a conversation whose turns will be recorded.
func (s *Service) OpenConversation(ctx context.Context) (string, error) {
	conversation, err := s.transcripts.CreateConversation(ctx)
	if err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	return conversation.ID, nil
}

// CloseConversation discards a conversation opened with OpenConversation.
func (s *Service) CloseConversation(ctx context.Context, conversationID string) {
	s.transcripts.DeleteConversation(ctx, conversationID)
}

// Match classifies text and picks a response of the best intent that has one.
func (s *Service) Match(text string) (reply, tag string, ok bool) {
	for _, prediction := range s.classifier.Predict(text) {
		if prediction.Tag == intentModel.NoAnswerTag {
			continue
		}
		item, found := s.intents.FindByTag(prediction.Tag)
		if !found || len(item.Responses) == 0 {
			continue
		}
		return s.pick(item.Responses), item.Tag, true
	}
	return "", "", false
}

// NoAnswer returns the reply used when nothing else can answer.
func (s *Service) NoAnswer() (reply, tag string) {
	if item, ok := s.intents.FindByTag(intentModel.NoAnswerTag); ok && len(item.Responses) > 0 {
		return s.pick(item.Responses), intentModel.NoAnswerTag
	}
	return defaultNoAnswer, intentModel.NoAnswerTag
}

// Tags lists the intent tags the classifier knows.
func (s *Service) Tags() []string {
	return intentModel.Tags(s.intents.List())
}

func (s *Service) pick(responses []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return responses[s.rnd.IntN(len(responses))]
}
