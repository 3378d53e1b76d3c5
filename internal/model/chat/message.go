package chat

import "time"

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single line of a conversation.
type Message struct {
	ID             string    `json:"id,omitempty"`
	ConversationID string    `json:"conversationId,omitempty"`
	Sender         Sender    `json:"sender"`
	Text           string    `json:"text"`
	Intent         string    `json:"intent,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}
