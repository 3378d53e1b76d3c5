package chat

import "time"

// Conversation captures a transient anonymous exchange with the chatbot.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
