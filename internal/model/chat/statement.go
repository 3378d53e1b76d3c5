package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Statement is the body posted to the chatbot endpoint.
type Statement struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversationId,omitempty"`
}

// Reply is the chatbot endpoint's answer to a Statement.
type Reply struct {
	Text           Lines  `json:"text"`
	ConversationID string `json:"conversationId,omitempty"`
	Intent         string `json:"intent,omitempty"`
}

// Lines holds reply text. It decodes from either a JSON string or an array of
// strings and always encodes as an array.
type Lines []string

// String joins the lines with newlines.
func (l Lines) String() string {
	return strings.Join(l, "\n")
}

// MarshalJSON encodes the lines as an array, never null.
func (l Lines) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON accepts `"text"` and `["text", ...]`. null leaves the value unset.
func (l *Lines) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var single string
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*l = Lines{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return fmt.Errorf("text must be a string or an array of strings: %w", err)
	}
	if many == nil {
		many = []string{}
	}
	*l = many
	return nil
}
