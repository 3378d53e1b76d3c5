// Package chatbot is the HTTP client for the chatbot endpoint.
package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/zhouzirui/mathtutor-chat/internal/model/chat"
)

// ErrRequestFailed covers every way a chat request can fail: transport
// errors, non-2xx statuses and undecodable bodies.
var ErrRequestFailed = errors.New("request failed")

const maxErrorBody = 4 << 10

// Client posts statements to a chatbot endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New returns a Client for endpoint. A nil httpClient means http.DefaultClient.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send posts {"text": text} and decodes the reply.
func (c *Client) Send(ctx context.Context, text string) (chat.Reply, error) {
	body, err := json.Marshal(chat.Statement{Text: text})
	if err != nil {
		return chat.Reply{}, fmt.Errorf("%w: encode statement: %w", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return chat.Reply{}, fmt.Errorf("%w: build request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chat.Reply{}, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return chat.Reply{}, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var reply chat.Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return chat.Reply{}, fmt.Errorf("%w: decode reply: %w", ErrRequestFailed, err)
	}
	if reply.Text == nil {
		return chat.Reply{}, fmt.Errorf("%w: reply has no text field", ErrRequestFailed)
	}
	return reply, nil
}
