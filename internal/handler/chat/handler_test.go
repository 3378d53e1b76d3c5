package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mathtutor-chat/internal/model/chat"
	chatservice "github.com/zhouzirui/mathtutor-chat/internal/service/chat"
)

func setupRouter() (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService()
	handler := New(chatSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func TestCreateConversation(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/conversations", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var conversation chat.Conversation
	if err := json.Unmarshal(resp.Body.Bytes(), &conversation); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if conversation.ID == "" {
		t.Fatal("expected conversation id")
	}
}

func TestGetTranscript(t *testing.T) {
	r, svc := setupRouter()
	ctx := context.Background()
	conversation, _ := svc.CreateConversation(ctx)
	if _, err := svc.AppendMessage(ctx, chat.Message{ConversationID: conversation.ID, Sender: chat.SenderUser, Text: "hello"}); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/conversations/"+conversation.ID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		ID       string         `json:"id"`
		Messages []chat.Message `json:"messages"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.ID != conversation.ID || len(body.Messages) != 1 || body.Messages[0].Text != "hello" {
		t.Fatalf("unexpected transcript: %+v", body)
	}
}

func TestGetTranscriptNotFound(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/conversations/missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
