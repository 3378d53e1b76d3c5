package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mathtutor-chat/internal/model/chat"
	intentModel "github.com/zhouzirui/mathtutor-chat/internal/model/intent"
	chatservice "github.com/zhouzirui/mathtutor-chat/internal/service/chat"
	chatbotservice "github.com/zhouzirui/mathtutor-chat/internal/service/chatbot"
)

type fakeGenerator struct {
	streaming bool
	chunks    []string
	err       error
	// streamErr 在全部片段发送后作为流错误返回。
	streamErr error
}

func (f *fakeGenerator) StreamingEnabled() bool { return f.streaming }

func (f *fakeGenerator) GenerateReply(_ context.Context, _ []chat.Message, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return strings.Join(f.chunks, ""), nil
}

func (f *fakeGenerator) StreamReply(_ context.Context, _ []chat.Message, _ string) (*schema.StreamReader[*schema.Message], error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.streamErr != nil {
		sr, sw := schema.Pipe[*schema.Message](len(f.chunks) + 1)
		go func() {
			defer sw.Close()
			for _, c := range f.chunks {
				sw.Send(schema.AssistantMessage(c, nil), nil)
			}
			sw.Send(nil, f.streamErr)
		}()
		return sr, nil
	}

	msgs := make([]*schema.Message, 0, len(f.chunks))
	for _, c := range f.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func setup(generator Generator) (*chi.Mux, *chatservice.Service) {
	transcripts := chatservice.NewService()
	bot := chatbotservice.NewService(intentModel.NewMemoryStore(intentModel.Seed()), 0, transcripts)

	r := chi.NewRouter()
	New(bot, generator, nil).RegisterRoutes(r)
	return r, transcripts
}

func readEvents(t *testing.T, body string) []StreamResponse {
	t.Helper()
	var events []StreamResponse
	var name string
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			name = strings.TrimPrefix(line, "event: ")
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev StreamResponse
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		require.Equal(t, name, ev.Event)
		events = append(events, ev)
	}
	return events
}

func eventNames(events []StreamResponse) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Event)
	}
	return names
}

func TestStreamIntentReply(t *testing.T) {
	r, transcripts := setup(nil)
	conversation, err := transcripts.CreateConversation(context.Background())
	require.NoError(t, err)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?text=hello&conversationId="+conversation.ID, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	events := readEvents(t, resp.Body.String())
	assert.Equal(t, []string{"start", "delta", "message", "end"}, eventNames(events))
	assert.Equal(t, "greeting", events[2].Intent)
	assert.Equal(t, events[1].Content, events[2].Content)

	assert.Equal(t, conversation.ID, events[0].ConversationID)
	transcript, err := transcripts.LoadTranscript(context.Background(), conversation.ID)
	require.NoError(t, err)
	assert.Len(t, transcript, 2)
}

func TestStreamWithoutConversationIsStateless(t *testing.T) {
	r, transcripts := setup(nil)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?text=hello", nil))

	events := readEvents(t, resp.Body.String())
	assert.Equal(t, []string{"start", "delta", "message", "end"}, eventNames(events))
	assert.Empty(t, events[0].ConversationID)
	assert.Zero(t, transcripts.Count())
}

func TestStreamLLMChunks(t *testing.T) {
	r, _ := setup(&fakeGenerator{streaming: true, chunks: []string{"Use ", "substitution."}})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?text=xyzzy", nil))

	events := readEvents(t, resp.Body.String())
	assert.Equal(t, []string{"start", "delta", "delta", "message", "end"}, eventNames(events))
	assert.Equal(t, "Use substitution.", events[3].Content)
	assert.Equal(t, chatbotservice.LLMTag, events[3].Intent)
}

func TestStreamLLMNonStreaming(t *testing.T) {
	r, _ := setup(&fakeGenerator{chunks: []string{"Integrate by parts."}})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?text=xyzzy", nil))

	events := readEvents(t, resp.Body.String())
	assert.Equal(t, []string{"start", "delta", "message", "end"}, eventNames(events))
	assert.Equal(t, "Integrate by parts.", events[2].Content)
}

func TestStreamLLMFailureFallsBack(t *testing.T) {
	r, _ := setup(&fakeGenerator{streaming: true, err: errors.New("model down")})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?text=xyzzy", nil))

	events := readEvents(t, resp.Body.String())
	require.Len(t, events, 4)
	assert.Equal(t, intentModel.NoAnswerTag, events[2].Intent)
}

func TestStreamUnknownConversation(t *testing.T) {
	r, _ := setup(nil)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?text=hi&conversationId=missing", nil))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestStreamLLMInterruptedAfterDelta(t *testing.T) {
	r, _ := setup(&fakeGenerator{
		streaming: true,
		chunks:    []string{"The derivative of"},
		streamErr: errors.New("connection reset"),
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?text=xyzzy", nil))

	events := readEvents(t, resp.Body.String())
	assert.Equal(t, []string{"start", "delta", "error"}, eventNames(events))
	assert.Equal(t, "The derivative of", events[1].Content)
	assert.NotEmpty(t, events[2].Error)
}

func TestStreamLLMFailsBeforeDelta(t *testing.T) {
	r, _ := setup(&fakeGenerator{streaming: true, streamErr: errors.New("connection reset")})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream?text=xyzzy", nil))

	events := readEvents(t, resp.Body.String())
	assert.Equal(t, []string{"start", "delta", "message", "end"}, eventNames(events))
	assert.Equal(t, intentModel.NoAnswerTag, events[2].Intent)
	assert.Equal(t, events[1].Content, events[2].Content)
}
