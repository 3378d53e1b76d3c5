package intent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/mathtutor-chat/internal/model/intent"
)

func TestListIntentsHidesResponses(t *testing.T) {
	r := chi.NewRouter()
	New(intent.NewMemoryStore(intent.Seed())).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/intents", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var items []intent.Intent
	if err := json.Unmarshal(resp.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(items) != len(intent.Seed()) {
		t.Fatalf("expected %d intents, got %d", len(intent.Seed()), len(items))
	}
	for _, item := range items {
		if len(item.Responses) != 0 {
			t.Fatalf("responses leaked for %s", item.Tag)
		}
	}
}
