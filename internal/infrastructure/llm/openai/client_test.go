package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type fakeCompletionServer struct {
	mu     sync.Mutex
	bodies []map[string]any

	choices []map[string]any
}

func (f *fakeCompletionServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		f.mu.Lock()
		f.bodies = append(f.bodies, body)
		f.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"choices": f.choices,
		})
	})
}

func answerChoices(content string) []map[string]any {
	return []map[string]any{
		{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		},
	}
}

func TestCompleteSendsZeroTemperatureOnTheWire(t *testing.T) {
	fake := &fakeCompletionServer{choices: answerChoices("[]")}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New("test-key", server.URL, "test-model")
	if _, err := client.Complete(context.Background(), "system text", "user text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.bodies) != 1 {
		t.Fatalf("expected one completion request, got %d", len(fake.bodies))
	}
	body := fake.bodies[0]

	temp, ok := body["temperature"]
	if !ok {
		t.Fatalf("temperature field absent from request body: %v", body)
	}
	v, ok := temp.(float64)
	if !ok {
		t.Fatalf("unexpected temperature type %T", temp)
	}
	// Present and effectively zero, never the provider default.
	if v < 0 || v > 1e-6 {
		t.Fatalf("expected temperature effectively zero, got %v", v)
	}
}

func TestCompleteSendsSystemAndUserMessages(t *testing.T) {
	fake := &fakeCompletionServer{choices: answerChoices(`[{"name":"A"}]`)}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New("test-key", server.URL, "test-model")
	content, err := client.Complete(context.Background(), "system text", "user text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != `[{"name":"A"}]` {
		t.Fatalf("unexpected content %q", content)
	}

	body := fake.bodies[0]
	if body["model"] != "test-model" {
		t.Fatalf("unexpected model %v", body["model"])
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system+user messages, got %v", body["messages"])
	}
	first, _ := messages[0].(map[string]any)
	second, _ := messages[1].(map[string]any)
	if first["role"] != "system" || first["content"] != "system text" {
		t.Fatalf("unexpected first message %v", first)
	}
	if second["role"] != "user" || second["content"] != "user text" {
		t.Fatalf("unexpected second message %v", second)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	fake := &fakeCompletionServer{choices: []map[string]any{}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := New("test-key", server.URL, "test-model")
	if _, err := client.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
